package clock

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// stubTransport is a scriptable audio transport
type stubTransport struct {
	mu      sync.Mutex
	pos     float64
	err     error
	playErr error
	seekErr error
	seeks   []float64
	playing bool
}

func (s *stubTransport) CurrentTime() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos, s.err
}

func (s *stubTransport) Seek(sec float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeks = append(s.seeks, sec)
	if s.seekErr != nil {
		return s.seekErr
	}
	s.pos = sec
	return nil
}

func (s *stubTransport) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playErr != nil {
		return s.playErr
	}
	s.playing = true
	return nil
}

func (s *stubTransport) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	return nil
}

func (s *stubTransport) set(pos float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos, s.err = pos, err
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSyncedFollowsTransport(t *testing.T) {
	tr := &stubTransport{pos: 12.5}
	c := NewSynced(tr, NewManualTime(epoch), 0, 60)

	if got := c.Now(); got != 12.5 {
		t.Errorf("Now() = %v, want transport position", got)
	}
	tr.set(100, nil)
	if got := c.Now(); got != 60 {
		t.Errorf("Now() = %v, want clamp to song end", got)
	}
	tr.set(-3, nil)
	if got := c.Now(); got != 0 {
		t.Errorf("Now() = %v, want clamp to song start", got)
	}
	if c.Synthetic() {
		t.Error("healthy transport should not use the fallback")
	}
}

func TestSyncedFallbackAndResync(t *testing.T) {
	tp := NewManualTime(epoch)
	tr := &stubTransport{pos: 10}
	c := NewSynced(tr, tp, 0, 60)

	if err := c.Play(); err != nil {
		t.Fatal(err)
	}
	if c.Now() != 10 {
		t.Fatal("expected transport position")
	}

	tr.set(0, errors.New("device lost"))
	tp.Advance(2 * time.Second)
	if got := c.Now(); !near(got, 12) {
		t.Errorf("synthetic clock should continue from the last good position: %v", got)
	}
	if !c.Synthetic() {
		t.Error("expected fallback after transport failure")
	}

	tp.Advance(500 * time.Millisecond)
	if got := c.Now(); !near(got, 12.5) {
		t.Errorf("synthetic clock should keep running: %v", got)
	}

	tr.set(12.6, nil)
	if got := c.Now(); got != 12.6 {
		t.Errorf("clock should re-sync to the transport: %v", got)
	}
	if c.Synthetic() {
		t.Error("fallback should end when the transport recovers")
	}
}

func TestSyncedPauseFreezesSynthetic(t *testing.T) {
	tp := NewManualTime(epoch)
	c := NewSynced(nil, tp, 0, 0)

	if err := c.Play(); !errors.Is(err, ErrTransportUnavailable) {
		t.Errorf("expected ErrTransportUnavailable, got %v", err)
	}
	if !c.Playing() {
		t.Error("the clock must run without a transport")
	}
	tp.Advance(3 * time.Second)
	if got := c.Now(); !near(got, 3) {
		t.Errorf("Now() = %v, want 3", got)
	}

	c.Pause()
	tp.Advance(5 * time.Second)
	if got := c.Now(); !near(got, 3) {
		t.Errorf("paused clock moved: %v", got)
	}

	c.Play()
	tp.Advance(time.Second)
	if got := c.Now(); !near(got, 4) {
		t.Errorf("resumed clock: %v", got)
	}
}

func TestSyncedSeek(t *testing.T) {
	tp := NewManualTime(epoch)
	tr := &stubTransport{}
	c := NewSynced(tr, tp, 5, 30)

	if err := c.Seek(100); err != nil {
		t.Fatal(err)
	}
	if len(tr.seeks) != 1 || tr.seeks[0] != 30 {
		t.Errorf("seek should be clamped before reaching the transport: %v", tr.seeks)
	}

	tr.seekErr = errors.New("seek rejected")
	tr.set(0, errors.New("not ready"))
	if err := c.Seek(20); err == nil {
		t.Error("expected seek error to be returned")
	}
	if got := c.Now(); got != 20 {
		t.Errorf("synthetic clock should honor the seek: %v", got)
	}
}

func TestSyncedPlayFailure(t *testing.T) {
	tp := NewManualTime(epoch)
	tr := &stubTransport{playErr: errors.New("autoplay blocked"), err: errors.New("not started")}
	c := NewSynced(tr, tp, 0, 10)

	if err := c.Play(); err == nil {
		t.Error("expected play error")
	}
	tp.Advance(1500 * time.Millisecond)
	if got := c.Now(); !near(got, 1.5) {
		t.Errorf("synthetic clock should run after a failed play: %v", got)
	}
	tp.Advance(time.Minute)
	if got := c.Now(); got != 10 {
		t.Errorf("synthetic clock should clamp to the song end: %v", got)
	}
}

func TestSyncedFailedStartWithFrozenPosition(t *testing.T) {
	tp := NewManualTime(epoch)
	tr := &stubTransport{playErr: errors.New("autoplay blocked")}
	c := NewSynced(tr, tp, 0, 30)

	if err := c.Play(); err == nil {
		t.Fatal("expected play error")
	}
	tp.Advance(1500 * time.Millisecond)
	if got := c.Now(); !near(got, 1.5) {
		t.Errorf("Now() = %v, want 1.5 from the synthetic clock", got)
	}
	tp.Advance(3 * time.Second)
	if got := c.Now(); !near(got, 4.5) {
		t.Errorf("Now() = %v, want 4.5 from the synthetic clock", got)
	}
	if !c.Synthetic() {
		t.Error("a transport stuck at its start position must not be trusted")
	}

	c.Pause()
	tp.Advance(time.Second)
	if got := c.Now(); !near(got, 4.5) {
		t.Errorf("paused clock moved or fell back to the stuck transport: %v", got)
	}

	// The retried start succeeds and the transport takes over at the
	// synthetic position.
	tr.mu.Lock()
	tr.playErr = nil
	tr.mu.Unlock()
	if err := c.Play(); err != nil {
		t.Fatalf("retried play: %v", err)
	}
	if c.Synthetic() {
		t.Error("a successful start should end the fallback")
	}
	if n := len(tr.seeks); n == 0 || !near(tr.seeks[n-1], 4.5) {
		t.Errorf("transport should be moved to the synthetic position: %v", tr.seeks)
	}
	if got := c.Now(); !near(got, 4.5) {
		t.Errorf("Now() = %v, want 4.5 after hand-over", got)
	}
}

func TestSyncedFailedStartThenTransportMoves(t *testing.T) {
	tp := NewManualTime(epoch)
	tr := &stubTransport{pos: 2, playErr: errors.New("autoplay blocked")}
	c := NewSynced(tr, tp, 0, 30)

	c.Play()
	tp.Advance(time.Second)
	if got := c.Now(); !near(got, 1) {
		t.Errorf("Now() = %v, want synthetic 1", got)
	}

	tr.set(2.8, nil)
	if got := c.Now(); got != 2.8 {
		t.Errorf("Now() = %v, want the moving transport position", got)
	}
	if c.Synthetic() {
		t.Error("a moving transport should end the fallback")
	}
}
