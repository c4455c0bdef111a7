package clock

import (
	"errors"
	"log"
	"math"
	"sync"
	"time"
)

// ErrTransportUnavailable is reported when there is no usable audio transport
var ErrTransportUnavailable = errors.New("audio transport unavailable")

// Transport is the external audio clock. Any call may fail.
type Transport interface {
	CurrentTime() (float64, error)
	Seek(seconds float64) error
	Play() error
	Pause() error
}

type noTransport struct{}

func (noTransport) CurrentTime() (float64, error) { return 0, ErrTransportUnavailable }
func (noTransport) Seek(float64) error            { return ErrTransportUnavailable }
func (noTransport) Play() error                   { return ErrTransportUnavailable }
func (noTransport) Pause() error                  { return ErrTransportUnavailable }

// Synced follows the audio transport and falls back to a synthetic
// monotonic clock while the transport fails. Once the transport answers
// again the clock re-syncs to it. Positions are clamped to the song bounds.
type Synced struct {
	mu sync.Mutex

	transport Transport
	tp        TimeProvider
	start     float64
	end       float64

	playing   bool
	synthetic bool
	anchorPos float64
	anchorAt  time.Time

	// After a failed start the transport may still answer with a frozen
	// position. It is trusted again once it moves away from stuckAt or a
	// later Play succeeds.
	needMove bool
	stuckAt  float64
	stuckSet bool
}

// NewSynced creates a paused clock at start. A nil transport runs purely
// on the synthetic clock; a nil provider uses the system clock.
func NewSynced(tr Transport, tp TimeProvider, start, end float64) *Synced {
	if tr == nil {
		tr = noTransport{}
	}
	if tp == nil {
		tp = SystemTime{}
	}
	c := &Synced{transport: tr, tp: tp, start: start, end: end}
	c.anchor(start)
	return c
}

func (c *Synced) anchor(pos float64) {
	c.anchorPos = pos
	c.anchorAt = c.tp.Now()
}

func (c *Synced) syntheticPos() float64 {
	if !c.playing {
		return c.anchorPos
	}
	return c.anchorPos + c.tp.Now().Sub(c.anchorAt).Seconds()
}

func (c *Synced) clamp(pos float64) float64 {
	if pos < c.start {
		return c.start
	}
	if c.end > c.start && pos > c.end {
		return c.end
	}
	return pos
}

// fail switches to the synthetic clock, logging only on the transition
func (c *Synced) fail(op string, err error) {
	if op == "play" {
		c.needMove, c.stuckSet = true, false
	}
	if c.synthetic {
		return
	}
	c.synthetic = true
	log.Printf("[!] Аудио недоступно (%s): %v. Синтетические часы с %.3fs", op, err, c.anchorPos)
}

// Now returns the current song position in seconds
func (c *Synced) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, err := c.transport.CurrentTime()
	if err == nil && !math.IsNaN(pos) && !math.IsInf(pos, 0) {
		if c.synthetic && c.needMove && !c.advanced(pos) {
			return c.clamp(c.syntheticPos())
		}
		if c.synthetic {
			c.synthetic = false
			c.needMove = false
			log.Printf("[*] Аудио восстановлено, синхронизация на %.3fs", pos)
		}
		c.anchor(pos)
		return c.clamp(pos)
	}
	if err == nil {
		err = errors.New("invalid position")
	}
	synth := c.syntheticPos()
	c.fail("position", err)
	return c.clamp(synth)
}

// Play starts the clock. A transport error is returned, but the synthetic
// clock runs regardless.
func (c *Synced) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing && !c.synthetic {
		return nil
	}
	c.anchor(c.syntheticPos())
	c.playing = true
	if err := c.transport.Play(); err != nil {
		c.fail("play", err)
		return err
	}
	if c.synthetic {
		// A retried start succeeded: hand the position over to the transport.
		if err := c.transport.Seek(c.anchorPos); err != nil {
			c.fail("seek", err)
			return err
		}
		c.synthetic = false
		c.needMove = false
		log.Printf("[*] Аудио запущено, синхронизация на %.3fs", c.anchorPos)
	}
	return nil
}

// advanced reports whether a transport that failed to start has begun
// moving since then
func (c *Synced) advanced(pos float64) bool {
	if !c.stuckSet {
		c.stuckAt, c.stuckSet = pos, true
		return false
	}
	return pos != c.stuckAt
}

// Pause freezes the clock at its current position
func (c *Synced) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchor(c.syntheticPos())
	c.playing = false
	if err := c.transport.Pause(); err != nil {
		c.fail("pause", err)
		return err
	}
	return nil
}

// Seek jumps to seconds, clamped to the song bounds
func (c *Synced) Seek(seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seconds = c.clamp(seconds)
	c.anchor(seconds)
	if err := c.transport.Seek(seconds); err != nil {
		c.fail("seek", err)
		return err
	}
	return nil
}

// SetBounds changes the song bounds used for clamping
func (c *Synced) SetBounds(start, end float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start, c.end = start, end
}

// Playing reports whether the clock is running
func (c *Synced) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Synthetic reports whether the clock is currently on the fallback
func (c *Synced) Synthetic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synthetic
}
