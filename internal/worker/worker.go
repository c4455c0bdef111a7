package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/lyric2video/internal/clock"
	"github.com/ivlev/lyric2video/internal/engine"
	"github.com/ivlev/lyric2video/internal/renderer"
)

var (
	// ErrDestroyed is returned by Send after DESTROY
	ErrDestroyed = errors.New("worker destroyed")
	// ErrMailboxFull is returned when a non-SEEK command does not fit
	ErrMailboxFull = errors.New("worker mailbox full")
)

const (
	DefaultInterval = time.Second / 60
	DefaultMailbox  = 16
	responseBuffer  = 256
)

// Options configure a worker
type Options struct {
	Cache      *engine.Cache // Shared bake cache; nil creates a private one
	Transport  clock.Transport
	Time       clock.TimeProvider
	Interval   time.Duration // Frame interval while playing
	Mailbox    int
	Detector   string
	ChunkTicks int
}

type bakeResult struct {
	gen    uint64
	handle *engine.Handle
	err    error
}

// Worker bakes a scene through the shared cache and plays it back against
// the audio clock. All control is by message: Send never blocks.
type Worker struct {
	id   string
	opts Options

	inbox  chan Command
	out    chan Response
	outMu  sync.Mutex
	closed bool
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	destroyed atomic.Bool
	seq       atomic.Uint64

	seekMu     sync.Mutex
	seekSlot   *Command
	seekSignal chan struct{}

	// Owned by the run loop
	gen        uint64
	bakeCancel context.CancelFunc
	bakeDone   chan bakeResult
	lease      *engine.Handle
	player     *renderer.Player
	clk        *clock.Synced
	lastSeek   uint64
	pendSeek   *float64
	pendPlay   *bool
}

// New starts a worker
func New(opts Options) *Worker {
	if opts.Cache == nil {
		opts.Cache = engine.NewCache()
	}
	if opts.Time == nil {
		opts.Time = clock.SystemTime{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Mailbox <= 0 {
		opts.Mailbox = DefaultMailbox
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		id:         uuid.NewString(),
		opts:       opts,
		inbox:      make(chan Command, opts.Mailbox),
		out:        make(chan Response, responseBuffer),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		seekSignal: make(chan struct{}, 1),
		bakeDone:   make(chan bakeResult, 1),
	}
	go w.run()
	return w
}

// ID returns the worker session ID
func (w *Worker) ID() string { return w.id }

// Responses returns the response stream. It is closed after DESTROYED.
func (w *Worker) Responses() <-chan Response { return w.out }

// Done is closed once the worker has shut down
func (w *Worker) Done() <-chan struct{} { return w.done }

// Send posts a command without blocking. When the mailbox is full SEEKs
// coalesce into the latest one and DESTROY still goes through.
func (w *Worker) Send(cmd Command) error {
	if w.destroyed.Load() {
		return ErrDestroyed
	}
	cmd.seq = w.seq.Add(1)

	if cmd.Type == CmdDestroy {
		w.destroyed.Store(true)
		select {
		case w.inbox <- cmd:
		default:
			w.cancel()
		}
		return nil
	}

	select {
	case w.inbox <- cmd:
		return nil
	default:
	}

	if cmd.Type == CmdSeek {
		w.seekMu.Lock()
		w.seekSlot = &cmd
		w.seekMu.Unlock()
		select {
		case w.seekSignal <- struct{}{}:
		default:
		}
		return nil
	}
	return ErrMailboxFull
}

func (w *Worker) emit(r Response) {
	r.Session = w.id
	w.outMu.Lock()
	defer w.outMu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.out <- r:
	default:
		if r.Type != RespFrame && r.Type != RespBaking {
			log.Printf("[!] worker %s: ответ %s потерян, никто не читает", w.id, r.Type)
		}
	}
}

func (w *Worker) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.teardown()
			return
		case cmd := <-w.inbox:
			if cmd.Type == CmdDestroy {
				w.teardown()
				return
			}
			w.handle(cmd)
		case <-w.seekSignal:
			w.seekMu.Lock()
			cmd := w.seekSlot
			w.seekSlot = nil
			w.seekMu.Unlock()
			if cmd != nil {
				w.handle(*cmd)
			}
		case res := <-w.bakeDone:
			w.ready(res)
		case <-ticker.C:
			if w.clk != nil && w.clk.Playing() {
				w.frame()
			}
		}
	}
}

func (w *Worker) handle(cmd Command) {
	switch cmd.Type {
	case CmdInit:
		w.init(cmd)
	case CmdSeek:
		if cmd.seq < w.lastSeek {
			return
		}
		w.lastSeek = cmd.seq
		if w.clk == nil {
			t := cmd.Time
			w.pendSeek = &t
			return
		}
		w.clk.Seek(cmd.Time)
		w.frame()
	case CmdPlay, CmdPause:
		play := cmd.Type == CmdPlay
		if w.clk == nil {
			w.pendPlay = &play
			return
		}
		if play {
			w.clk.Play()
		} else {
			w.clk.Pause()
		}
	}
}

func (w *Worker) init(cmd Command) {
	if cmd.Scene == nil {
		w.emit(Response{Type: RespError, Err: errors.New("INIT without scene")})
		return
	}
	w.release()
	w.gen++
	gen := w.gen

	ctx, cancel := context.WithCancel(w.ctx)
	w.bakeCancel = cancel
	scene := *cmd.Scene
	opts := engine.Options{
		Width:      cmd.Width,
		Height:     cmd.Height,
		Detector:   w.opts.Detector,
		ChunkTicks: w.opts.ChunkTicks,
		Progress: func(p int) {
			w.emit(Response{Type: RespBaking, Progress: p})
		},
	}
	log.Printf("[*] worker %s: запекание сцены %q", w.id, scene.Title)

	go func() {
		h, err := w.opts.Cache.Acquire(ctx, scene, opts)
		select {
		case w.bakeDone <- bakeResult{gen: gen, handle: h, err: err}:
		case <-ctx.Done():
			if h != nil {
				h.Release()
			}
		}
	}()
}

func (w *Worker) ready(res bakeResult) {
	if res.gen != w.gen {
		if res.handle != nil {
			res.handle.Release()
		}
		return
	}
	if res.err != nil {
		log.Printf("[!] worker %s: ошибка запекания: %v", w.id, res.err)
		w.emit(Response{Type: RespError, Err: res.err})
		return
	}

	w.lease = res.handle
	w.player = renderer.NewPlayer(res.handle.Timeline())
	start, end := w.player.Bounds()
	w.clk = clock.NewSynced(w.opts.Transport, w.opts.Time, start/1000, end/1000)
	w.emit(Response{Type: RespReady})

	if w.pendSeek != nil {
		w.clk.Seek(*w.pendSeek)
		w.pendSeek = nil
	}
	if w.pendPlay != nil && *w.pendPlay {
		w.clk.Play()
	}
	w.pendPlay = nil
	w.frame()
}

func (w *Worker) frame() {
	if w.player == nil || w.clk == nil {
		return
	}
	f := w.player.Sample(w.clk.Now() * 1000)
	w.emit(Response{Type: RespFrame, Frame: &f})
}

// release drops the current bake and playback state. The cached timeline
// stays in the shared cache.
func (w *Worker) release() {
	if w.bakeCancel != nil {
		w.bakeCancel()
		w.bakeCancel = nil
	}
	if w.lease != nil {
		w.lease.Release()
		w.lease = nil
	}
	if w.clk != nil {
		w.clk.Pause()
	}
	w.player = nil
	w.clk = nil
}

func (w *Worker) teardown() {
	w.destroyed.Store(true)
	w.release()
	w.cancel()
	log.Printf("[*] worker %s: остановлен", w.id)
	w.emit(Response{Type: RespDestroyed})

	w.outMu.Lock()
	w.closed = true
	close(w.out)
	w.outMu.Unlock()
}
