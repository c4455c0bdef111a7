package video

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/lyric2video/internal/canvas"
	"github.com/ivlev/lyric2video/internal/engine"
	"github.com/ivlev/lyric2video/internal/particles"
	"github.com/ivlev/lyric2video/internal/renderer"
	"github.com/ivlev/lyric2video/internal/system"
)

// FramePattern is the file name of exported frame i
const FramePattern = "frame_%05d.png"

// Options controls one export
type Options struct {
	FPS               int
	From, To          float64 // Seconds; To <= 0 means the end of the timeline
	Width, Height     int     // Zero keeps the baked viewport
	Workers           int
	Tier              particles.Tier
	DensityMultiplier float64
	Progress          func(done, total int)
}

// Stats describes the last export
type Stats struct {
	Frames        int
	PeakParticles int
	Elapsed       time.Duration
}

// Exporter rasterizes a timeline into numbered PNG frames. Particles are
// simulated at the bake rate in lockstep with the timeline, so the same
// timeline always yields the same files.
type Exporter struct {
	opts  Options
	pool  *system.ImagePool
	bg    *canvas.BackgroundCache
	stats Stats
}

// NewExporter creates an exporter with its own buffer pool and background
// cache
func NewExporter(opts Options) *Exporter {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.DensityMultiplier <= 0 {
		opts.DensityMultiplier = 1
	}
	return &Exporter{
		opts: opts,
		pool: system.NewImagePool(),
		bg:   canvas.NewBackgroundCache(),
	}
}

// Stats returns the figures of the last Export
func (e *Exporter) Stats() Stats { return e.stats }

// FrameTimes returns the sample times in milliseconds for the configured
// range over tl
func (e *Exporter) FrameTimes(tl *engine.Timeline) []float64 {
	from := math.Max(e.opts.From*1000, tl.StartMs)
	to := tl.EndMs
	if e.opts.To > 0 {
		to = math.Min(e.opts.To*1000, tl.EndMs)
	}
	if to < from {
		return nil
	}
	step := 1000 / float64(e.opts.FPS)
	n := int(math.Floor((to-from)/step+1e-6)) + 1
	times := make([]float64, n)
	for i := range times {
		times[i] = from + float64(i)*step
	}
	return times
}

// Export writes every frame of the range into dir and returns the frame
// count
func (e *Exporter) Export(ctx context.Context, tl *engine.Timeline, dir string) (int, error) {
	start := time.Now()
	e.stats = Stats{}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create frame dir: %w", err)
	}

	player := renderer.NewPlayer(tl)
	if e.opts.Width > 0 && e.opts.Height > 0 {
		player.Rescale(e.opts.Width, e.opts.Height)
	}
	w, h := player.Timeline().Width, player.Timeline().Height
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("invalid viewport %dx%d", w, h)
	}

	times := e.FrameTimes(player.Timeline())
	if len(times) == 0 {
		return 0, nil
	}

	work := image.NewRGBA(image.Rect(0, 0, w, h))
	surface := canvas.NewRaster(work)
	sim := newLockstep(player, e.opts, float64(w), float64(h))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	var mu sync.Mutex
	done := 0

	for i, ms := range times {
		if err := gctx.Err(); err != nil {
			break
		}

		f := player.Sample(ms)
		sim.advance(ms, f)

		player.DrawBackground(surface, f, e.bg)
		sim.sim.Draw(surface, particles.Background)
		player.DrawChunks(surface, f)
		sim.sim.Draw(surface, particles.Foreground)

		if n := sim.sim.ActiveCount(); n > e.stats.PeakParticles {
			e.stats.PeakParticles = n
		}

		buf := e.pool.Get(w, h)
		copy(buf.Pix, work.Pix)
		path := filepath.Join(dir, fmt.Sprintf(FramePattern, i))

		g.Go(func() error {
			defer e.pool.Put(buf)
			if err := writePNG(path, buf); err != nil {
				return err
			}
			if e.opts.Progress != nil {
				mu.Lock()
				done++
				e.opts.Progress(done, len(times))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.stats.Frames = len(times)
	e.stats.Elapsed = time.Since(start)
	return len(times), nil
}

var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := encoder.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
