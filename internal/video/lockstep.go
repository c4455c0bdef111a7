package video

import (
	"math"

	"github.com/ivlev/lyric2video/internal/canvas"
	"github.com/ivlev/lyric2video/internal/engine"
	"github.com/ivlev/lyric2video/internal/particles"
	"github.com/ivlev/lyric2video/internal/renderer"
)

// lockstep drives the particle simulator from the particle cues baked into
// the timeline, one step per keyframe
type lockstep struct {
	sim    *particles.Simulator
	player *renderer.Player
	mult   float64

	next int // index of the next keyframe to apply
	kind string
	dens float64
}

func newLockstep(p *renderer.Player, opts Options, w, h float64) *lockstep {
	tl := p.Timeline()
	sim := particles.NewSimulator(opts.Tier.Ceiling(), tl.Seed+"/particles")
	sim.SetBounds(w, h)
	return &lockstep{sim: sim, player: p, mult: opts.DensityMultiplier}
}

// advance applies every keyframe up to ms and refreshes the safe zone
// from the frame about to be drawn
func (l *lockstep) advance(ms float64, f renderer.Frame) {
	tl := l.player.Timeline()
	dt := 1.0 / float64(engine.FPS)
	for l.next < len(tl.Keyframes) && tl.Keyframes[l.next].TimeMs <= ms {
		l.apply(tl, tl.Keyframes[l.next].Particles)
		l.sim.Update(dt)
		l.next++
	}
	w, h := float64(tl.Width), float64(tl.Height)
	l.sim.SetSafeZone(safeZone(f, w, h))
}

func (l *lockstep) apply(tl *engine.Timeline, cue *engine.ParticleCue) {
	if cue == nil {
		return
	}
	if cue.System != l.kind || cue.Density != l.dens {
		l.sim.Configure(particles.Config{
			Kind:              particles.ParseKind(cue.System),
			Density:           cue.Density,
			DensityMultiplier: l.mult,
			Palette:           tl.Palette,
		})
		l.kind, l.dens = cue.System, cue.Density
	}
	if cue.Burst > 0 {
		l.sim.Trigger(cue.Burst)
	}
}

// safeZone is the screen rectangle covering every drawn chunk of f
func safeZone(f renderer.Frame, w, h float64) particles.SafeZone {
	if len(f.Chunks) == 0 {
		return particles.SafeZone{}
	}
	zoom := f.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range f.Chunks {
		half := canvas.MeasureText(c.Text, c.FontSize) * c.Scale * c.ScaleX * zoom / 2
		halfH := c.FontSize * c.Scale * c.ScaleY * zoom / 2
		x := (c.X-w/2)*zoom + w/2 + f.CameraX
		y := (c.Y-h/2)*zoom + h/2 + f.CameraY
		minX, maxX = math.Min(minX, x-half), math.Max(maxX, x+half)
		minY, maxY = math.Min(minY, y-halfH), math.Max(maxY, y+halfH)
	}
	return particles.SafeZone{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
