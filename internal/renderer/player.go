package renderer

import (
	"math"
	"sort"

	"github.com/ivlev/lyric2video/internal/effects"
	"github.com/ivlev/lyric2video/internal/engine"
)

const (
	// CullAlpha is the alpha below which a chunk is not drawn
	CullAlpha = 0.01
	// CullMargin is the off-screen margin, as a share of the larger axis
	CullMargin = 0.25
)

// Frame is the interpolated, culled state handed to drawing
type Frame struct {
	TimeMs          float64
	BeatIndex       int
	CameraX         float64
	CameraY         float64
	Zoom            float64
	Chapter         int
	NextChapter     int
	BackgroundBlend float64
	Chunks          []engine.Chunk
	Particles       *engine.ParticleCue
}

// Player maps time onto a baked timeline. It owns a private copy of the
// timeline, so rescaling never affects other consumers of a cached bake.
type Player struct {
	tl *engine.Timeline
}

// NewPlayer creates a player over a copy of tl. A nil timeline plays as
// empty: every lookup yields nothing to draw.
func NewPlayer(tl *engine.Timeline) *Player {
	if tl == nil {
		return &Player{tl: &engine.Timeline{}}
	}
	return &Player{tl: tl.Clone()}
}

// Timeline returns the player's (possibly rescaled) timeline
func (p *Player) Timeline() *engine.Timeline { return p.tl }

// Len returns the keyframe count
func (p *Player) Len() int { return len(p.tl.Keyframes) }

// Bounds returns the covered time span in milliseconds
func (p *Player) Bounds() (startMs, endMs float64) {
	return p.tl.StartMs, p.tl.EndMs
}

// floor returns the index of the latest keyframe at or before ms, or 0
func (p *Player) floor(ms float64) int {
	kfs := p.tl.Keyframes
	i := sort.Search(len(kfs), func(i int) bool { return kfs[i].TimeMs > ms }) - 1
	if i < 0 {
		return 0
	}
	return i
}

// GetFrame returns the keyframe with the greatest TimeMs <= ms, the first
// keyframe when ms precedes the timeline, or nil for an empty timeline.
func (p *Player) GetFrame(ms float64) *engine.Keyframe {
	if len(p.tl.Keyframes) == 0 {
		return nil
	}
	return &p.tl.Keyframes[p.floor(ms)]
}

// Sample interpolates between the keyframes bracketing ms and culls chunks
// that are transparent or far off-screen.
func (p *Player) Sample(ms float64) Frame {
	kfs := p.tl.Keyframes
	if len(kfs) == 0 {
		return Frame{TimeMs: ms, BeatIndex: -1, Zoom: 1, Chapter: -1, NextChapter: -1}
	}

	i := p.floor(ms)
	a := &kfs[i]
	b := a
	t := 0.0
	if i+1 < len(kfs) && ms > a.TimeMs {
		b = &kfs[i+1]
		if span := b.TimeMs - a.TimeMs; span > 0 {
			t = effects.Clamp01((ms - a.TimeMs) / span)
		}
	}

	f := interpolateKeyframes(a, b, t)
	f.TimeMs = ms
	f.Chunks = p.cull(f)
	return f
}

func (p *Player) cull(f Frame) []engine.Chunk {
	w, h := float64(p.tl.Width), float64(p.tl.Height)
	margin := CullMargin * math.Max(w, h)
	zoom := f.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	out := f.Chunks[:0]
	for _, c := range f.Chunks {
		if !c.Visible || c.Alpha < CullAlpha {
			continue
		}
		sx := (c.X-w/2)*zoom + w/2 + f.CameraX
		sy := (c.Y-h/2)*zoom + h/2 + f.CameraY
		if sx < -margin || sx > w+margin || sy < -margin || sy > h+margin {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Rescale maps the timeline onto a new viewport in place. Nothing is
// re-baked: positions scale per axis and font sizes by the geometric mean.
func (p *Player) Rescale(w, h int) {
	if w <= 0 || h <= 0 || p.tl.Width <= 0 || p.tl.Height <= 0 {
		return
	}
	if w == p.tl.Width && h == p.tl.Height {
		return
	}
	sx := float64(w) / float64(p.tl.Width)
	sy := float64(h) / float64(p.tl.Height)
	sf := math.Sqrt(sx * sy)

	for i := range p.tl.Keyframes {
		kf := &p.tl.Keyframes[i]
		kf.CameraX *= sx
		kf.CameraY *= sy
		for j := range kf.Chunks {
			c := &kf.Chunks[j]
			c.X *= sx
			c.Y *= sy
			c.FontSize *= sf
		}
	}
	p.tl.Width, p.tl.Height = w, h
}

// Unscale returns the timeline to the resolution it was baked at
func (p *Player) Unscale() {
	p.Rescale(p.tl.BaseWidth, p.tl.BaseHeight)
}
