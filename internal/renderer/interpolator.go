package renderer

import (
	"github.com/ivlev/lyric2video/internal/effects"
	"github.com/ivlev/lyric2video/internal/engine"
)

// lerp is exact at both ends: t=0 yields a and t=1 yields b
var lerp = effects.Lerp

func findChunk(chunks []engine.Chunk, id string) int {
	for i := range chunks {
		if chunks[i].ID == id {
			return i
		}
	}
	return -1
}

// interpolateChunk blends continuous fields linearly and switches discrete
// fields at the midpoint
func interpolateChunk(a, b engine.Chunk, t float64) engine.Chunk {
	out := a
	if t >= 0.5 {
		out = b
	}
	out.X = lerp(a.X, b.X, t)
	out.Y = lerp(a.Y, b.Y, t)
	out.Alpha = lerp(a.Alpha, b.Alpha, t)
	out.Scale = lerp(a.Scale, b.Scale, t)
	out.ScaleX = lerp(a.ScaleX, b.ScaleX, t)
	out.ScaleY = lerp(a.ScaleY, b.ScaleY, t)
	out.Skew = lerp(a.Skew, b.Skew, t)
	out.FontSize = lerp(a.FontSize, b.FontSize, t)
	return out
}

// interpolateChunks pairs chunks by ID. A chunk present on one side only is
// taken from that side as is, never blended.
func interpolateChunks(a, b []engine.Chunk, t float64) []engine.Chunk {
	out := make([]engine.Chunk, 0, len(a)+len(b))
	for _, ca := range a {
		if j := findChunk(b, ca.ID); j >= 0 {
			out = append(out, interpolateChunk(ca, b[j], t))
		} else {
			out = append(out, ca)
		}
	}
	for _, cb := range b {
		if findChunk(a, cb.ID) < 0 {
			out = append(out, cb)
		}
	}
	return out
}

// interpolateKeyframes blends two bracketing keyframes into a frame
func interpolateKeyframes(a, b *engine.Keyframe, t float64) Frame {
	pick := a
	if t >= 0.5 {
		pick = b
	}
	f := Frame{
		TimeMs:          lerp(a.TimeMs, b.TimeMs, t),
		BeatIndex:       pick.BeatIndex,
		CameraX:         lerp(a.CameraX, b.CameraX, t),
		CameraY:         lerp(a.CameraY, b.CameraY, t),
		Zoom:            lerp(a.Zoom, b.Zoom, t),
		Chapter:         pick.Chapter,
		NextChapter:     pick.NextChapter,
		BackgroundBlend: pick.BackgroundBlend,
		Particles:       pick.Particles,
	}
	if a.Chapter == b.Chapter && a.NextChapter == b.NextChapter {
		f.BackgroundBlend = lerp(a.BackgroundBlend, b.BackgroundBlend, t)
	}
	f.Chunks = interpolateChunks(a.Chunks, b.Chunks, t)
	return f
}
