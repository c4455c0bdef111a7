package particles

import (
	"image/color"
	"math"

	"github.com/ivlev/lyric2video/internal/canvas"
)

const (
	alphaBuckets    = 4
	safeZoneFactor  = 0.3
	foregroundDepth = 0.7
	minDrawAlpha    = 0.01
)

// ForegroundKind reports whether kind may render in front of text.
func ForegroundKind(k Kind) bool {
	if k < 0 || k >= kindCount {
		return false
	}
	return behaviors[k].foreground
}

// Batched reports whether kind is drawn as alpha-bucketed path groups.
func Batched(k Kind) bool {
	if k < 0 || k >= kindCount {
		return false
	}
	return behaviors[k].batch != perParticle
}

// Alpha returns the effective draw alpha of p, safe zone suppression
// included.
func (s *Simulator) Alpha(p *Particle) float64 {
	fade := math.Min(1, p.Life/0.2)
	a := clamp(p.Opacity*fade, 0, 1)
	if !s.safe.empty() && s.safe.Contains(p.X, p.Y) {
		a *= safeZoneFactor
	}
	return a
}

func (s *Simulator) inLayer(p *Particle, layer Layer) bool {
	front := behaviors[s.cfg.Kind].foreground && p.Depth > foregroundDepth
	return front == (layer == Foreground)
}

func (s *Simulator) color(p *Particle) color.RGBA {
	if len(s.colors) == 0 {
		return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	}
	return s.colors[p.Color%len(s.colors)]
}

// Draw renders the particles of one layer onto dst.
func (s *Simulator) Draw(dst canvas.Surface, layer Layer) {
	if s.cfg.Kind == None || s.active == 0 {
		return
	}
	b := &behaviors[s.cfg.Kind]
	if b.batch != perParticle {
		s.drawBatched(dst, b, layer)
		return
	}
	for i := range s.pool {
		p := &s.pool[i]
		if !p.Active || !s.inLayer(p, layer) {
			continue
		}
		a := s.Alpha(p)
		if a < minDrawAlpha {
			continue
		}
		s.drawOne(dst, b, p, a)
	}
}

func (s *Simulator) drawOne(dst canvas.Surface, b *behavior, p *Particle, alpha float64) {
	c := s.color(p)
	dst.Save()
	if b.halo {
		dst.SetAlpha(alpha * 0.25)
		dst.SetFillColor(c)
		dst.BeginPath()
		dst.Circle(p.X, p.Y, p.Size*3)
		dst.Fill()
	}
	dst.SetAlpha(alpha)
	dst.BeginPath()
	b.shape(dst, p)
	if stroked(s.cfg.Kind) {
		dst.SetStrokeColor(c)
		dst.SetLineWidth(math.Max(1, p.Size*0.15))
		dst.Stroke()
	} else {
		dst.SetFillColor(c)
		dst.Fill()
	}
	dst.Restore()
}

// drawBatched groups particles into alpha buckets and issues one path
// operation per non-empty bucket.
func (s *Simulator) drawBatched(dst canvas.Surface, b *behavior, layer Layer) {
	for i := range s.buckets {
		s.buckets[i] = s.buckets[i][:0]
	}
	for i := range s.pool {
		p := &s.pool[i]
		if !p.Active || !s.inLayer(p, layer) {
			continue
		}
		a := s.Alpha(p)
		if a < minDrawAlpha {
			continue
		}
		bi := int(a * alphaBuckets)
		if bi >= alphaBuckets {
			bi = alphaBuckets - 1
		}
		s.buckets[bi] = append(s.buckets[bi], i)
	}

	c := s.color(&Particle{})
	for bi, idx := range s.buckets {
		if len(idx) == 0 {
			continue
		}
		dst.Save()
		dst.SetAlpha((float64(bi) + 0.5) / alphaBuckets)
		dst.BeginPath()
		for _, i := range idx {
			b.shape(dst, &s.pool[i])
		}
		if b.batch == batchStroke {
			dst.SetStrokeColor(c)
			dst.SetLineWidth(1)
			dst.Stroke()
		} else {
			dst.SetFillColor(c)
			dst.Fill()
		}
		dst.Restore()
	}
}

// DrawCalls returns the number of fill/stroke operations Draw would issue
// for layer in the current state.
func (s *Simulator) DrawCalls(layer Layer) int {
	rec := canvas.NewRecorder(int(s.width), int(s.height))
	s.Draw(rec, layer)
	return rec.Count(canvas.OpFill) + rec.Count(canvas.OpStroke)
}
