package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// circleSegments is the polygon resolution used for circles.
const circleSegments = 20

type matrix struct {
	a, b, c, d, e, f float64
}

var identity = matrix{a: 1, d: 1}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m.a*x + m.c*y + m.e, m.b*x + m.d*y + m.f
}

func (m matrix) mul(n matrix) matrix {
	return matrix{
		a: m.a*n.a + m.c*n.b,
		b: m.b*n.a + m.d*n.b,
		c: m.a*n.c + m.c*n.d,
		d: m.b*n.c + m.d*n.d,
		e: m.a*n.e + m.c*n.f + m.e,
		f: m.b*n.e + m.d*n.f + m.f,
	}
}

func (m matrix) scaleFactor() float64 {
	return math.Sqrt(math.Abs(m.a*m.d - m.b*m.c))
}

type rasterState struct {
	m      matrix
	alpha  float64
	fill   color.RGBA
	stroke color.RGBA
	line   float64
}

type point struct{ x, y float64 }

// Raster is a Surface backed by an *image.RGBA. Paths are filled with
// golang.org/x/image/vector; text uses the basicfont face scaled to size.
// Text ignores rotation.
type Raster struct {
	dst   *image.RGBA
	z     *vector.Rasterizer
	stack []rasterState
	paths [][]point
}

// NewRaster wraps dst. The caller owns dst.
func NewRaster(dst *image.RGBA) *Raster {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return &Raster{
		dst: dst,
		z:   z,
		stack: []rasterState{{
			m:      identity,
			alpha:  1,
			fill:   color.RGBA{A: 0xFF},
			stroke: color.RGBA{A: 0xFF},
			line:   1,
		}},
	}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.dst }

// Clear fills the whole image with c.
func (r *Raster) Clear(c color.RGBA) {
	draw.Draw(r.dst, r.dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) Size() (int, int) {
	b := r.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) top() *rasterState { return &r.stack[len(r.stack)-1] }

func (r *Raster) Save() { r.stack = append(r.stack, *r.top()) }

func (r *Raster) Restore() {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *Raster) SetAlpha(a float64) { r.top().alpha = clamp01(a) }

func (r *Raster) Translate(x, y float64) {
	s := r.top()
	s.m = s.m.mul(matrix{a: 1, d: 1, e: x, f: y})
}

func (r *Raster) Rotate(rad float64) {
	s := r.top()
	sin, cos := math.Sincos(rad)
	s.m = s.m.mul(matrix{a: cos, b: sin, c: -sin, d: cos})
}

func (r *Raster) Scale(sx, sy float64) {
	s := r.top()
	s.m = s.m.mul(matrix{a: sx, d: sy})
}

func (r *Raster) SetFillColor(c color.RGBA)   { r.top().fill = c }
func (r *Raster) SetStrokeColor(c color.RGBA) { r.top().stroke = c }
func (r *Raster) SetLineWidth(w float64)      { r.top().line = w }

func (r *Raster) BeginPath() { r.paths = r.paths[:0] }

func (r *Raster) MoveTo(x, y float64) {
	px, py := r.top().m.apply(x, y)
	r.paths = append(r.paths, []point{{px, py}})
}

func (r *Raster) LineTo(x, y float64) {
	if len(r.paths) == 0 {
		r.MoveTo(x, y)
		return
	}
	px, py := r.top().m.apply(x, y)
	last := len(r.paths) - 1
	r.paths[last] = append(r.paths[last], point{px, py})
}

func (r *Raster) ClosePath() {
	if len(r.paths) == 0 {
		return
	}
	last := len(r.paths) - 1
	if p := r.paths[last]; len(p) > 1 {
		r.paths[last] = append(p, p[0])
	}
}

func (r *Raster) Rect(x, y, w, h float64) {
	r.MoveTo(x, y)
	r.LineTo(x+w, y)
	r.LineTo(x+w, y+h)
	r.LineTo(x, y+h)
	r.ClosePath()
}

func (r *Raster) Circle(x, y, radius float64) {
	for i := 0; i <= circleSegments; i++ {
		a := float64(i) / circleSegments * 2 * math.Pi
		px, py := x+math.Cos(a)*radius, y+math.Sin(a)*radius
		if i == 0 {
			r.MoveTo(px, py)
		} else {
			r.LineTo(px, py)
		}
	}
}

func (r *Raster) Fill() {
	s := r.top()
	w, h := r.Size()
	r.z.Reset(w, h)
	r.z.DrawOp = draw.Over
	drawn := false
	for _, p := range r.paths {
		if len(p) < 3 {
			continue
		}
		r.z.MoveTo(float32(p[0].x), float32(p[0].y))
		for _, q := range p[1:] {
			r.z.LineTo(float32(q.x), float32(q.y))
		}
		r.z.ClosePath()
		drawn = true
	}
	if drawn {
		r.z.Draw(r.dst, r.dst.Bounds(), image.NewUniform(withAlpha(s.fill, s.alpha)), image.Point{})
	}
}

// Stroke draws each segment as a filled quad of the current line width.
func (r *Raster) Stroke() {
	s := r.top()
	half := s.line * s.m.scaleFactor() / 2
	if half < 0.5 {
		half = 0.5
	}
	w, h := r.Size()
	r.z.Reset(w, h)
	r.z.DrawOp = draw.Over
	drawn := false
	for _, p := range r.paths {
		for i := 1; i < len(p); i++ {
			a, b := p[i-1], p[i]
			dx, dy := b.x-a.x, b.y-a.y
			l := math.Hypot(dx, dy)
			if l == 0 {
				continue
			}
			nx, ny := -dy/l*half, dx/l*half
			r.z.MoveTo(float32(a.x+nx), float32(a.y+ny))
			r.z.LineTo(float32(b.x+nx), float32(b.y+ny))
			r.z.LineTo(float32(b.x-nx), float32(b.y-ny))
			r.z.LineTo(float32(a.x-nx), float32(a.y-ny))
			r.z.ClosePath()
			drawn = true
		}
	}
	if drawn {
		r.z.Draw(r.dst, r.dst.Bounds(), image.NewUniform(withAlpha(s.stroke, s.alpha)), image.Point{})
	}
}

// FillText draws text with its baseline-left corner at (x,y).
func (r *Raster) FillText(text string, x, y, size float64) {
	if text == "" || size <= 0 {
		return
	}
	s := r.top()
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text).Ceil()
	asc := face.Metrics().Ascent.Ceil()
	desc := face.Metrics().Descent.Ceil()
	if adv <= 0 {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, adv, asc+desc))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, asc),
	}
	d.DrawString(text)

	k := size * s.m.scaleFactor() / float64(face.Height)
	sw, sh := int(math.Ceil(float64(adv)*k)), int(math.Ceil(float64(asc+desc)*k))
	if sw <= 0 || sh <= 0 {
		return
	}
	scaled := image.NewAlpha(image.Rect(0, 0, sw, sh))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)

	px, py := s.m.apply(x, y)
	top := int(math.Round(py - float64(asc)*k))
	left := int(math.Round(px))
	dr := image.Rect(left, top, left+sw, top+sh)
	draw.DrawMask(r.dst, dr, image.NewUniform(withAlpha(s.fill, s.alpha)), image.Point{}, scaled, image.Point{}, draw.Over)
}

// MeasureText returns the advance width of text at size, in surface units.
func MeasureText(text string, size float64) float64 {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text)
	return float64(adv) / 64 * size / float64(face.Height)
}

// DrawImage composites img with its top-left corner at (x,y). Only the
// translation part of the transform applies.
func (r *Raster) DrawImage(img image.Image, x, y float64) {
	s := r.top()
	px, py := s.m.apply(x, y)
	b := img.Bounds()
	dr := image.Rect(int(px), int(py), int(px)+b.Dx(), int(py)+b.Dy())
	if s.alpha >= 1 {
		draw.Draw(r.dst, dr, img, b.Min, draw.Over)
		return
	}
	draw.DrawMask(r.dst, dr, img, b.Min, image.NewUniform(color.Alpha{A: uint8(s.alpha * 255)}), image.Point{}, draw.Over)
}

func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	a := float64(c.A) / 255 * clamp01(alpha)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
