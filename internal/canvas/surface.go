package canvas

import (
	"image"
	"image/color"
)

// Surface is the 2D drawing target consumed by the particle draw phase and
// the frame renderer. Implementations keep an alpha/transform stack that
// Save and Restore push and pop.
type Surface interface {
	Size() (w, h int)

	Save()
	Restore()
	SetAlpha(a float64)
	Translate(x, y float64)
	Rotate(radians float64)
	Scale(sx, sy float64)

	SetFillColor(c color.RGBA)
	SetStrokeColor(c color.RGBA)
	SetLineWidth(w float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Rect(x, y, w, h float64)
	Circle(x, y, r float64)
	ClosePath()
	Fill()
	Stroke()

	FillText(text string, x, y, size float64)
	DrawImage(img image.Image, x, y float64)
}

// Op identifies a recorded drawing operation.
type Op int

const (
	OpFill Op = iota
	OpStroke
	OpText
	OpImage
)

// Recorder is a Surface that records draw calls instead of rasterizing.
// It is used to count draw calls and inspect output in tests.
type Recorder struct {
	W, H int

	Calls    []Call
	alpha    []float64
	fill     color.RGBA
	stroke   color.RGBA
	segments int
}

// Call is one recorded draw operation.
type Call struct {
	Op       Op
	Alpha    float64
	Color    color.RGBA
	Segments int
	Text     string
}

// NewRecorder creates a recorder of the given logical size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h, alpha: []float64{1}}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

func (r *Recorder) Save() { r.alpha = append(r.alpha, r.current()) }

func (r *Recorder) Restore() {
	if len(r.alpha) > 1 {
		r.alpha = r.alpha[:len(r.alpha)-1]
	}
}

func (r *Recorder) current() float64 { return r.alpha[len(r.alpha)-1] }

func (r *Recorder) SetAlpha(a float64)          { r.alpha[len(r.alpha)-1] = a }
func (r *Recorder) Translate(x, y float64)      {}
func (r *Recorder) Rotate(float64)              {}
func (r *Recorder) Scale(sx, sy float64)        {}
func (r *Recorder) SetFillColor(c color.RGBA)   { r.fill = c }
func (r *Recorder) SetStrokeColor(c color.RGBA) { r.stroke = c }
func (r *Recorder) SetLineWidth(float64)        {}

func (r *Recorder) BeginPath()              { r.segments = 0 }
func (r *Recorder) MoveTo(x, y float64)     { r.segments++ }
func (r *Recorder) LineTo(x, y float64)     {}
func (r *Recorder) Rect(x, y, w, h float64) { r.segments++ }
func (r *Recorder) Circle(x, y, rr float64) { r.segments++ }
func (r *Recorder) ClosePath()              {}

func (r *Recorder) Fill() {
	r.Calls = append(r.Calls, Call{Op: OpFill, Alpha: r.current(), Color: r.fill, Segments: r.segments})
}

func (r *Recorder) Stroke() {
	r.Calls = append(r.Calls, Call{Op: OpStroke, Alpha: r.current(), Color: r.stroke, Segments: r.segments})
}

func (r *Recorder) FillText(text string, x, y, size float64) {
	r.Calls = append(r.Calls, Call{Op: OpText, Alpha: r.current(), Color: r.fill, Text: text})
}

func (r *Recorder) DrawImage(img image.Image, x, y float64) {
	r.Calls = append(r.Calls, Call{Op: OpImage, Alpha: r.current()})
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset drops recorded calls.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
	r.alpha = r.alpha[:1]
	r.alpha[0] = 1
}
