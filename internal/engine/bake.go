package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/harmonica"

	"github.com/ivlev/lyric2video/internal/analyzer"
	"github.com/ivlev/lyric2video/internal/canvas"
	"github.com/ivlev/lyric2video/internal/director"
	"github.com/ivlev/lyric2video/internal/effects"
	"github.com/ivlev/lyric2video/internal/palette"
	"github.com/ivlev/lyric2video/internal/physics"
	"github.com/ivlev/lyric2video/internal/prng"
)

// ErrEmptyScene is returned when a sanitized scene has no lines and no duration
var ErrEmptyScene = errors.New("scene has nothing to bake")

const (
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultChunkTicks = 600 // 10 seconds of song per yield

	FPS = 60

	baseFontRatio    = 0.075
	maxLineWidth     = 0.9
	laneSpacing      = 1.35
	springFrequency  = 4.0
	springDamping    = 0.85
	maxZoom          = 1.5
	minVisibleAlpha  = 0.01
	pendingWordAlpha = 0.35
	beatPulseSeconds = 0.25
)

// Options control a bake
type Options struct {
	Width      int
	Height     int
	ChunkTicks int    // Ticks between cancellation checks and progress reports
	Detector   string // Hook detector variant, see analyzer.NewDetector
	Progress   func(percent int)
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = DefaultWidth, DefaultHeight
	}
	if o.ChunkTicks <= 0 {
		o.ChunkTicks = DefaultChunkTicks
	}
	return o
}

type wordLayout struct {
	id     string
	text   string
	x      float64
	start  float64
	end    float64
	jitter float64
}

type lineLayout struct {
	id       string
	text     string
	x, y     float64
	fontSize float64
	jitter   float64
	words    []wordLayout
}

type baker struct {
	dir      *director.Director
	scene    director.Scene
	opts     Options
	resolver *effects.Resolver
	phys     *physics.Integrator
	rng      *prng.PRNG
	spring   harmonica.Spring
	layout   []lineLayout
	accent   color.RGBA

	// Effect of each line, fixed on its first active tick
	lineFx []effects.Effect
	fxSet  []bool

	camX, camVX   float64
	camY, camVY   float64
	zoom, zoomVel float64
}

// Bake compiles a scene into a timeline with one keyframe per physics tick.
// The result depends only on the scene and options: the same input always
// yields the same timeline. Every Options.ChunkTicks ticks Bake checks ctx,
// reports progress and yields the processor.
func Bake(ctx context.Context, scene director.Scene, opts Options) (*Timeline, error) {
	opts = opts.withDefaults()
	dir := director.NewDirector(scene)
	s := dir.Scene()
	if len(s.Lines) == 0 && s.SongEnd <= s.SongStart {
		return nil, ErrEmptyScene
	}

	b, err := newBaker(dir, opts)
	if err != nil {
		return nil, err
	}
	return b.run(ctx)
}

func newBaker(dir *director.Director, opts Options) (*baker, error) {
	s := dir.Scene()

	lines := make([]analyzer.Line, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = analyzer.Line{Text: l.Text, Start: l.Start, End: l.End}
	}
	res, err := effects.NewResolver(effects.Config{
		System:   s.Physics.Kind(),
		Lines:    lines,
		Lexicon:  s.Lexicon(),
		Hooks:    s.Hooks,
		Detector: opts.Detector,
		Palette:  s.Palette,
	})
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}

	phys := physics.NewIntegrator(s.Physics)
	phys.SetViewportBounds(float64(opts.Width), float64(opts.Height))

	b := &baker{
		dir:      dir,
		scene:    s,
		opts:     opts,
		resolver: res,
		phys:     phys,
		rng:      prng.New(s.Seed).Fork("bake"),
		spring:   harmonica.NewSpring(harmonica.FPS(FPS), springFrequency, springDamping),
		accent:   palette.Pick(s.Palette, 1),
		zoom:     1,
		lineFx:   make([]effects.Effect, len(s.Lines)),
		fxSet:    make([]bool, len(s.Lines)),
	}
	b.layoutLines()
	return b, nil
}

// layoutLines places every line once. Overlapping lines take the first
// free lane below the center.
func (b *baker) layoutLines() {
	w, h := float64(b.opts.Width), float64(b.opts.Height)
	typo := b.scene.Typography
	tracking := 0.0
	upper := false
	if typo != nil {
		tracking = typo.Tracking
		upper = typo.Uppercase
	}
	measure := func(text string, size float64) float64 {
		return canvas.MeasureText(text, size) + tracking*size*float64(utf8.RuneCountInString(text))
	}

	var laneEnds []float64
	b.layout = make([]lineLayout, len(b.scene.Lines))
	for i, l := range b.scene.Lines {
		lane := 0
		for lane < len(laneEnds) && laneEnds[lane] > l.Start {
			lane++
		}
		if lane == len(laneEnds) {
			laneEnds = append(laneEnds, l.End)
		} else {
			laneEnds[lane] = l.End
		}

		text := l.Text
		if upper {
			text = strings.ToUpper(text)
		}
		size := math.Min(w, h) * baseFontRatio * b.resolver.Line(i, l.Start, physics.State{}).FontScale
		if width := measure(text, size); width > w*maxLineWidth {
			size *= w * maxLineWidth / width
		}

		lay := lineLayout{
			id:       fmt.Sprintf("line:%d", i),
			text:     text,
			x:        w / 2,
			y:        h/2 + float64(lane)*size*laneSpacing,
			fontSize: size,
			jitter:   b.rng.Next(),
		}

		if len(l.Words) > 0 {
			space := measure(" ", size)
			widths := make([]float64, len(l.Words))
			total := space * float64(len(l.Words)-1)
			for wi, word := range l.Words {
				wt := word.Text
				if upper {
					wt = strings.ToUpper(wt)
				}
				widths[wi] = measure(wt, size)
				total += widths[wi]
			}
			x := lay.x - total/2
			for wi, word := range l.Words {
				wt := word.Text
				if upper {
					wt = strings.ToUpper(wt)
				}
				lay.words = append(lay.words, wordLayout{
					id:     fmt.Sprintf("line:%d:w:%d", i, wi),
					text:   wt,
					x:      x + widths[wi]/2,
					start:  word.Start,
					end:    word.End,
					jitter: b.rng.Next(),
				})
				x += widths[wi] + space
			}
		}
		b.layout[i] = lay
	}
}

func beatTick(seconds float64) int {
	return int(math.Round(seconds / physics.DT))
}

func (b *baker) run(ctx context.Context) (*Timeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := b.scene

	startTick := int(math.Floor(s.SongStart/physics.DT + 1e-9))
	endTick := int(math.Ceil(s.SongEnd/physics.DT - 1e-9))
	if endTick < startTick {
		endTick = startTick
	}
	total := endTick - startTick + 1

	tl := &Timeline{
		Title:      s.Title,
		Seed:       s.Seed,
		FPS:        FPS,
		Width:      b.opts.Width,
		Height:     b.opts.Height,
		BaseWidth:  b.opts.Width,
		BaseHeight: b.opts.Height,
		StartMs:    float64(startTick) * physics.DT * 1000,
		EndMs:      float64(endTick) * physics.DT * 1000,
		Palette:    append([]string(nil), s.Palette...),
		Background: look("", s.Palette),
		Keyframes:  make([]Keyframe, 0, total),
	}
	for _, ch := range s.Direction.Chapters {
		p := ch.Palette
		if len(p) == 0 {
			p = s.Palette
		}
		tl.Chapters = append(tl.Chapters, look(ch.Title, p))
	}

	// Beats before the song start are skipped; the integrator starts at rest.
	beats := s.Beats
	bi := 0
	for bi < len(beats) && beatTick(beats[bi].Time) < startTick {
		bi++
	}
	lastBeat := bi - 1
	var lastTime, lastStrength float64
	if lastBeat >= 0 {
		lastTime, lastStrength = beats[lastBeat].Time, beats[lastBeat].Strength
	}

	reported := -1
	report := func(p int) {
		if b.opts.Progress != nil && p > reported {
			reported = p
			b.opts.Progress(p)
		}
	}
	report(0)

	for i := 0; i < total; i++ {
		tick := startTick + i
		t := float64(tick) * physics.DT

		burst := 0.0
		for bi < len(beats) && beatTick(beats[bi].Time) <= tick {
			bt := beats[bi]
			b.phys.OnBeat(bt.Strength, bt.Downbeat)
			burst = math.Max(burst, bt.Strength)
			lastBeat, lastTime, lastStrength = bi, bt.Time, bt.Strength
			bi++
		}
		st := b.phys.Tick()

		pulse := 0.0
		if lastBeat >= 0 {
			pulse = lastStrength * math.Max(0, 1-(t-lastTime)/beatPulseSeconds)
		}

		kf := b.frame(t, st, pulse, burst)
		kf.TimeMs = t * 1000
		kf.BeatIndex = lastBeat
		tl.Keyframes = append(tl.Keyframes, kf)

		if (i+1)%b.opts.ChunkTicks == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report((i + 1) * 100 / total)
			runtime.Gosched()
		}
	}

	report(100)
	return tl, nil
}

func look(title string, p []string) ChapterLook {
	top := palette.Pick(p, 2)
	bottom := palette.Blend(top, color.RGBA{A: 0xFF}, 0.6)
	return ChapterLook{Title: title, Top: palette.Hex(top), Bottom: palette.Hex(bottom)}
}

func (b *baker) frame(t float64, st physics.State, pulse, burst float64) Keyframe {
	from, to, ratio := b.dir.BackgroundBlend(t)
	kf := Keyframe{Chapter: from, NextChapter: to, BackgroundBlend: effects.EaseInOutCubic(ratio)}
	kf.CameraX, kf.CameraY, kf.Zoom = b.camera(t, st)

	for i := range b.layout {
		b.lineChunks(&kf, i, t, st, pulse)
	}

	pc := b.dir.ParticlesAt(t)
	kf.Particles = &ParticleCue{System: pc.System, Density: pc.Density, Burst: burst}
	return kf
}

// camera follows the physics offsets through springs and adds shake. The result never leaves the safe envelope.
func (b *baker) camera(t float64, st physics.State) (x, y, zoom float64) {
	b.camX, b.camVX = b.spring.Update(b.camX, b.camVX, st.OffsetX)
	b.camY, b.camVY = b.spring.Update(b.camY, b.camVY, st.OffsetY)

	target := b.dir.ZoomAt(t) * (1 + 0.04*b.dir.ClimaxProximity(t) + 0.02*b.dir.TensionAt(t))
	b.zoom, b.zoomVel = b.spring.Update(b.zoom, b.zoomVel, target)

	shakeX := (b.rng.Next()*2 - 1) * st.Shake
	shakeY := (b.rng.Next()*2 - 1) * st.Shake

	x = clamp(b.camX+shakeX, -st.SafeOffset, st.SafeOffset)
	y = clamp(b.camY+shakeY, -st.SafeOffset, st.SafeOffset)
	zoom = clamp(b.zoom, 1, maxZoom)
	return x, y, zoom
}

func (b *baker) lineChunks(kf *Keyframe, i int, t float64, st physics.State, pulse float64) {
	l := b.scene.Lines[i]
	if t < l.Start || t > l.End {
		return
	}
	a := b.resolver.Line(i, t, st)
	if !b.fxSet[i] {
		b.lineFx[i], b.fxSet[i] = a.Effect, true
	}
	a.Effect = b.lineFx[i]
	lay := b.layout[i]
	hex := palette.Hex(a.Color)

	if len(lay.words) == 0 {
		tr := effects.Apply(a.Effect, a.Entry, lay.jitter)
		alpha := effects.Clamp01(tr.Alpha * (1 - a.Exit))
		kf.Chunks = append(kf.Chunks, Chunk{
			ID:       lay.id,
			Kind:     KindLine,
			Text:     lay.text,
			X:        lay.x + tr.DX,
			Y:        lay.y + tr.DY,
			Alpha:    alpha,
			Scale:    tr.Scale * st.Scale,
			ScaleX:   tr.ScaleX,
			ScaleY:   tr.ScaleY,
			Skew:     tr.Skew,
			FontSize: lay.fontSize,
			Color:    hex,
			Visible:  alpha >= minVisibleAlpha,
		})
		return
	}

	for wi, w := range lay.words {
		tr := effects.Apply(a.Effect, a.Entry, w.jitter)
		alpha := tr.Alpha * (1 - a.Exit)
		scale := tr.Scale * st.Scale
		wa := b.resolver.Word(i, wi, pulse)

		switch {
		case t < w.start:
			alpha *= pendingWordAlpha
		case t <= w.end:
			scale *= wa.Scale
		}
		c := hex
		if wa.HasMark {
			c = palette.Hex(palette.Blend(a.Color, b.accent, wa.Intensity))
		}
		alpha = effects.Clamp01(alpha)

		kf.Chunks = append(kf.Chunks, Chunk{
			ID:       w.id,
			Kind:     KindWord,
			Text:     w.text,
			X:        w.x + tr.DX,
			Y:        lay.y + tr.DY,
			Alpha:    alpha,
			Scale:    scale,
			ScaleX:   tr.ScaleX,
			ScaleY:   tr.ScaleY,
			Skew:     tr.Skew,
			FontSize: lay.fontSize,
			Color:    c,
			Visible:  alpha >= minVisibleAlpha,
		})
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
