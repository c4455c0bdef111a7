package director

import (
	"math"
	"sort"
	"strings"

	"github.com/ivlev/lyric2video/internal/palette"
	"github.com/ivlev/lyric2video/internal/particles"
	"github.com/ivlev/lyric2video/internal/physics"
)

// Safe defaults substituted for missing or malformed fields
const (
	DefaultVersion    = "1.0"
	DefaultSeed       = "lyric2video"
	DefaultFontFamily = "Inter"
	DefaultFontWeight = 700
	DefaultClimaxSpan = 8.0
	maxDensity        = 1.5
)

// Sanitize returns a copy of s with every field repaired into its valid
// range. It never fails: bad input is replaced, not reported. Sanitize is
// idempotent.
func Sanitize(s Scene) Scene {
	out := Scene{
		Version:   s.Version,
		Title:     strings.TrimSpace(s.Title),
		Seed:      s.Seed,
		SongStart: finite(s.SongStart),
		SongEnd:   finite(s.SongEnd),
	}
	if out.Version == "" {
		out.Version = DefaultVersion
	}
	if out.Seed == "" {
		out.Seed = out.Title
	}
	if out.Seed == "" {
		out.Seed = DefaultSeed
	}

	spec := s.Physics
	if spec.Seed == "" {
		spec.Seed = out.Seed
	}
	out.Physics = physics.NewSpec(spec)

	out.Palette = validColors(s.Palette)
	if len(out.Palette) == 0 {
		out.Palette = append([]string(nil), out.Physics.Palette...)
	}

	out.Typography = sanitizeTypography(s.Typography, out.Physics.Typography)
	out.Particles = sanitizeParticles(s.Particles)
	if out.Particles == nil {
		out.Particles = &ParticleConfig{System: particles.None.String()}
	}

	out.Lines = sanitizeLines(s.Lines)
	out.Beats = sanitizeBeats(s.Beats)
	out.Direction = sanitizeDirection(s.Direction)
	out.Hooks = append(out.Hooks, s.Hooks...)

	if out.SongStart < 0 {
		out.SongStart = 0
	}
	if out.SongEnd <= out.SongStart {
		out.SongEnd = contentEnd(out)
	}
	if out.SongEnd < out.SongStart {
		out.SongEnd = out.SongStart
	}
	if c := out.Direction.Climax; c != nil {
		c.T = clamp(c.T, out.SongStart, out.SongEnd)
	}
	return out
}

func sanitizeTypography(t, fallback *physics.Typography) *physics.Typography {
	if t == nil {
		t = fallback
	}
	out := physics.Typography{FontFamily: DefaultFontFamily, FontWeight: DefaultFontWeight}
	if t == nil {
		return &out
	}
	out = *t
	if strings.TrimSpace(out.FontFamily) == "" {
		out.FontFamily = DefaultFontFamily
	}
	if out.FontWeight == 0 {
		out.FontWeight = DefaultFontWeight
	}
	if out.FontWeight < 100 {
		out.FontWeight = 100
	}
	if out.FontWeight > 900 {
		out.FontWeight = 900
	}
	out.Tracking = clamp(finite(out.Tracking), -0.2, 0.5)
	return &out
}

func sanitizeParticles(p *ParticleConfig) *ParticleConfig {
	if p == nil {
		return nil
	}
	return &ParticleConfig{
		System:  particles.ParseKind(p.System).String(),
		Density: clamp(finite(p.Density), 0, maxDensity),
	}
}

func sanitizeLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		l.Text = strings.TrimSpace(l.Text)
		if l.Text == "" || !isFinite(l.Start) || !isFinite(l.End) {
			continue
		}
		if l.End < l.Start {
			l.Start, l.End = l.End, l.Start
		}
		if l.Start < 0 {
			l.Start = 0
		}
		words := make([]Word, 0, len(l.Words))
		for _, w := range l.Words {
			w.Text = strings.TrimSpace(w.Text)
			if w.Text == "" || !isFinite(w.Start) || !isFinite(w.End) {
				continue
			}
			if w.End < w.Start {
				w.Start, w.End = w.End, w.Start
			}
			w.Start = clamp(w.Start, l.Start, l.End)
			w.End = clamp(w.End, w.Start, l.End)
			words = append(words, w)
		}
		sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })
		if len(words) == 0 {
			words = nil
		}
		l.Words = words
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func sanitizeBeats(beats []Beat) []Beat {
	out := make([]Beat, 0, len(beats))
	for _, b := range beats {
		if !isFinite(b.Time) || b.Time < 0 {
			continue
		}
		if b.Strength == 0 || !isFinite(b.Strength) {
			b.Strength = 1
		}
		b.Strength = clamp(b.Strength, 0, 1)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func sanitizeDirection(d Direction) Direction {
	var out Direction
	for _, c := range d.Chapters {
		if !isFinite(c.Start) || !isFinite(c.End) {
			continue
		}
		if c.End < c.Start {
			c.Start, c.End = c.End, c.Start
		}
		c.Palette = validColors(c.Palette)
		c.Particles = sanitizeParticles(c.Particles)
		if c.Zoom <= 0 || !isFinite(c.Zoom) {
			c.Zoom = 1
		}
		c.Zoom = clamp(c.Zoom, 1, 1.5)
		out.Chapters = append(out.Chapters, c)
	}
	sort.SliceStable(out.Chapters, func(i, j int) bool { return out.Chapters[i].Start < out.Chapters[j].Start })

	for _, p := range d.Tension {
		if !isFinite(p.T) || !isFinite(p.Value) {
			continue
		}
		p.Value = clamp(p.Value, 0, 1)
		out.Tension = append(out.Tension, p)
	}
	sort.SliceStable(out.Tension, func(i, j int) bool { return out.Tension[i].T < out.Tension[j].T })

	if d.Climax != nil && isFinite(d.Climax.T) {
		c := *d.Climax
		if c.Width <= 0 || !isFinite(c.Width) {
			c.Width = DefaultClimaxSpan
		}
		out.Climax = &c
	}
	out.WordDirectives = append(out.WordDirectives, d.WordDirectives...)
	return out
}

func contentEnd(s Scene) float64 {
	end := 0.0
	for _, l := range s.Lines {
		end = math.Max(end, l.End)
	}
	for _, b := range s.Beats {
		end = math.Max(end, b.Time)
	}
	for _, c := range s.Direction.Chapters {
		end = math.Max(end, c.End)
	}
	return end
}

func validColors(in []string) []string {
	var out []string
	for _, c := range in {
		if palette.Valid(c) {
			out = append(out, strings.TrimSpace(c))
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
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

// Lexicon returns the physics lexicon with the direction's word directives
// appended. Lexicon entries come first and win on duplicate keys.
func (s Scene) Lexicon() *physics.Lexicon {
	if s.Physics.Lexicon == nil && len(s.Direction.WordDirectives) == 0 {
		return nil
	}
	lex := physics.Lexicon{}
	if s.Physics.Lexicon != nil {
		lex.LineMods = append(lex.LineMods, s.Physics.Lexicon.LineMods...)
		lex.WordMarks = append(lex.WordMarks, s.Physics.Lexicon.WordMarks...)
	}
	for _, d := range s.Direction.WordDirectives {
		if d.Mark != "" {
			lex.WordMarks = append(lex.WordMarks, physics.WordMark{T: d.T, WordIndex: d.WordIndex, Mark: d.Mark})
		}
	}
	return &lex
}
