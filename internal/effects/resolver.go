package effects

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/ivlev/lyric2video/internal/analyzer"
	"github.com/ivlev/lyric2video/internal/palette"
	"github.com/ivlev/lyric2video/internal/physics"
)

const (
	maxRamp      = 0.35
	rampFraction = 0.2

	highScale = 1.2
	softScale = 0.85

	repeatStep = 0.08
	repeatMax  = 0.25
)

var highEnergy = []string{
	"SHATTER", "BURST", "EXPLODE", "SLAM", "CRACK", "SURGE", "RUSH", "FLASH",
	"IMPACT", "ROAR", "SCREAM", "STRIKE", "DROP", "HIT", "FRACTURE",
}

var soft = []string{
	"FADE", "SOFT", "WHISPER", "BREATH", "DRIFT", "HUSH", "GENTLE", "DISSOLVE", "FLOAT", "ECHO",
}

// Intensity buckets a modifier by its vocabulary.
type Intensity int

const (
	Neutral Intensity = iota
	Soft
	High
)

// Classify returns the intensity bucket of a modifier key.
func Classify(mod string) Intensity {
	k := canonicalKey(mod)
	if k == "" {
		return Neutral
	}
	for _, w := range highEnergy {
		if strings.Contains(k, w) {
			return High
		}
	}
	for _, w := range soft {
		if strings.Contains(k, w) {
			return Soft
		}
	}
	return Neutral
}

// FontScale combines the modifier bucket with the repetition boost.
func FontScale(mod string, repeatIndex int) float64 {
	base := 1.0
	switch Classify(mod) {
	case High:
		base = highScale
	case Soft:
		base = softScale
	}
	return base * (1 + math.Min(repeatMax, repeatStep*float64(repeatIndex)))
}

// Config describes what a Resolver resolves against.
type Config struct {
	System   physics.System
	Lines    []analyzer.Line
	Lexicon  *physics.Lexicon
	Hooks    []analyzer.Hook
	Detector string
	Palette  []string
}

// LineAnim is the resolved animation of one line at one instant.
type LineAnim struct {
	Index       int
	Active      bool
	Entry       float64
	Exit        float64
	Visibility  float64
	Mod         string
	Hook        bool
	RepeatIndex int
	FontScale   float64
	Effect      Effect
	Color       color.RGBA
}

// WordAnim is the resolved emphasis of one word.
type WordAnim struct {
	Mark      string
	HasMark   bool
	Intensity float64
	Scale     float64
}

type markKey struct {
	t, index int
}

// Resolver turns physics state and lexicon modifiers into per-line and
// per-word animation parameters. It is read-only after construction.
type Resolver struct {
	system  physics.System
	lines   []analyzer.Line
	repeats []int
	hooks   []analyzer.Hook
	mods    map[int]string
	marks   map[markKey]string
	base    color.RGBA
	accent  color.RGBA
}

// NewResolver builds a resolver. Hooks come from the configured detector.
func NewResolver(cfg Config) (*Resolver, error) {
	det, err := analyzer.NewDetector(cfg.Detector, cfg.Hooks)
	if err != nil {
		return nil, fmt.Errorf("hook detector: %w", err)
	}
	hooks, err := det.Detect(cfg.Lines)
	if err != nil {
		return nil, fmt.Errorf("detect hooks: %w", err)
	}

	r := &Resolver{
		system:  cfg.System,
		lines:   cfg.Lines,
		repeats: analyzer.RepeatIndex(cfg.Lines),
		hooks:   hooks,
		mods:    make(map[int]string),
		marks:   make(map[markKey]string),
		base:    palette.Pick(cfg.Palette, 0),
		accent:  palette.Pick(cfg.Palette, 1),
	}
	if cfg.Lexicon != nil {
		for _, m := range cfg.Lexicon.LineMods {
			if _, dup := r.mods[m.T]; !dup && m.Mod != "" {
				r.mods[m.T] = m.Mod
			}
		}
		for _, m := range cfg.Lexicon.WordMarks {
			k := markKey{m.T, m.WordIndex}
			if _, dup := r.marks[k]; !dup && m.Mark != "" {
				r.marks[k] = m.Mark
			}
		}
	}
	return r, nil
}

// Hooks returns the hook spans in effect.
func (r *Resolver) Hooks() []analyzer.Hook {
	return r.hooks
}

// Ramp returns the entry/exit ramp length for a line of the given duration.
func Ramp(duration float64) float64 {
	return math.Min(maxRamp, rampFraction*duration)
}

// ModAt returns the modifier for a line starting at start. Modifiers are
// keyed by the rounded second; when there is no exact key the nearest key
// within one second wins, the earlier one on a tie.
func (r *Resolver) ModAt(start float64) (string, bool) {
	key := int(math.Round(start))
	if m, ok := r.mods[key]; ok {
		return m, true
	}
	return nearest(start, key, func(k int) (string, bool) {
		m, ok := r.mods[k]
		return m, ok
	})
}

// MarkAt returns the word mark for (start, index) with the same tolerance
// as ModAt.
func (r *Resolver) MarkAt(start float64, index int) (string, bool) {
	key := int(math.Round(start))
	if m, ok := r.marks[markKey{key, index}]; ok {
		return m, true
	}
	return nearest(start, key, func(k int) (string, bool) {
		m, ok := r.marks[markKey{k, index}]
		return m, ok
	})
}

func nearest(start float64, key int, get func(int) (string, bool)) (string, bool) {
	cands := []int{key - 1, key + 1}
	sort.SliceStable(cands, func(i, j int) bool {
		return math.Abs(float64(cands[i])-start) < math.Abs(float64(cands[j])-start)
	})
	for _, k := range cands {
		if m, ok := get(k); ok {
			return m, true
		}
	}
	return "", false
}

// IsHook reports whether line idx sits inside a hook span.
func (r *Resolver) IsHook(idx int) bool {
	if idx < 0 || idx >= len(r.lines) {
		return false
	}
	l := r.lines[idx]
	mid := (l.Start + l.End) / 2
	for _, h := range r.hooks {
		if h.Contains(mid) {
			return true
		}
	}
	return false
}

// Line resolves line idx at time t under physics state st.
func (r *Resolver) Line(idx int, t float64, st physics.State) LineAnim {
	if idx < 0 || idx >= len(r.lines) {
		return LineAnim{Index: idx, FontScale: 1}
	}
	l := r.lines[idx]
	a := LineAnim{
		Index:       idx,
		Active:      t >= l.Start && t <= l.End,
		Hook:        r.IsHook(idx),
		RepeatIndex: r.repeats[idx],
	}

	ramp := Ramp(l.End - l.Start)
	if ramp > 0 {
		a.Entry = EaseOutCubic((t - l.Start) / ramp)
		a.Exit = EaseInCubic((t - (l.End - ramp)) / ramp)
	} else if a.Active {
		a.Entry = 1
	}
	if a.Active {
		a.Visibility = a.Entry * (1 - a.Exit)
	}

	a.Mod, _ = r.ModAt(l.Start)
	a.FontScale = FontScale(a.Mod, a.RepeatIndex)

	switch {
	case a.Mod != "":
		a.Effect = Normalize(a.Mod)
	case a.Hook:
		a.Effect = HookFracture
	default:
		a.Effect = ForSystem(r.system, st)
	}

	if a.Hook {
		a.Color = r.accent
	} else {
		a.Color = palette.Blend(r.base, r.accent, Clamp01(st.Heat)*0.5)
	}
	return a
}

// Word resolves word wordIdx of line lineIdx for the current beat strength.
func (r *Resolver) Word(lineIdx, wordIdx int, beatStrength float64) WordAnim {
	w := WordAnim{Scale: 1}
	beatStrength = Clamp01(beatStrength)
	if lineIdx < 0 || lineIdx >= len(r.lines) {
		return w
	}
	mark, ok := r.MarkAt(r.lines[lineIdx].Start, wordIdx)
	weight := 0.0
	if ok {
		w.Mark, w.HasMark = mark, true
		switch Classify(mark) {
		case High:
			weight = 1
		case Soft:
			weight = 0.3
		default:
			weight = 0.6
		}
	}
	w.Intensity = Clamp01(0.5*weight + 0.5*beatStrength)
	if w.HasMark {
		w.Scale = 1 + 0.2*w.Intensity
	}
	return w
}
