package effects

import (
	"math"
	"testing"

	"github.com/ivlev/lyric2video/internal/analyzer"
	"github.com/ivlev/lyric2video/internal/physics"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		key  string
		want Effect
	}{
		{"SHATTER_IN", ShatterIn},
		{"shatter in", ShatterIn},
		{"ICE_SHARD_BURST", ShatterIn},
		{"thunder-crack", GlitchFlash},
		{"bass drop", GravityDrop},
		{"HOOK_FRACTURE", HookFracture},
		{"SOMETHING_NEW", StaticResolve},
		{"", StaticResolve},
	}
	for _, tt := range tests {
		if got := Normalize(tt.key); got != tt.want {
			t.Errorf("Normalize(%q) = %s, want %s", tt.key, got, tt.want)
		}
	}
	if _, ok := Lookup("SOMETHING_NEW"); ok {
		t.Error("unknown key should not be recognized")
	}
	for _, e := range All() {
		if got := Normalize(e.String()); got != e {
			t.Errorf("canonical %s round-trips to %s", e, got)
		}
	}
	if len(All()) != 10 {
		t.Errorf("expected 10 canonical effects, got %d", len(All()))
	}
}

func TestAliasesTargetCanonicalEffects(t *testing.T) {
	for k, e := range aliases {
		if e < 0 || e >= effectCount {
			t.Errorf("alias %s points outside the canonical set", k)
		}
		if canonicalKey(k) != k {
			t.Errorf("alias %s is not stored normalized", k)
		}
	}
}

func TestForSystem(t *testing.T) {
	tests := []struct {
		name string
		sys  physics.System
		st   physics.State
		want Effect
	}{
		{"fracture fractured", physics.Fracture, physics.State{IsFractured: true}, ShatterIn},
		{"fracture pulse", physics.Fracture, physics.State{Shatter: 0.5}, GlitchFlash},
		{"fracture rest", physics.Fracture, physics.State{Scale: 1}, StaticResolve},
		{"pressure squeeze", physics.Pressure, physics.State{Scale: 1.2}, TunnelRush},
		{"pressure jolt", physics.Pressure, physics.State{Scale: 1, Shake: 8, SafeOffset: 24}, PulseBloom},
		{"pressure residual shake", physics.Pressure, physics.State{Scale: 1, Shake: 0.001, SafeOffset: 24}, StaticResolve},
		{"pressure rest", physics.Pressure, physics.State{Scale: 1, SafeOffset: 24}, StaticResolve},
		{"breath warm", physics.Breath, physics.State{Heat: 0.4}, PulseBloom},
		{"combustion hot", physics.Combustion, physics.State{Heat: 0.7}, EmberRise},
		{"orbit fast", physics.Orbit, physics.State{Velocity: -0.6}, RippleOut},
		{"orbit drift", physics.Orbit, physics.State{Position: 0.2}, WaveSurge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForSystem(tt.sys, tt.st); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFontScale(t *testing.T) {
	tests := []struct {
		mod    string
		repeat int
		want   float64
	}{
		{"", 0, 1},
		{"SHATTER_IN", 0, 1.2},
		{"soft fade", 0, 0.85},
		{"", 1, 1.08},
		{"", 10, 1.25},
		{"IMPACT", 2, 1.2 * 1.16},
	}
	for _, tt := range tests {
		if got := FontScale(tt.mod, tt.repeat); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FontScale(%q,%d) = %v, want %v", tt.mod, tt.repeat, got, tt.want)
		}
	}
}

func testResolver(t *testing.T, lex *physics.Lexicon) *Resolver {
	t.Helper()
	r, err := NewResolver(Config{
		System: physics.Fracture,
		Lines: []analyzer.Line{
			{Text: "first", Start: 0.4, End: 1.4},
			{Text: "second line", Start: 4.6, End: 9.6},
			{Text: "third", Start: 12, End: 14},
		},
		Lexicon: lex,
		Palette: []string{"#ffffff", "#ff0000"},
	})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestLineRamps(t *testing.T) {
	r := testResolver(t, nil)

	if Ramp(1) != 0.2 || Ramp(5) != 0.35 {
		t.Fatalf("Ramp(1)=%v Ramp(5)=%v", Ramp(1), Ramp(5))
	}

	a := r.Line(0, 0.4, physics.State{})
	if a.Entry != 0 || a.Visibility != 0 || !a.Active {
		t.Errorf("at line start: %+v", a)
	}
	a = r.Line(0, 0.5, physics.State{})
	if a.Entry <= 0 || a.Entry >= 1 {
		t.Errorf("mid-ramp entry = %v", a.Entry)
	}
	a = r.Line(0, 0.9, physics.State{})
	if a.Entry != 1 || a.Exit != 0 || a.Visibility != 1 {
		t.Errorf("middle of line: %+v", a)
	}
	a = r.Line(0, 1.4, physics.State{})
	if a.Exit < 0.999999 || a.Visibility > 1e-6 {
		t.Errorf("line end: %+v", a)
	}
	a = r.Line(0, 3, physics.State{})
	if a.Active || a.Visibility != 0 {
		t.Errorf("after line: %+v", a)
	}
}

func TestModLookupTolerance(t *testing.T) {
	lex := &physics.Lexicon{
		LineMods: []physics.LineMod{
			{T: 4, Mod: "EARLY"},
			{T: 6, Mod: "LATE"},
			{T: 13, Mod: "THUNDER_CRACK"},
		},
	}
	r := testResolver(t, lex)

	// start 0.4 rounds to 0: no key within one second.
	if m, ok := r.ModAt(0.4); ok {
		t.Errorf("unexpected mod %q", m)
	}
	// 4.6 rounds to 5; 4 and 6 are both one away from the key, 4 is nearer
	// to the real start.
	if m, _ := r.ModAt(4.6); m != "EARLY" {
		t.Errorf("ModAt(4.6) = %q, want EARLY", m)
	}
	if m, _ := r.ModAt(5.6); m != "LATE" {
		t.Errorf("ModAt(5.6) = %q, want LATE", m)
	}
	if m, _ := r.ModAt(5.0); m != "EARLY" {
		t.Errorf("tie should pick the earlier key, got %q", m)
	}
	if m, _ := r.ModAt(12); m != "THUNDER_CRACK" {
		t.Errorf("ModAt(12) = %q", m)
	}

	a := r.Line(2, 13, physics.State{})
	if a.Effect != GlitchFlash || math.Abs(a.FontScale-1.2) > 1e-12 {
		t.Errorf("line 2: effect %s scale %v", a.Effect, a.FontScale)
	}
}

func TestWordIntensity(t *testing.T) {
	lex := &physics.Lexicon{
		WordMarks: []physics.WordMark{
			{T: 5, WordIndex: 1, Mark: "SLAM"},
			{T: 0, WordIndex: 0, Mark: "whisper"},
		},
	}
	r := testResolver(t, lex)

	w := r.Word(1, 1, 1)
	if !w.HasMark || w.Intensity != 1 || math.Abs(w.Scale-1.2) > 1e-12 {
		t.Errorf("slam word: %+v", w)
	}
	w = r.Word(1, 0, 0.5)
	if w.HasMark || math.Abs(w.Intensity-0.25) > 1e-12 || w.Scale != 1 {
		t.Errorf("unmarked word: %+v", w)
	}
	w = r.Word(0, 0, 0)
	if !w.HasMark || math.Abs(w.Intensity-0.15) > 1e-12 {
		t.Errorf("soft word: %+v", w)
	}
}

func TestHookLinesUseAccent(t *testing.T) {
	r, err := NewResolver(Config{
		System: physics.Breath,
		Lines: []analyzer.Line{
			{Text: "la la", Start: 0, End: 1},
			{Text: "la la", Start: 1, End: 2},
			{Text: "verse", Start: 2, End: 3},
			{Text: "la la", Start: 3, End: 4},
		},
		Palette: []string{"#000000", "#00ff00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Hooks()) != 2 {
		t.Fatalf("expected synthesized hooks, got %+v", r.Hooks())
	}
	a := r.Line(0, 0.5, physics.State{})
	if !a.Hook || a.Effect != HookFracture || a.Color.G != 0xFF {
		t.Errorf("hook line: %+v", a)
	}
	a = r.Line(2, 2.5, physics.State{})
	if a.Hook || a.Effect != StaticResolve {
		t.Errorf("verse line: %+v", a)
	}
	a = r.Line(3, 3.5, physics.State{})
	if a.RepeatIndex != 2 || math.Abs(a.FontScale-1.16) > 1e-9 {
		t.Errorf("third repeat: %+v", a)
	}
}

func TestUnknownDetectorFails(t *testing.T) {
	if _, err := NewResolver(Config{Detector: "magic"}); err == nil {
		t.Error("expected error for unknown detector")
	}
}

func TestApplySettlesToIdentity(t *testing.T) {
	for _, e := range All() {
		if got := Apply(e, 1, 0.73); got != Identity {
			t.Errorf("%s at progress 1 = %+v", e, got)
		}
		start := Apply(e, 0, 0.73)
		if start.Alpha != 0 {
			t.Errorf("%s at progress 0 alpha = %v", e, start.Alpha)
		}
		a, b := Apply(e, 0.4, 0.2), Apply(e, 0.4, 0.2)
		if a != b {
			t.Errorf("%s is not deterministic", e)
		}
	}
}
