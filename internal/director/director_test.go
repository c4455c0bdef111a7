package director

import (
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/ivlev/lyric2video/internal/physics"
)

func testScene() Scene {
	return Scene{
		Title: "Night Drive",
		Lines: []Line{
			{Text: "second", Start: 6, End: 4},
			{Text: "  first  ", Start: 1, End: 3, Words: []Word{
				{Text: "late", Start: 2, End: 2.5},
				{Text: "early", Start: 0.5, End: 1.5},
			}},
			{Text: "   ", Start: 2, End: 3},
		},
		Beats: []Beat{
			{Time: 2, Strength: 3},
			{Time: 1, Downbeat: true},
			{Time: -1},
		},
		Physics: physics.Spec{System: "FRACTURE"},
		Palette: []string{"#123456", "not-a-color", "teal"},
		Direction: Direction{
			Chapters: []Chapter{
				{Title: "chorus", Start: 10, End: 20, Particles: &ParticleConfig{System: "snow", Density: 9}},
				{Title: "verse", Start: 0, End: 10, Palette: []string{"#000000", "#ffffff"}},
			},
			Tension: []TensionPoint{{T: 10, Value: 1}, {T: 0, Value: 0}, {T: 20, Value: 7}},
			Climax:  &Climax{T: 15},
		},
		Particles: &ParticleConfig{System: "plasma", Density: 0.5},
	}
}

func TestSanitizeDefaults(t *testing.T) {
	s := Sanitize(Scene{})

	if s.Version != DefaultVersion || s.Seed != DefaultSeed {
		t.Errorf("version/seed defaults: %q %q", s.Version, s.Seed)
	}
	if s.Typography == nil || s.Typography.FontFamily != DefaultFontFamily || s.Typography.FontWeight != DefaultFontWeight {
		t.Errorf("typography default: %+v", s.Typography)
	}
	if s.Particles == nil || s.Particles.System != "none" {
		t.Errorf("particles default: %+v", s.Particles)
	}
	if s.Physics.System != "breath" {
		t.Errorf("physics default system = %s", s.Physics.System)
	}
	if len(s.Palette) == 0 {
		t.Error("palette should fall back to the physics preset")
	}
	if s.SongEnd != 0 || s.SongStart != 0 {
		t.Errorf("empty scene bounds = [%v,%v]", s.SongStart, s.SongEnd)
	}
}

func TestSanitizeRepairs(t *testing.T) {
	s := Sanitize(testScene())

	if len(s.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", s.Lines)
	}
	if s.Lines[0].Text != "first" || s.Lines[1].Start != 4 || s.Lines[1].End != 6 {
		t.Errorf("lines not repaired: %+v", s.Lines)
	}
	if w := s.Lines[0].Words; len(w) != 2 || w[0].Text != "early" || w[0].Start != 1 {
		t.Errorf("words not sorted/clamped: %+v", w)
	}
	if len(s.Beats) != 2 || s.Beats[0].Time != 1 || s.Beats[0].Strength != 1 || s.Beats[1].Strength != 1 {
		t.Errorf("beats: %+v", s.Beats)
	}
	if s.Physics.System != "fracture" || s.Physics.Seed != "Night Drive" {
		t.Errorf("physics: %s seed %q", s.Physics.System, s.Physics.Seed)
	}
	if len(s.Palette) != 2 {
		t.Errorf("invalid palette entries should be dropped: %v", s.Palette)
	}
	if s.Particles.System != "none" {
		t.Errorf("unknown particle system should map to none, got %s", s.Particles.System)
	}
	if c := s.Direction.Chapters; c[0].Title != "verse" || c[1].Particles.Density != maxDensity {
		t.Errorf("chapters: %+v", c)
	}
	if s.Direction.Tension[2].Value != 1 {
		t.Errorf("tension should clamp: %+v", s.Direction.Tension)
	}
	if s.Direction.Climax.Width != DefaultClimaxSpan {
		t.Errorf("climax width = %v", s.Direction.Climax.Width)
	}
	if s.SongEnd != 20 {
		t.Errorf("song end should be derived from content, got %v", s.SongEnd)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	once := Sanitize(testScene())
	twice := Sanitize(once)
	a, _ := json.Marshal(once)
	b, _ := json.Marshal(twice)
	if string(a) != string(b) {
		t.Errorf("Sanitize is not idempotent:\n%s\n%s", a, b)
	}
}

func TestDirectorLookups(t *testing.T) {
	d := NewDirector(testScene())

	if d.ChapterAt(5) != 0 || d.ChapterAt(10) != 1 || d.ChapterAt(25) != -1 {
		t.Errorf("ChapterAt: %d %d %d", d.ChapterAt(5), d.ChapterAt(10), d.ChapterAt(25))
	}
	if d.ChapterTitle(12) != "chorus" {
		t.Errorf("ChapterTitle(12) = %q", d.ChapterTitle(12))
	}
	if got := d.TensionAt(5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("TensionAt(5) = %v", got)
	}
	if d.TensionAt(-3) != 0 || d.TensionAt(30) != 1 {
		t.Errorf("tension should hold at the ends")
	}
	if d.ClimaxProximity(15) != 1 || d.ClimaxProximity(19) != 0.5 || d.ClimaxProximity(40) != 0 {
		t.Errorf("climax proximity: %v %v %v", d.ClimaxProximity(15), d.ClimaxProximity(19), d.ClimaxProximity(40))
	}
	if p := d.ParticlesAt(12); p.System != "snow" {
		t.Errorf("chapter particles: %+v", p)
	}
	if p := d.ParticlesAt(5); p.System != "none" {
		t.Errorf("scene particles: %+v", p)
	}
	if p := d.PaletteAt(5); p[0] != "#000000" {
		t.Errorf("chapter palette: %v", p)
	}
	if p := d.PaletteAt(15); p[0] != "#123456" {
		t.Errorf("scene palette fallback: %v", p)
	}
}

func TestBackgroundBlend(t *testing.T) {
	d := NewDirector(testScene())

	tests := []struct {
		t        float64
		from, to int
		ratio    float64
	}{
		{5, 0, 0, 0},
		{8, 0, 1, 0},
		{9, 0, 1, 0.5},
		{19, 1, 1, 0},
		{30, -1, -1, 0},
	}
	for _, tt := range tests {
		from, to, ratio := d.BackgroundBlend(tt.t)
		if from != tt.from || to != tt.to || math.Abs(ratio-tt.ratio) > 1e-12 {
			t.Errorf("BackgroundBlend(%v) = %d,%d,%v want %d,%d,%v", tt.t, from, to, ratio, tt.from, tt.to, tt.ratio)
		}
	}
}

func TestSceneWriteRead(t *testing.T) {
	scene := Sanitize(testScene())
	dir := t.TempDir()

	for _, name := range []string{"scene.yaml", "scene.json"} {
		path := filepath.Join(dir, name)
		if err := WriteScene(&scene, path); err != nil {
			t.Fatalf("WriteScene(%s) failed: %v", name, err)
		}
		read, err := ReadScene(path)
		if err != nil {
			t.Fatalf("ReadScene(%s) failed: %v", name, err)
		}
		if read.Title != scene.Title || len(read.Lines) != len(scene.Lines) || read.Physics.System != scene.Physics.System {
			t.Errorf("%s: round trip mismatch: %+v", name, read)
		}
	}

	err := WriteScene(&scene, filepath.Join(dir, "scene.txt"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLexiconMergesDirectives(t *testing.T) {
	s := Scene{
		Physics: physics.Spec{Lexicon: &physics.Lexicon{WordMarks: []physics.WordMark{{T: 1, WordIndex: 0, Mark: "A"}}}},
		Direction: Direction{WordDirectives: []WordDirective{
			{T: 1, WordIndex: 0, Mark: "B"},
			{T: 2, WordIndex: 3, Mark: "C"},
			{T: 3, WordIndex: 0},
		}},
	}
	lex := s.Lexicon()
	if len(lex.WordMarks) != 3 || lex.WordMarks[0].Mark != "A" || lex.WordMarks[2].Mark != "C" {
		t.Errorf("merged marks: %+v", lex.WordMarks)
	}
	if len(s.Physics.Lexicon.WordMarks) != 1 {
		t.Error("Lexicon must not modify the scene")
	}
	if (Scene{}).Lexicon() != nil {
		t.Error("empty scene should have no lexicon")
	}
}
