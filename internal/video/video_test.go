package video

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/lyric2video/internal/director"
	"github.com/ivlev/lyric2video/internal/engine"
	"github.com/ivlev/lyric2video/internal/particles"
	"github.com/ivlev/lyric2video/internal/physics"
)

func bakeSmall(t *testing.T) *engine.Timeline {
	t.Helper()
	beats := []director.Beat{{Time: 0.1, Strength: 1}, {Time: 0.4, Strength: 0.6}}
	scene := director.Scene{
		Title: "Export",
		Seed:  "export-seed",
		Lines: []director.Line{
			{Text: "glow", Start: 0, End: 0.8},
		},
		Beats:     beats,
		SongEnd:   1,
		Physics:   physics.Spec{System: "combustion"},
		Particles: &director.ParticleConfig{System: "embers", Density: 0.8},
	}
	tl, err := engine.Bake(context.Background(), scene, engine.Options{Width: 160, Height: 90})
	if err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	return tl
}

func TestFrameTimes(t *testing.T) {
	tl := bakeSmall(t)

	tests := []struct {
		name     string
		opts     Options
		expected int
	}{
		{"Whole", Options{FPS: 10}, 11},
		{"Range", Options{FPS: 10, From: 0.2, To: 0.5}, 4},
		{"PastEnd", Options{FPS: 10, To: 5}, 11},
		{"Empty", Options{FPS: 10, From: 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := NewExporter(tt.opts).FrameTimes(tl)
			if len(times) != tt.expected {
				t.Errorf("expected %d frames, got %d", tt.expected, len(times))
			}
			for i := 1; i < len(times); i++ {
				if times[i] <= times[i-1] {
					t.Fatalf("times not increasing at %d", i)
				}
			}
		})
	}
}

func TestExportWritesFrames(t *testing.T) {
	tl := bakeSmall(t)
	dir := t.TempDir()

	var last int
	e := NewExporter(Options{FPS: 10, To: 0.5, Workers: 3, Tier: particles.Desktop,
		Progress: func(done, total int) { last = done }})
	n, err := e.Export(context.Background(), tl, dir)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 frames, got %d", n)
	}
	if last != n {
		t.Errorf("progress ended at %d, want %d", last, n)
	}
	if e.Stats().Frames != n || e.Stats().PeakParticles > particles.Desktop.Ceiling() {
		t.Errorf("unexpected stats %+v", e.Stats())
	}

	for i := 0; i < n; i++ {
		f, err := os.Open(filepath.Join(dir, fmt.Sprintf(FramePattern, i)))
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
			t.Errorf("frame %d has size %v", i, b)
		}
	}
}

func TestExportRescaled(t *testing.T) {
	tl := bakeSmall(t)
	dir := t.TempDir()

	n, err := NewExporter(Options{FPS: 5, To: 0.2, Width: 90, Height: 160}).Export(context.Background(), tl, dir)
	if err != nil || n != 2 {
		t.Fatalf("Export: n=%d err=%v", n, err)
	}
	f, _ := os.Open(filepath.Join(dir, fmt.Sprintf(FramePattern, 0)))
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 90 || cfg.Height != 160 {
		t.Errorf("expected 90x160, got %dx%d", cfg.Width, cfg.Height)
	}
	if tl.Width != 160 {
		t.Error("export must not rescale the shared timeline")
	}
}

func TestExportDeterministic(t *testing.T) {
	tl := bakeSmall(t)

	export := func(workers int) [][]byte {
		dir := t.TempDir()
		n, err := NewExporter(Options{FPS: 20, Workers: workers, Tier: particles.HighEnd}).Export(context.Background(), tl, dir)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		out := make([][]byte, n)
		for i := range out {
			out[i], err = os.ReadFile(filepath.Join(dir, fmt.Sprintf(FramePattern, i)))
			if err != nil {
				t.Fatal(err)
			}
		}
		return out
	}

	a, b := export(1), export(4)
	if len(a) != len(b) {
		t.Fatalf("frame counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			t.Fatalf("frame %d differs between runs", i)
		}
	}
}

func TestExportCancelled(t *testing.T) {
	tl := bakeSmall(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExporter(Options{FPS: 10}).Export(ctx, tl, t.TempDir()); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
