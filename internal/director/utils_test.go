package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateScenePath(t *testing.T) {
	path := GenerateScenePath("scenes")

	if !strings.HasPrefix(filepath.Base(path), "scene_") || filepath.Ext(path) != ".yaml" {
		t.Errorf("unexpected scene path: %s", path)
	}
	if filepath.Dir(path) != "scenes" {
		t.Errorf("path should be inside scenes/: %s", path)
	}

	t.Logf("Generated path: %s", path)
}

func TestFindLatestScene(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		"scene_2026-02-12_10-00-00.yaml",
		"scene_2026-02-13_01-00-00.json",
		"scene_2026-02-11_15-30-00.yml",
		"notes.txt",
	}
	base := time.Now().Add(-24 * time.Hour)
	for i, name := range files {
		f := filepath.Join(dir, name)
		if err := os.WriteFile(f, []byte("title: test\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(f, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := FindLatestScene(dir)
	if err != nil {
		t.Fatalf("FindLatestScene failed: %v", err)
	}
	if filepath.Base(latest) != "scene_2026-02-11_15-30-00.yml" {
		t.Errorf("expected newest scene file, got %s", latest)
	}
}

func TestFindLatestSceneEmpty(t *testing.T) {
	if _, err := FindLatestScene(t.TempDir()); err == nil {
		t.Error("expected error for directory without scenes")
	}
	if _, err := FindLatestScene(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Night Drive", "night-drive"},
		{"  Hello,   World!! ", "hello-world"},
		{"Кино 1986", "кино-1986"},
		{"???", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := TimelinePath("out", "???"); got != filepath.Join("out", "scene.timeline.yaml") {
		t.Errorf("TimelinePath fallback = %s", got)
	}
	if got := TimelinePath("out", "Night Drive"); got != filepath.Join("out", "night-drive.timeline.yaml") {
		t.Errorf("TimelinePath = %s", got)
	}
}
