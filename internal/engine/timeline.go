package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Chunk kinds
const (
	KindLine = "line"
	KindWord = "word"
)

// Timeline is a fully baked animation. Keyframes are sorted by TimeMs.
type Timeline struct {
	Title      string        `yaml:"title,omitempty"`
	Seed       string        `yaml:"seed"`
	FPS        int           `yaml:"fps"`
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	BaseWidth  int           `yaml:"base_width"`
	BaseHeight int           `yaml:"base_height"`
	StartMs    float64       `yaml:"start_ms"`
	EndMs      float64       `yaml:"end_ms"`
	Palette    []string      `yaml:"palette"`
	Background ChapterLook   `yaml:"background"`
	Chapters   []ChapterLook `yaml:"chapters,omitempty"`
	Keyframes  []Keyframe    `yaml:"keyframes"`
}

// ChapterLook is the background gradient of one chapter
type ChapterLook struct {
	Title  string `yaml:"title"`
	Top    string `yaml:"top"`
	Bottom string `yaml:"bottom"`
}

// Keyframe is the complete renderable state at TimeMs
type Keyframe struct {
	TimeMs          float64      `yaml:"t"`
	BeatIndex       int          `yaml:"beat"`
	CameraX         float64      `yaml:"cam_x"`
	CameraY         float64      `yaml:"cam_y"`
	Zoom            float64      `yaml:"zoom"`
	Chapter         int          `yaml:"chapter"`
	NextChapter     int          `yaml:"next_chapter"`
	BackgroundBlend float64      `yaml:"bg_blend"`
	Chunks          []Chunk      `yaml:"chunks,omitempty"`
	Particles       *ParticleCue `yaml:"particles,omitempty"`
}

// Chunk is the baked state of one line or word. IDs are stable for the
// whole timeline.
type Chunk struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Text     string  `yaml:"text"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Alpha    float64 `yaml:"alpha"`
	Scale    float64 `yaml:"scale"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Skew     float64 `yaml:"skew,omitempty"`
	FontSize float64 `yaml:"font_size"`
	Color    string  `yaml:"color"`
	Visible  bool    `yaml:"visible"`
}

// ParticleCue tells the ambient simulator what to run at a keyframe
type ParticleCue struct {
	System  string  `yaml:"system"`
	Density float64 `yaml:"density"`
	Burst   float64 `yaml:"burst,omitempty"` // Beat strength landing on this tick
}

// Duration returns the covered span in milliseconds
func (tl *Timeline) Duration() float64 {
	return tl.EndMs - tl.StartMs
}

// Clone returns a deep copy, so a player can rescale without touching a
// timeline shared through the cache.
func (tl *Timeline) Clone() *Timeline {
	out := *tl
	out.Palette = append([]string(nil), tl.Palette...)
	out.Chapters = append([]ChapterLook(nil), tl.Chapters...)
	out.Keyframes = make([]Keyframe, len(tl.Keyframes))
	for i, kf := range tl.Keyframes {
		kf.Chunks = append([]Chunk(nil), kf.Chunks...)
		if kf.Particles != nil {
			p := *kf.Particles
			kf.Particles = &p
		}
		out.Keyframes[i] = kf
	}
	return &out
}

// Look returns the background of chapter i, or the scene background
func (tl *Timeline) Look(i int) ChapterLook {
	if i >= 0 && i < len(tl.Chapters) {
		return tl.Chapters[i]
	}
	return tl.Background
}

// WriteTimeline dumps a timeline as YAML for inspection
func WriteTimeline(tl *Timeline, path string) error {
	data, err := yaml.Marshal(tl)
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadTimeline loads a timeline written by WriteTimeline
func ReadTimeline(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tl Timeline
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &tl, nil
}
