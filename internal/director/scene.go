package director

import (
	"github.com/ivlev/lyric2video/internal/analyzer"
	"github.com/ivlev/lyric2video/internal/physics"
)

// Scene is the declarative payload a bake consumes
type Scene struct {
	Version    string              `yaml:"version" json:"version"`
	Title      string              `yaml:"title,omitempty" json:"title,omitempty"`
	Seed       string              `yaml:"seed,omitempty" json:"seed,omitempty"`
	SongStart  float64             `yaml:"song_start" json:"songStart"`
	SongEnd    float64             `yaml:"song_end" json:"songEnd"`
	Lines      []Line              `yaml:"lines" json:"lines"`
	Beats      []Beat              `yaml:"beats,omitempty" json:"beats,omitempty"`
	Physics    physics.Spec        `yaml:"physics" json:"physics"`
	Direction  Direction           `yaml:"direction,omitempty" json:"direction,omitempty"`
	Palette    []string            `yaml:"palette,omitempty" json:"palette,omitempty"`
	Typography *physics.Typography `yaml:"typography,omitempty" json:"typography,omitempty"`
	Particles  *ParticleConfig     `yaml:"particles,omitempty" json:"particles,omitempty"`
	Hooks      []analyzer.Hook     `yaml:"hooks,omitempty" json:"hooks,omitempty"`
}

// Line is one lyric line with optional word timings
type Line struct {
	Text  string  `yaml:"text" json:"text"`
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
	Words []Word  `yaml:"words,omitempty" json:"words,omitempty"`
}

// Word is a timed word inside a line
type Word struct {
	Text  string  `yaml:"text" json:"text"`
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// Beat is one entry of the beat grid
type Beat struct {
	Time     float64 `yaml:"time" json:"time"`
	Downbeat bool    `yaml:"downbeat,omitempty" json:"downbeat,omitempty"`
	Strength float64 `yaml:"strength,omitempty" json:"strength,omitempty"` // 0-1, missing means 1
}

// ParticleConfig selects the ambient particle system
type ParticleConfig struct {
	System  string  `yaml:"system" json:"system"`
	Density float64 `yaml:"density" json:"density"`
}

// Direction is the cinematic layer on top of the lyrics
type Direction struct {
	Chapters       []Chapter       `yaml:"chapters,omitempty" json:"chapters,omitempty"`
	Tension        []TensionPoint  `yaml:"tension,omitempty" json:"tension,omitempty"`
	Climax         *Climax         `yaml:"climax,omitempty" json:"climax,omitempty"`
	WordDirectives []WordDirective `yaml:"word_directives,omitempty" json:"wordDirectives,omitempty"`
}

// Chapter is a section of the song with its own look
type Chapter struct {
	Title     string          `yaml:"title" json:"title"`
	Start     float64         `yaml:"start" json:"start"`
	End       float64         `yaml:"end" json:"end"`
	Mood      string          `yaml:"mood,omitempty" json:"mood,omitempty"`
	Palette   []string        `yaml:"palette,omitempty" json:"palette,omitempty"`
	Particles *ParticleConfig `yaml:"particles,omitempty" json:"particles,omitempty"`
	Zoom      float64         `yaml:"zoom,omitempty" json:"zoom,omitempty"` // Camera zoom target (1.0 = no zoom)
}

// TensionPoint is one sample of the tension curve
type TensionPoint struct {
	T     float64 `yaml:"t" json:"t"`
	Value float64 `yaml:"value" json:"value"`
}

// Climax marks the emotional peak of the song
type Climax struct {
	T     float64 `yaml:"t" json:"t"`
	Width float64 `yaml:"width,omitempty" json:"width,omitempty"` // Seconds on each side
}

// WordDirective marks a single word for emphasis
type WordDirective struct {
	T         int    `yaml:"t" json:"t"` // Rounded start second of the line
	WordIndex int    `yaml:"word_index" json:"wordIndex"`
	Mark      string `yaml:"mark" json:"mark"`
}
