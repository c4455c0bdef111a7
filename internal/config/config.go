package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of one export run. Zero fields in a loaded
// file keep their defaults.
type Config struct {
	ScenePath         string  `yaml:"scene,omitempty"`
	OutputDir         string  `yaml:"output,omitempty"`
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	FPS               int     `yaml:"fps"`
	Workers           int     `yaml:"workers"`
	Preset            string  `yaml:"preset,omitempty"`
	Tier              string  `yaml:"tier"`
	DensityMultiplier float64 `yaml:"density_multiplier"`
	ChunkTicks        int     `yaml:"chunk_ticks"`
	Detector          string  `yaml:"detector,omitempty"`
	From              float64 `yaml:"from"`
	To                float64 `yaml:"to"`
	DumpTimeline      bool    `yaml:"dump_timeline"`
	ShowStats         bool    `yaml:"stats"`
	BuildVersion      string  `yaml:"-"`
}

// Default returns the settings used when neither a file nor flags say
// otherwise
func Default() Config {
	return Config{
		OutputDir:         "output",
		Width:             1280,
		Height:            720,
		FPS:               30,
		Workers:           runtime.NumCPU(),
		Tier:              "auto",
		DensityMultiplier: 1,
		ChunkTicks:        600,
	}
}

// Load reads a YAML config on top of Default
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.Preset != "" {
		if err := cfg.ApplyPreset(cfg.Preset); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// Presets maps aspect presets to viewport sizes
var Presets = map[string][2]int{
	"16:9": {1280, 720},
	"9:16": {720, 1280},
	"4:5":  {1080, 1350},
}

// ApplyPreset sets the viewport from a named aspect preset
func (c *Config) ApplyPreset(name string) error {
	size, ok := Presets[strings.TrimSpace(name)]
	if !ok {
		return fmt.Errorf("unknown preset %q (16:9, 9:16, 4:5)", name)
	}
	c.Preset = name
	c.Width, c.Height = size[0], size[1]
	return nil
}

// Validate reports the first setting that cannot be used
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height)
	case c.FPS <= 0 || c.FPS > 240:
		return fmt.Errorf("invalid fps %d", c.FPS)
	case c.Workers <= 0:
		return fmt.Errorf("invalid workers %d", c.Workers)
	case c.DensityMultiplier < 0:
		return fmt.Errorf("invalid density multiplier %.2f", c.DensityMultiplier)
	case c.ChunkTicks < 0:
		return fmt.Errorf("invalid chunk ticks %d", c.ChunkTicks)
	case c.To > 0 && c.To <= c.From:
		return fmt.Errorf("invalid range [%.2f, %.2f]", c.From, c.To)
	}
	return nil
}
