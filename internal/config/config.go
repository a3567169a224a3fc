package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cutline/internal/timeline"
)

// Config captures the editing limits and view settings for a project.
type Config struct {
	Version     int               `yaml:"version"`
	History     HistoryConfig     `yaml:"history"`
	Transitions TransitionsConfig `yaml:"transitions"`
	Editing     EditingConfig     `yaml:"editing"`
	View        ViewConfig        `yaml:"view"`
	Server      ServerConfig      `yaml:"server"`
}

// HistoryConfig bounds the undo log.
type HistoryConfig struct {
	MaxSize int `yaml:"max_size"`
}

// TransitionsConfig holds duration bounds and named transition presets.
type TransitionsConfig struct {
	MinDuration     float64           `yaml:"min_duration"`
	MaxDuration     float64           `yaml:"max_duration"`
	DefaultDuration float64           `yaml:"default_duration"`
	DefaultPreset   string            `yaml:"default_preset"`
	Presets         map[string]Preset `yaml:"presets,omitempty"`
	PresetFiles     []string          `yaml:"preset_files,omitempty"`
}

// Preset is a reusable transition shape.
type Preset struct {
	Type     string             `yaml:"type"`
	Duration float64            `yaml:"duration,omitempty"`
	Params   map[string]float64 `yaml:"params,omitempty"`
}

// EditingConfig controls trimming floors and overlap handling.
type EditingConfig struct {
	MinClipDuration    float64 `yaml:"min_clip_duration"`
	AdjacencyTolerance float64 `yaml:"adjacency_tolerance"`
	RejectOverlaps     *bool   `yaml:"reject_overlaps,omitempty"`
}

// ViewConfig sets the initial zoom and frame rate of new documents and the
// terminal scale of the editor.
type ViewConfig struct {
	Zoom           float64 `yaml:"zoom"`
	FPS            float64 `yaml:"fps"`
	UnitsPerColumn float64 `yaml:"units_per_column"`
}

// ServerConfig configures `cutline serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		History: HistoryConfig{MaxSize: timeline.DefaultMaxHistorySize},
		Transitions: TransitionsConfig{
			MinDuration:     0.5,
			MaxDuration:     5.0,
			DefaultDuration: 1.0,
			DefaultPreset:   "dissolve",
			Presets: map[string]Preset{
				"dissolve": {Type: "dissolve"},
			},
		},
		Editing: EditingConfig{
			MinClipDuration:    timeline.MinClipDuration,
			AdjacencyTolerance: timeline.DefaultAdjacencyTolerance,
			RejectOverlaps:     boolPtr(true),
		},
		View: ViewConfig{
			Zoom:           1,
			FPS:            30,
			UnitsPerColumn: 10,
		},
		Server: ServerConfig{Addr: "127.0.0.1:7420"},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration. Preset files are resolved relative to the
// directory holding path.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.loadPresetFiles(filepath.Dir(path)); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero values left by a partial YAML file.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.History.MaxSize == 0 {
		c.History.MaxSize = defaults.History.MaxSize
	}
	if c.Transitions.MinDuration == 0 {
		c.Transitions.MinDuration = defaults.Transitions.MinDuration
	}
	if c.Transitions.MaxDuration == 0 {
		c.Transitions.MaxDuration = defaults.Transitions.MaxDuration
	}
	if c.Transitions.DefaultDuration == 0 {
		c.Transitions.DefaultDuration = defaults.Transitions.DefaultDuration
	}
	if c.Transitions.DefaultPreset == "" {
		c.Transitions.DefaultPreset = defaults.Transitions.DefaultPreset
	}
	if c.Transitions.Presets == nil {
		c.Transitions.Presets = map[string]Preset{}
	}
	if _, ok := c.Transitions.Presets["dissolve"]; !ok {
		c.Transitions.Presets["dissolve"] = defaults.Transitions.Presets["dissolve"]
	}
	if c.Editing.MinClipDuration == 0 {
		c.Editing.MinClipDuration = defaults.Editing.MinClipDuration
	}
	if c.Editing.AdjacencyTolerance == 0 {
		c.Editing.AdjacencyTolerance = defaults.Editing.AdjacencyTolerance
	}
	if c.Editing.RejectOverlaps == nil {
		c.Editing.RejectOverlaps = boolPtr(true)
	}
	if c.View.Zoom == 0 {
		c.View.Zoom = defaults.View.Zoom
	}
	if c.View.FPS == 0 {
		c.View.FPS = defaults.View.FPS
	}
	if c.View.UnitsPerColumn == 0 {
		c.View.UnitsPerColumn = defaults.View.UnitsPerColumn
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
}

// RejectOverlapsValue returns the effective overlap flag applying defaults.
func (e EditingConfig) RejectOverlapsValue() bool {
	if e.RejectOverlaps == nil {
		return true
	}
	return *e.RejectOverlaps
}

// Limits converts the configuration into engine limits.
func (c Config) Limits() timeline.Limits {
	return timeline.Limits{
		MaxHistorySize:            c.History.MaxSize,
		MinTransitionDuration:     c.Transitions.MinDuration,
		MaxTransitionDuration:     c.Transitions.MaxDuration,
		DefaultTransitionDuration: c.Transitions.DefaultDuration,
		MinClipDuration:           c.Editing.MinClipDuration,
		AdjacencyTolerance:        c.Editing.AdjacencyTolerance,
		RejectOverlaps:            c.Editing.RejectOverlapsValue(),
		DefaultZoom:               c.View.Zoom,
		DefaultFPS:                c.View.FPS,
	}
}

// Preset returns the named transition preset, falling back to the default
// preset when name is empty.
func (c Config) Preset(name string) (Preset, bool) {
	if name == "" {
		name = c.Transitions.DefaultPreset
	}
	p, ok := c.Transitions.Presets[name]
	return p, ok
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}
