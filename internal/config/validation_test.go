package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		level   string
		message string
	}{
		{"zero history", func(c *Config) { c.History.MaxSize = 0 }, "error", "history.max_size"},
		{"huge history", func(c *Config) { c.History.MaxSize = 50000 }, "warning", "very long undo log"},
		{"inverted transition bounds", func(c *Config) { c.Transitions.MaxDuration = 0.2 }, "error", "below min_duration"},
		{"default outside bounds", func(c *Config) { c.Transitions.DefaultDuration = 9 }, "warning", "will be clamped"},
		{"missing default preset", func(c *Config) { c.Transitions.DefaultPreset = "spin" }, "error", `"spin" is not defined`},
		{"preset without type", func(c *Config) { c.Transitions.Presets["x"] = Preset{} }, "error", "type is required"},
		{"negative clip floor", func(c *Config) { c.Editing.MinClipDuration = -1 }, "error", "min_clip_duration"},
		{"overlaps allowed", func(c *Config) { c.Editing.RejectOverlaps = boolPtr(false) }, "warning", "reject_overlaps"},
		{"zero fps", func(c *Config) { c.View.FPS = 0 }, "error", "view.fps"},
		{"bad addr", func(c *Config) { c.Server.Addr = "localhost" }, "error", "server.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			results := cfg.Validate()
			var found *ValidationResult
			for i := range results {
				if strings.Contains(results[i].Message, tt.message) {
					found = &results[i]
				}
			}
			if found == nil {
				t.Fatalf("no finding mentions %q: %v", tt.message, results)
			}
			if found.Level != tt.level {
				t.Errorf("level = %s, want %s", found.Level, tt.level)
			}
			if tt.level == "error" && !HasErrors(results) {
				t.Error("HasErrors = false")
			}
		})
	}
}
