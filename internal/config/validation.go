package config

import (
	"fmt"
	"net"
	"sort"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks the configuration for values the engine cannot run with
// and for suspicious but usable settings.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateHistory()...)
	results = append(results, c.validateTransitions()...)
	results = append(results, c.validateEditing()...)
	results = append(results, c.validateView()...)
	results = append(results, c.validateServer()...)
	return results
}

// HasErrors reports whether any result is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func errorf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "error", Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "warning", Message: fmt.Sprintf(format, args...)}
}

func (c Config) validateHistory() []ValidationResult {
	switch {
	case c.History.MaxSize < 1:
		return []ValidationResult{errorf("history.max_size must be at least 1, got %d", c.History.MaxSize)}
	case c.History.MaxSize > 10000:
		return []ValidationResult{warnf("history.max_size %d keeps a very long undo log in memory", c.History.MaxSize)}
	}
	return nil
}

func (c Config) validateTransitions() []ValidationResult {
	t := c.Transitions
	var results []ValidationResult
	if t.MinDuration <= 0 {
		results = append(results, errorf("transitions.min_duration must be positive, got %v", t.MinDuration))
	}
	if t.MaxDuration < t.MinDuration {
		results = append(results, errorf("transitions.max_duration %v is below min_duration %v", t.MaxDuration, t.MinDuration))
	}
	if t.DefaultDuration < t.MinDuration || t.DefaultDuration > t.MaxDuration {
		results = append(results, warnf("transitions.default_duration %v lies outside [%v, %v] and will be clamped",
			t.DefaultDuration, t.MinDuration, t.MaxDuration))
	}
	if _, ok := t.Presets[t.DefaultPreset]; !ok {
		results = append(results, errorf("transitions.default_preset %q is not defined", t.DefaultPreset))
	}

	names := make([]string, 0, len(t.Presets))
	for name := range t.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := t.Presets[name]
		if p.Type == "" {
			results = append(results, errorf("preset %q: type is required", name))
		}
		if p.Duration < 0 {
			results = append(results, errorf("preset %q: negative duration %v", name, p.Duration))
		} else if p.Duration > 0 && (p.Duration < t.MinDuration || p.Duration > t.MaxDuration) {
			results = append(results, warnf("preset %q: duration %v will be clamped to [%v, %v]",
				name, p.Duration, t.MinDuration, t.MaxDuration))
		}
	}
	return results
}

func (c Config) validateEditing() []ValidationResult {
	var results []ValidationResult
	if c.Editing.MinClipDuration <= 0 {
		results = append(results, errorf("editing.min_clip_duration must be positive, got %v", c.Editing.MinClipDuration))
	}
	if c.Editing.AdjacencyTolerance <= 0 {
		results = append(results, errorf("editing.adjacency_tolerance must be positive, got %v", c.Editing.AdjacencyTolerance))
	}
	if !c.Editing.RejectOverlapsValue() {
		results = append(results, warnf("editing.reject_overlaps is off; clips on the same layer may overlap"))
	}
	return results
}

func (c Config) validateView() []ValidationResult {
	var results []ValidationResult
	if c.View.Zoom <= 0 {
		results = append(results, errorf("view.zoom must be positive, got %v", c.View.Zoom))
	}
	if c.View.FPS <= 0 {
		results = append(results, errorf("view.fps must be positive, got %v", c.View.FPS))
	}
	if c.View.UnitsPerColumn <= 0 {
		results = append(results, errorf("view.units_per_column must be positive, got %v", c.View.UnitsPerColumn))
	}
	return results
}

func (c Config) validateServer() []ValidationResult {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return []ValidationResult{errorf("server.addr %q: %v", c.Server.Addr, err)}
	}
	return nil
}
