package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// resolveExternalPath returns path as-is if absolute, otherwise joins it with root.
func resolveExternalPath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// loadPresetFiles reads each file in Transitions.PresetFiles as a
// map[string]Preset and merges it into Transitions.Presets. A name defined
// twice is an error.
func (c *Config) loadPresetFiles(root string) error {
	if len(c.Transitions.PresetFiles) == 0 {
		return nil
	}
	if c.Transitions.Presets == nil {
		c.Transitions.Presets = map[string]Preset{}
	}

	sources := make(map[string]string, len(c.Transitions.Presets))
	for name := range c.Transitions.Presets {
		sources[name] = "inline config"
	}
	// The built-in dissolve may be overridden once by a file.
	delete(sources, "dissolve")

	for _, relPath := range c.Transitions.PresetFiles {
		data, err := os.ReadFile(resolveExternalPath(root, relPath))
		if err != nil {
			return fmt.Errorf("load preset file %q: %w", relPath, err)
		}

		var presets map[string]Preset
		if err := yaml.Unmarshal(data, &presets); err != nil {
			return fmt.Errorf("parse preset file %q: %w", relPath, err)
		}

		for name, preset := range presets {
			if existing, ok := sources[name]; ok {
				return fmt.Errorf("preset %q defined in both %s and %q", name, existing, relPath)
			}
			sources[name] = relPath
			c.Transitions.Presets[name] = preset
		}
	}
	return nil
}
