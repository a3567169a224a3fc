package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveExternalPath(t *testing.T) {
	if got, want := resolveExternalPath("/project", "presets/wipes.yaml"), filepath.Join("/project", "presets/wipes.yaml"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := resolveExternalPath("/project", "/abs/path.yaml"); got != "/abs/path.yaml" {
		t.Fatalf("got %q, want /abs/path.yaml", got)
	}
}

func TestLoadPresetFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "presets", "wipes.yaml"), `
wipe-left:
  type: wipe
  duration: 1.5
  params:
    angle: 180
dissolve:
  type: dissolve
  duration: 2
`)
	writeFile(t, filepath.Join(dir, "cutline.yaml"), `
transitions:
  default_preset: wipe-left
  preset_files:
    - presets/wipes.yaml
`)

	cfg, err := Load(filepath.Join(dir, "cutline.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, ok := cfg.Preset("")
	if !ok || p.Type != "wipe" || p.Params["angle"] != 180 {
		t.Fatalf("default preset = %+v, %v", p, ok)
	}
	if cfg.Transitions.Presets["dissolve"].Duration != 2 {
		t.Error("file should override the built-in dissolve")
	}
}

func TestLoadPresetFilesDuplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "slide:\n  type: slide\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "slide:\n  type: push\n")

	cfg := Config{Transitions: TransitionsConfig{PresetFiles: []string{"a.yaml", "b.yaml"}}}
	err := cfg.loadPresetFiles(dir)
	if err == nil || !strings.Contains(err.Error(), `preset "slide" defined in both`) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadPresetFilesMissing(t *testing.T) {
	cfg := Config{Transitions: TransitionsConfig{PresetFiles: []string{"missing.yaml"}}}
	if err := cfg.loadPresetFiles(t.TempDir()); err == nil {
		t.Fatal("expected error for missing preset file")
	}
}
