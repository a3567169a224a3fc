package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutline/internal/api"
	"cutline/internal/store"
	"cutline/internal/timeline"
)

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, nil, args...)
}

func runCLIWithInput(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		projectDir = ""
		outputJSON = false
		verbose = false
	})
	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, _, err := runCLI(t, "--project", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, append([]string{"--project", dir}, args...)...)
	if err != nil {
		t.Fatalf("cutline %s: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, out, stderr)
	}
	return out
}

func loadDocument(t *testing.T, dir string) timeline.Document {
	t.Helper()
	doc, err := store.Load(filepath.Join(dir, "project.json"), timeline.NewEngine())
	if err != nil {
		t.Fatalf("load project: %v", err)
	}
	return doc
}

func seedProject(t *testing.T, dir string) {
	t.Helper()
	mustRun(t, dir, "dispatch", "--type", "add_track", "--payload", `{"track":{"id":"v1","name":"Video","type":"video","isVisible":true}}`)
	mustRun(t, dir, "dispatch", `{"type":"ADD_CLIP","payload":{"trackId":"v1","clip":{"id":"c1","startTime":0,"endTime":10,"mediaDuration":10}}}`)
	_, stderr, err := runCLIWithInput(t, strings.NewReader("type: SPLIT_CLIP\npayload: {track_id: v1, clip_id: c1, time: 4}\n"),
		"--project", dir, "dispatch", "-")
	if err != nil {
		t.Fatalf("dispatch from stdin: %v (%s)", err, stderr)
	}
}

func TestEditWorkflow(t *testing.T) {
	dir := newProject(t)
	seedProject(t, dir)

	out := mustRun(t, dir, "show")
	for _, want := range []string{"c1-1", "c1-2", "TRACK", "History: 2/2"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "--json", "show", "c1-2")
	var clip struct {
		TrackID string        `json:"trackId"`
		Clip    timeline.Clip `json:"clip"`
	}
	if err := json.Unmarshal([]byte(out), &clip); err != nil {
		t.Fatalf("decode clip: %v\n%s", err, out)
	}
	if clip.TrackID != "v1" || clip.Clip.StartTime != 4 || clip.Clip.EndTime != 10 {
		t.Errorf("clip = %+v", clip)
	}

	out = mustRun(t, dir, "undo")
	if !strings.HasPrefix(out, "UNDO") {
		t.Errorf("undo output = %q", out)
	}
	if _, ok := loadDocument(t, dir).Clip("c1-2"); ok {
		t.Error("undo was not saved")
	}

	_, _, err := runCLI(t, "--project", dir, "dispatch", `{"type":"REMOVE_CLIP","payload":{"trackId":"v1","clipId":"nope"}}`)
	if !errors.Is(err, timeline.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	out = mustRun(t, dir, "--json", "history")
	var hist api.HistoryResponse
	if err := json.Unmarshal([]byte(out), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if !hist.CanRedo || hist.CurrentIndex != 1 || len(hist.Entries) != 3 {
		t.Errorf("history = %+v", hist)
	}

	out = mustRun(t, dir, "--json", "journal")
	var jr api.JournalResponse
	if err := json.Unmarshal([]byte(out), &jr); err != nil {
		t.Fatalf("decode journal: %v", err)
	}
	if len(jr.Entries) != 5 {
		t.Fatalf("journal has %d entries, want 5", len(jr.Entries))
	}
	if jr.Entries[0].Command != timeline.CmdRemoveClip || jr.Entries[0].Applied {
		t.Errorf("newest entry = %+v, want rejected REMOVE_CLIP", jr.Entries[0])
	}

	out = mustRun(t, dir, "journal", "replay")
	if !strings.Contains(out, "matches") {
		t.Errorf("replay output = %q", out)
	}
}

func TestJournalExportReproducesProject(t *testing.T) {
	src := newProject(t)
	seedProject(t, src)
	mustRun(t, src, "undo")

	exported := filepath.Join(t.TempDir(), "edits.yaml")
	out := mustRun(t, src, "journal", "export", exported)
	if !strings.Contains(out, "Exported 4 command(s)") {
		t.Errorf("export output = %q", out)
	}

	dst := newProject(t)
	out = mustRun(t, dst, "apply", exported)
	if !strings.Contains(out, "4 applied, 0 rejected, 0 skipped") {
		t.Errorf("apply output = %q", out)
	}

	a, b := loadDocument(t, src), loadDocument(t, dst)
	if store.Fingerprint(a) != store.Fingerprint(b) {
		t.Errorf("exported journal did not reproduce the project")
	}
}

func TestApplyStopsAtRejection(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(t.TempDir(), "edit.yaml")
	data := `- type: ADD_TRACK
  payload:
    track: {id: a1, type: audio}
- type: REMOVE_CLIP
  payload: {track_id: a1, clip_id: ghost}
- type: SET_ZOOM
  payload: {zoom: 2}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	out, _, err := runCLI(t, "--project", dir, "apply", path)
	if err == nil || !strings.Contains(err.Error(), "step 2 (line 4)") {
		t.Fatalf("err = %v, want rejection of step 2", err)
	}
	for _, want := range []string{"applied", "rejected", "skipped", "1 applied, 1 rejected, 1 skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if loadDocument(t, dir).Zoom == 2 {
		t.Error("skipped step was applied")
	}

	if _, _, err := runCLI(t, "--project", dir, "apply", "--continue-on-error", path); err == nil {
		t.Fatal("expected the rejection to be reported")
	}
	if loadDocument(t, dir).Zoom != 2 {
		t.Error("continue-on-error did not run the last step")
	}
}

func TestApplyDryRun(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(t.TempDir(), "edit.jsonl")
	if err := os.WriteFile(path, []byte(`{"type":"ADD_TRACK","payload":{"track":{"id":"v1","type":"video"}}}`+"\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	out := mustRun(t, dir, "--json", "apply", "--dry-run", path)
	var res struct {
		DryRun  bool `json:"dry_run"`
		Summary struct {
			Applied int
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !res.DryRun || res.Summary.Applied != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(loadDocument(t, dir).Tracks) != 0 {
		t.Error("dry run modified the project")
	}
}

func TestApplyInvalidScript(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("- type: WARP\n- type: UNDO\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	_, stderr, err := runCLI(t, "--project", dir, "apply", path)
	if err == nil || !strings.Contains(err.Error(), "1 invalid step") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr, "WARP") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestJournalReplayRebuildsCorruptProject(t *testing.T) {
	dir := newProject(t)
	seedProject(t, dir)
	want := store.Fingerprint(loadDocument(t, dir))

	docFile := filepath.Join(dir, "project.json")
	if err := os.WriteFile(docFile, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, _, err := runCLI(t, "--project", dir, "show"); !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("show on corrupt project: %v", err)
	}

	out := mustRun(t, dir, "journal", "replay", "--rebuild")
	if !strings.Contains(out, "Rebuilt") {
		t.Errorf("replay output = %q", out)
	}
	if got := store.Fingerprint(loadDocument(t, dir)); got != want {
		t.Errorf("rebuilt fingerprint %s, want %s", got, want)
	}
}

func TestJournalClear(t *testing.T) {
	dir := newProject(t)
	seedProject(t, dir)
	out := mustRun(t, dir, "journal", "clear")
	if !strings.Contains(out, "Removed 3 journal entries") {
		t.Errorf("clear output = %q", out)
	}
	out = mustRun(t, dir, "journal")
	if !strings.Contains(out, "empty") {
		t.Errorf("journal after clear = %q", out)
	}
}

func TestUndoStopsAtBaseline(t *testing.T) {
	dir := newProject(t)
	mustRun(t, dir, "dispatch", "--type", "ADD_TRACK", "--payload", `{"track":{"id":"v1","type":"video"}}`)

	out := mustRun(t, dir, "undo")
	if !strings.Contains(out, "history 0/0") {
		t.Errorf("undo output = %q", out)
	}
	if len(loadDocument(t, dir).Tracks) != 1 {
		t.Error("undo removed the baseline edit")
	}

	help, _, err := runCLI(t, "undo", "--help")
	if err != nil {
		t.Fatalf("undo --help: %v", err)
	}
	if !strings.Contains(help, "cannot be undone") {
		t.Errorf("undo help does not mention the baseline:\n%s", help)
	}
}

func TestCommandsRequireProject(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, "--project", dir, "show")
	if err == nil || !strings.Contains(err.Error(), "cutline init") {
		t.Fatalf("err = %v", err)
	}
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want timeline.CommandType
		err  string
	}{
		{"json", `{"type":"SET_ZOOM","payload":{"zoom":2}}`, timeline.CmdSetZoom, ""},
		{"yaml", "type: SET_FPS\npayload: {fps: 25}", timeline.CmdSetFPS, ""},
		{"yaml no payload", "type: REDO", timeline.CmdRedo, ""},
		{"empty", "   ", "", "no command"},
		{"unknown", `{"type":"BOOM"}`, "", "unknown command type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseEnvelope([]byte(tt.in))
			if tt.err != "" {
				if err == nil || !strings.Contains(err.Error(), tt.err) {
					t.Fatalf("err = %v, want %q", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEnvelope: %v", err)
			}
			if c.Type() != tt.want {
				t.Errorf("type = %s, want %s", c.Type(), tt.want)
			}
		})
	}
}

func TestReadCommandTypeFlag(t *testing.T) {
	c, err := readCommand(nil, nil, &dispatchOptions{cmdType: "set_zoom", payload: `{"zoom":3}`})
	if err != nil {
		t.Fatalf("readCommand: %v", err)
	}
	if z, ok := c.(timeline.SetZoom); !ok || z.Zoom != 3 {
		t.Errorf("command = %#v", c)
	}
	if _, err := readCommand(nil, []string{"{}"}, &dispatchOptions{cmdType: "UNDO"}); err == nil {
		t.Error("expected error when mixing --type with an argument")
	}
	if _, err := readCommand(nil, nil, &dispatchOptions{cmdType: "SET_ZOOM", payload: "{bad"}); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestConfigValidate(t *testing.T) {
	dir := newProject(t)
	out := mustRun(t, dir, "config", "validate")
	if !strings.Contains(out, "ok") {
		t.Errorf("validate output = %q", out)
	}

	bad := "transitions:\n  min_duration: 4\n  max_duration: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "cutline.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, _, err := runCLI(t, "--project", dir, "config", "validate")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "error") {
		t.Errorf("validate output = %q", out)
	}
	if _, _, err := runCLI(t, "--project", dir, "show"); err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("show with invalid config: %v", err)
	}
}

