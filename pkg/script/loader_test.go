package script

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutline/internal/timeline"
)

func writeScript(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeScript(t, "edit.yaml", `# rough cut
- type: ADD_TRACK
  payload:
    track: {id: v1, name: Video, type: video, is_visible: true}
- type: ADD_CLIP
  payload:
    track_id: v1
    clip: {id: c1, start_time: 0, duration: 10}
- type: SPLIT_CLIP
  payload: {track_id: v1, clip_id: c1, time: 4}
- type: UNDO
`)
	steps, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if steps[0].Line != 2 || steps[3].Line != 11 {
		t.Errorf("unexpected lines: first %d last %d", steps[0].Line, steps[3].Line)
	}
	split, ok := steps[2].Command.(timeline.SplitClip)
	if !ok || split.ClipID != "c1" || split.Time != 4 {
		t.Errorf("step 3 = %#v", steps[2].Command)
	}
	if steps[3].Index != 4 || steps[3].Command.Type() != timeline.CmdUndo {
		t.Errorf("step 4 = %+v", steps[3])
	}
}

func TestLoadYAMLCollectsErrors(t *testing.T) {
	path := writeScript(t, "bad.yaml", `- type: ADD_TRACK
  payload:
    track: {id: v1, type: video}
- type: TELEPORT
- type: SET_ZOOM
  payload: {zoom: 2}
`)
	steps, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 1 || verrs[0].Step != 2 || verrs[0].Line != 4 {
		t.Fatalf("issues = %+v", verrs.Issues())
	}
	if !strings.Contains(err.Error(), "step 2 (line 4)") || !strings.Contains(err.Error(), "TELEPORT") {
		t.Errorf("error %q lacks location or type", err)
	}
	if len(steps) != 2 {
		t.Errorf("expected the two valid steps back, got %d", len(steps))
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeScript(t, "edit.json", `[
  {"type":"ADD_TRACK","payload":{"track":{"id":"a1","type":"audio"}}},
  {"type":"SET_ZOOM","payload":{"zoom":"wide"}},
  {"type":"REDO"}
]`)
	steps, err := Load(path)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0].Step != 2 {
		t.Fatalf("err = %v", err)
	}
	if len(steps) != 2 || steps[1].Index != 3 {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestLoadJSONL(t *testing.T) {
	path := writeScript(t, "edit.jsonl", `{"type":"SET_ZOOM","payload":{"zoom":2}}

# comment
{"type":"SET_FPS","payload":{"fps":24}}
`)
	steps, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(steps) != 2 || steps[1].Line != 4 || steps[1].Index != 2 {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestLoadRejectsEmptyAndMalformed(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want string
	}{
		{"empty", "a.yaml", "  \n", "empty"},
		{"comments only", "b.yaml", "# nothing\n", "no commands"},
		{"mapping", "c.yaml", "type: UNDO\n", "list of commands"},
		{"broken json", "d.json", "[{", "parse JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScript(t, tt.file, tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.yaml":       FormatYAML,
		"a.yml":        FormatYAML,
		"a.JSON":       FormatJSON,
		"a.ndjson":     FormatJSONL,
		"a.jsonl":      FormatJSONL,
		"no-extension": FormatYAML,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestWriteThenParse(t *testing.T) {
	cmds := []timeline.Command{
		timeline.SplitClip{TrackID: "v1", ClipID: "c1", Time: 4},
		timeline.SetZoom{Zoom: 1.5},
		timeline.Undo{},
	}
	for _, format := range []Format{FormatYAML, FormatJSON, FormatJSONL} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, cmds, format); err != nil {
				t.Fatalf("Write: %v", err)
			}
			steps, err := Parse(buf.Bytes(), format)
			if err != nil {
				t.Fatalf("Parse(%s): %v\n%s", format, err, buf.String())
			}
			got := Commands(steps)
			if len(got) != len(cmds) {
				t.Fatalf("got %d commands", len(got))
			}
			for i := range cmds {
				if got[i] != cmds[i] {
					t.Errorf("command %d = %#v, want %#v", i, got[i], cmds[i])
				}
			}
		})
	}
}
