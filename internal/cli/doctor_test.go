package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"cutline/internal/config"
	"cutline/internal/timeline"
)

func TestJoinComma(t *testing.T) {
	tests := []struct {
		input []string
		want  string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a, b"},
		{[]string{"a", "b", "c"}, "a, b, c"},
	}

	for _, tt := range tests {
		got := joinComma(tt.input)
		if got != tt.want {
			t.Errorf("joinComma(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCheckConfigWithError(t *testing.T) {
	result := checkConfig(config.Config{}, fmt.Errorf("config file not found"))

	if result.Status != "error" {
		t.Errorf("got status=%q, want error", result.Status)
	}
	if result.Name != "Config" {
		t.Errorf("got name=%q, want Config", result.Name)
	}
}

func TestCheckConfigValid(t *testing.T) {
	result := checkConfig(config.Default(), nil)

	if result.Status != "ok" {
		t.Errorf("got status=%q (%s), want ok", result.Status, result.Summary)
	}
}

func TestDocumentProblems(t *testing.T) {
	doc := timeline.Document{Tracks: []timeline.Track{{
		ID: "v1",
		Clips: []timeline.Clip{
			{ID: "a", StartTime: 0, EndTime: 5},
			{ID: "b", StartTime: 4, EndTime: 8},
		},
		Transitions: []timeline.Transition{{ID: "t1", ClipAID: "a", ClipBID: "gone"}},
	}}}

	if got := documentProblems(doc, true); len(got) != 2 {
		t.Errorf("problems = %v, want overlap and dangling transition", got)
	}
	if got := documentProblems(doc, false); len(got) != 1 {
		t.Errorf("problems without overlap check = %v", got)
	}
}

func TestDoctorReportsHealthyProject(t *testing.T) {
	dir := newProject(t)
	seedProject(t, dir)

	out := mustRun(t, dir, "--json", "doctor")
	var checks []healthCheck
	if err := json.Unmarshal([]byte(out), &checks); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(checks) != 4 {
		t.Fatalf("got %d checks, want 4: %+v", len(checks), checks)
	}
	for _, c := range checks {
		if c.Status != "ok" {
			t.Errorf("%s: %s (%s)", c.Name, c.Status, c.Summary)
		}
	}
}
