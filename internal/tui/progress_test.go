package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"cutline/internal/timeline"
	"cutline/pkg/script"
)

func testSteps() []script.Step {
	return []script.Step{
		{Index: 1, Line: 1, Command: timeline.AddTrack{Track: timeline.Track{ID: "v1", Type: timeline.KindVideo}}},
		{Index: 2, Line: 4, Command: timeline.SplitClip{TrackID: "v1", ClipID: "c1", Time: 2}},
		{Index: 3, Line: 6, Command: timeline.Undo{}},
	}
}

func TestStepUpdateMsg(t *testing.T) {
	m := NewApplyModel("test", testSteps())

	updated, _ := m.Update(StepUpdateMsg{Index: 2, Status: "rejected", Detail: "clip not found"})
	m = updated.(ApplyModel)

	if m.rows[1].status != "rejected" || m.rows[1].detail != "clip not found" {
		t.Errorf("row 2 = %+v", m.rows[1])
	}
	if m.rows[0].status != "pending" {
		t.Errorf("expected row 1 pending, got %q", m.rows[0].status)
	}
}

func TestStepUpdateMsg_UnknownIndex(t *testing.T) {
	m := NewApplyModel("test", testSteps())

	updated, _ := m.Update(StepUpdateMsg{Index: 99, Status: "applied"})
	m = updated.(ApplyModel)

	for _, r := range m.rows {
		if r.status != "pending" {
			t.Errorf("row %d changed to %q", r.index, r.status)
		}
	}
}

func TestWorkDoneMarksSkipped(t *testing.T) {
	m := NewApplyModel("test", testSteps())
	updated, _ := m.Update(StepUpdateMsg{Index: 1, Status: "applied"})
	updated, _ = updated.Update(StepUpdateMsg{Index: 2, Status: "rejected"})
	updated, cmd := updated.Update(WorkDoneMsg{Summary: script.Summary{Applied: 1, Rejected: 1, Skipped: 1}})
	m = updated.(ApplyModel)

	if !m.Done() {
		t.Error("expected Done() to be true after WorkDoneMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if m.rows[2].status != "skipped" {
		t.Errorf("expected untouched step to be skipped, got %q", m.rows[2].status)
	}
	view := m.View()
	if !strings.Contains(view, "1 applied, 1 rejected, 1 skipped") {
		t.Errorf("summary missing from view:\n%s", view)
	}
}

func TestErrorMsg(t *testing.T) {
	m := NewApplyModel("test", testSteps())

	updated, cmd := m.Update(ErrorMsg{Err: tea.ErrProgramKilled})
	m = updated.(ApplyModel)

	if !m.Done() || m.Err() == nil {
		t.Error("expected model to finish with an error")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if !strings.HasPrefix(m.View(), "Error:") {
		t.Errorf("view = %q", m.View())
	}
}

func TestApplyView(t *testing.T) {
	m := NewApplyModel("edit.yaml", testSteps())
	updated, _ := m.Update(StepUpdateMsg{Index: 1, Status: "applied"})
	m = updated.(ApplyModel)

	view := m.View()
	for _, want := range []string{"edit.yaml", "STEP", "COMMAND", "ADD_TRACK", "SPLIT_CLIP", "applied", "pending", "Applying 1/3"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestStepReporter(t *testing.T) {
	var msgs []tea.Msg
	rep := NewStepReporter(func(msg tea.Msg) { msgs = append(msgs, msg) })
	step := testSteps()[1]

	rep.Start(step)
	rep.Complete(step, &timeline.EditError{Kind: timeline.KindNotFound, Msg: "clip not found"})
	rep.Complete(step, errors.New("session closed"))
	rep.Complete(step, nil)

	want := []string{"applying", "rejected", "failed", "applied"}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages", len(msgs))
	}
	for i, w := range want {
		got := msgs[i].(StepUpdateMsg)
		if got.Index != 2 || got.Status != w {
			t.Errorf("message %d = %+v, want status %q", i, got, w)
		}
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{"hello", "hello"},
		{" hello ", "hello"},
	}
	for _, tt := range tests {
		got := NonEmptyOrDash(tt.input)
		if got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		got := TruncateWithEllipsis(tt.input, tt.max)
		if got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestMarqueeText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		tick  int
		want  string
	}{
		{"short", 10, 0, "short"},
		{"hello world here", 5, 0, "hello"},
		{"hello world here", 5, 1, "ello "},
		{"hello world here", 5, 5, " worl"},
		{"abcdef", 4, 6, "   a"},
	}
	for _, tt := range tests {
		if got := marqueeText(tt.text, tt.width, tt.tick); got != tt.want {
			t.Errorf("marqueeText(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.tick, got, tt.want)
		}
	}
}

func TestTickStopsAfterDone(t *testing.T) {
	m := NewApplyModel("test", nil)
	updated, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Error("expected next tick command while running")
	}
	updated, _ = updated.Update(WorkDoneMsg{})
	_, cmd = updated.Update(tickMsg{})
	if cmd != nil {
		t.Error("expected no tick command after done")
	}
}

func TestCtrlC(t *testing.T) {
	m := NewApplyModel("test", nil)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(ApplyModel)

	if !m.Done() {
		t.Error("expected Done() to be true after ctrl+c")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}
