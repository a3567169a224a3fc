package tui

import (
	"cutline/internal/timeline"
	"cutline/pkg/script"
)

// StepUpdateMsg changes the status of one script step.
type StepUpdateMsg struct {
	Index  int
	Status string
	Detail string
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct {
	Summary script.Summary
}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}

// dispatchedMsg carries the result of an editor command back to the model.
type dispatchedMsg struct {
	cmd timeline.Command
	doc timeline.Document
	err error
}
