package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"cutline/internal/timeline"
	"cutline/pkg/script"
)

// StepReporter turns script progress into bubbletea messages.
type StepReporter struct {
	send func(tea.Msg)
}

func NewStepReporter(send func(tea.Msg)) *StepReporter {
	return &StepReporter{send: send}
}

// Start implements script.Reporter.
func (r *StepReporter) Start(step script.Step) {
	r.send(StepUpdateMsg{Index: step.Index, Status: "applying"})
}

// Complete implements script.Reporter.
func (r *StepReporter) Complete(step script.Step, err error) {
	if err != nil {
		// Engine rejections leave the document untouched; anything else
		// (a closed session, a canceled run) is a failure.
		status := "failed"
		if timeline.KindOf(err) != "" {
			status = "rejected"
		}
		r.send(StepUpdateMsg{Index: step.Index, Status: status, Detail: err.Error()})
		return
	}
	r.send(StepUpdateMsg{Index: step.Index, Status: "applied"})
}
