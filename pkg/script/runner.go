package script

import (
	"context"
	"fmt"

	"cutline/internal/timeline"
)

// Dispatcher applies a single command.
type Dispatcher func(ctx context.Context, cmd timeline.Command) error

// Reporter receives step progress as a script runs.
type Reporter interface {
	Start(step Step)
	Complete(step Step, err error)
}

// RunOptions controls how Run reacts to rejected commands.
type RunOptions struct {
	// ContinueOnError keeps going after a rejected command instead of
	// skipping the remaining steps.
	ContinueOnError bool
}

// Summary counts step outcomes.
type Summary struct {
	Applied  int
	Rejected int
	Skipped  int
}

// StepError reports the first rejected step of a run.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	loc := formatLocation(e.Step.Index, e.Step.Line)
	return fmt.Sprintf("%s %s: %v", loc, e.Step.Command.Type(), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Run dispatches steps in order. Without ContinueOnError it stops at the
// first rejected step and reports the rest as skipped. The returned error
// is a *StepError for the first rejection, or the context error.
func Run(ctx context.Context, steps []Step, dispatch Dispatcher, rep Reporter, opts RunOptions) (Summary, error) {
	var (
		sum   Summary
		first error
	)
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			sum.Skipped += len(steps) - i
			return sum, err
		}
		if rep != nil {
			rep.Start(step)
		}
		err := dispatch(ctx, step.Command)
		if rep != nil {
			rep.Complete(step, err)
		}
		if err == nil {
			sum.Applied++
			continue
		}
		sum.Rejected++
		if first == nil {
			first = &StepError{Step: step, Err: err}
		}
		if !opts.ContinueOnError {
			sum.Skipped += len(steps) - i - 1
			break
		}
	}
	return sum, first
}
