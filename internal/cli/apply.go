package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"cutline/internal/logx"
	"cutline/internal/paths"
	"cutline/internal/store"
	"cutline/internal/timeline"
	"cutline/internal/tui"
	"cutline/pkg/script"
)

type applyOptions struct {
	continueOnError bool
	dryRun          bool
	noProgress      bool
}

func newApplyCmd() *cobra.Command {
	opts := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply <script>",
		Short: "Apply a YAML, JSON or JSONL script of commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "Keep going after a rejected command")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Run against a copy of the document without saving or journaling")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the interactive progress table")
	return cmd
}

// stepResult is one row of apply output.
type stepResult struct {
	Index   int                  `json:"index"`
	Line    int                  `json:"line,omitempty"`
	Command timeline.CommandType `json:"command"`
	Status  string               `json:"status"`
	Error   string               `json:"error,omitempty"`
}

// collectingReporter records step outcomes for plain and JSON output.
type collectingReporter struct {
	results []stepResult
}

func (r *collectingReporter) Start(script.Step) {}

func (r *collectingReporter) Complete(step script.Step, err error) {
	res := stepResult{Index: step.Index, Line: step.Line, Command: step.Command.Type(), Status: "applied"}
	if err != nil {
		res.Status = "rejected"
		res.Error = err.Error()
	}
	r.results = append(r.results, res)
}

func runApply(cmd *cobra.Command, path string, opts *applyOptions) error {
	ctx := commandContext(cmd)

	steps, err := script.Load(path)
	if err != nil {
		var verrs script.ValidationErrors
		if errors.As(err, &verrs) {
			for _, issue := range verrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", issue.Error())
			}
			return fmt.Errorf("%s: %d invalid step(s)", path, len(verrs))
		}
		return err
	}

	dispatch, closer, err := applyTarget(ctx, opts.dryRun)
	if err != nil {
		return err
	}
	defer closer()

	runOpts := script.RunOptions{ContinueOnError: opts.continueOnError}

	var (
		sum    script.Summary
		runErr error
	)
	switch tui.DetectMode(cmd.OutOrStdout(), opts.noProgress, outputJSON) {
	case tui.ModeTUI:
		model := tui.NewApplyModel(path, steps)
		uiErr := tui.RunWithWork(cmd.OutOrStdout(), model, func(send func(tea.Msg)) script.Summary {
			sum, runErr = script.Run(ctx, steps, dispatch, tui.NewStepReporter(send), runOpts)
			return sum
		})
		if uiErr != nil {
			return uiErr
		}
	default:
		rep := &collectingReporter{}
		sum, runErr = script.Run(ctx, steps, dispatch, rep, runOpts)
		rep.fillSkipped(steps)
		if outputJSON {
			if err := writeJSON(cmd, struct {
				Script  string         `json:"script"`
				DryRun  bool           `json:"dry_run"`
				Summary script.Summary `json:"summary"`
				Steps   []stepResult   `json:"steps"`
			}{path, opts.dryRun, sum, rep.results}); err != nil {
				return err
			}
		} else {
			writeApplyTable(cmd, rep.results, sum, opts.dryRun)
		}
	}

	if runErr != nil {
		return runErr
	}
	return nil
}

func (r *collectingReporter) fillSkipped(steps []script.Step) {
	done := make(map[int]bool, len(r.results))
	for _, res := range r.results {
		done[res.Index] = true
	}
	for _, s := range steps {
		if !done[s.Index] {
			r.results = append(r.results, stepResult{Index: s.Index, Line: s.Line, Command: s.Command.Type(), Status: "skipped"})
		}
	}
}

func writeApplyTable(cmd *cobra.Command, results []stepResult, sum script.Summary, dryRun bool) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tLINE\tCOMMAND\tSTATUS\tDETAIL")
	for _, r := range results {
		line := "-"
		if r.Line > 0 {
			line = fmt.Sprint(r.Line)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Index, line, r.Command, r.Status, tui.NonEmptyOrDash(r.Error))
	}
	w.Flush()
	suffix := ""
	if dryRun {
		suffix = " (dry run, nothing saved)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s%s\n", tui.FormatSummary(sum), suffix)
}

// applyTarget returns where script commands go: the project session, or for
// a dry run a private copy of the saved document.
func applyTarget(ctx context.Context, dryRun bool) (script.Dispatcher, func(), error) {
	if !dryRun {
		ws, err := openWorkspace(ctx)
		if err != nil {
			return nil, nil, err
		}
		return func(ctx context.Context, c timeline.Command) error {
			_, err := ws.dispatch(ctx, c)
			return err
		}, func() { ws.Close() }, nil
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(pp)
	if err != nil {
		return nil, nil, err
	}
	engine := newEngine(cfg, logx.Discard())
	doc, err := store.Load(pp.DocumentFile, engine)
	if err != nil {
		return nil, nil, err
	}
	return func(_ context.Context, c timeline.Command) error {
		next, err := engine.Dispatch(doc, engine.Resolve(c))
		if err != nil {
			return err
		}
		doc = next
		return nil
	}, func() {}, nil
}
