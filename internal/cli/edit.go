package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cutline/internal/tui"
)

type editOptions struct {
	preset string
	step   float64
}

func newEditCmd() *cobra.Command {
	opts := &editOptions{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the timeline interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEdit(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.preset, "preset", "", "Transition preset used by the transition key (default from config)")
	cmd.Flags().Float64Var(&opts.step, "step", 1, "Seconds moved per playhead or trim key press")
	return cmd
}

func runEdit(cmd *cobra.Command, opts *editOptions) error {
	if !tui.IsTerminal(cmd.OutOrStdout()) {
		return errors.New("edit needs an interactive terminal")
	}

	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	preset, ok := ws.cfg.Preset(opts.preset)
	if !ok {
		return fmt.Errorf("unknown transition preset %q", opts.preset)
	}
	duration := preset.Duration
	if duration <= 0 {
		duration = ws.cfg.Transitions.DefaultDuration
	}

	doc, err := ws.document(ctx)
	if err != nil {
		return err
	}
	model := tui.NewEditorModel(ctx, ws.session, doc, tui.EditorOptions{
		Title:          filepath.Base(ws.paths.Root),
		UnitsPerColumn: ws.cfg.View.UnitsPerColumn,
		Step:           opts.step,
		Transition: tui.TransitionPreset{
			Kind:     preset.Type,
			Duration: duration,
			Params:   preset.Params,
		},
	})

	final, err := tui.RunEditor(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), model)
	if err != nil {
		return err
	}
	end := final.Document()
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (history %s, duration %s)\n",
		filepath.Base(ws.paths.DocumentFile), historyPosition(end.History), tui.FormatTimecode(end.Duration))
	return nil
}
