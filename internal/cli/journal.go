package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cutline/internal/api"
	"cutline/internal/journal"
	"cutline/internal/logx"
	"cutline/internal/paths"
	"cutline/internal/store"
	"cutline/internal/timeline"
	"cutline/internal/tui"
	"cutline/pkg/script"
)

func newJournalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the log of every command dispatched to the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJournalList(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")

	cmd.AddCommand(newJournalExportCmd())
	cmd.AddCommand(newJournalReplayCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every journal entry",
		Args:  cobra.NoArgs,
		RunE:  runJournalClear,
	})
	return cmd
}

func newJournalExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|->",
		Short: "Write applied commands as a script that `cutline apply` accepts",
		Args:  cobra.ExactArgs(1),
		RunE:  runJournalExport,
	}
}

func newJournalReplayCmd() *cobra.Command {
	var rebuild bool
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal onto an empty document and compare with the project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJournalReplay(cmd, rebuild)
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Overwrite the project file with the replayed document")
	return cmd
}

// openJournalOnly opens the journal without loading the project file, so it
// works when that file is damaged.
func openJournalOnly() (paths.ProjectPaths, *journal.Journal, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return pp, nil, err
	}
	ok, err := pp.Initialized()
	if err != nil {
		return pp, nil, err
	}
	if !ok {
		return pp, nil, fmt.Errorf("no cutline project at %s", pp.Root)
	}
	j, err := journal.Open(pp.JournalFile, logx.Discard())
	return pp, j, err
}

func runJournalList(cmd *cobra.Command, limit int) error {
	_, j, err := openJournalOnly()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := commandContext(cmd)
	records, err := j.List(ctx, limit)
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd, api.JournalToResponse(records, time.Now()))
	}

	total, err := j.Count(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Journal is empty.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMAND\tSTATUS\tHISTORY\tSESSION\tWHEN\tERROR")
	for _, r := range records {
		status := "applied"
		if !r.Applied {
			status = "rejected"
		}
		session := r.SessionID
		if len(session) > 8 {
			session = session[:8]
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Command, status, r.HistoryIndex, session, humanize.Time(r.CreatedAt), tui.NonEmptyOrDash(r.Error))
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "\nshowing %d of %s entries\n", len(records), humanize.Comma(int64(total)))
	return nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	_, j, err := openJournalOnly()
	if err != nil {
		return err
	}
	defer j.Close()

	cmds, err := appliedCommands(commandContext(cmd), j)
	if err != nil {
		return err
	}

	target := args[0]
	if target == "-" {
		return script.Write(cmd.OutOrStdout(), cmds, script.FormatJSONL)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if err := script.Write(f, cmds, script.DetectFormat(target)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d command(s) to %s\n", len(cmds), target)
	return nil
}

// appliedCommands returns the journal's applied commands, oldest first.
func appliedCommands(ctx context.Context, j *journal.Journal) ([]timeline.Command, error) {
	records, err := j.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	var cmds []timeline.Command
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if !r.Applied {
			continue
		}
		c, err := timeline.DecodeCommand(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("journal entry %d: %w", r.ID, err)
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

func runJournalReplay(cmd *cobra.Command, rebuild bool) error {
	pp, j, err := openJournalOnly()
	if err != nil {
		return err
	}
	defer j.Close()

	cfg, err := loadConfig(pp)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, logx.Discard())

	var status *tui.StatusWriter
	if !outputJSON && tui.IsTerminal(cmd.ErrOrStderr()) {
		status = tui.NewStatusWriter(cmd.ErrOrStderr(), "Replaying journal")
	}
	replayed, n, replayErr := j.Replay(commandContext(cmd), engine, engine.NewDocument())
	if status != nil {
		status.Stop(fmt.Sprintf("Replayed %d command(s)", n))
	}

	want := store.Fingerprint(replayed)
	stored, loadErr := store.Load(pp.DocumentFile, engine)
	have := ""
	if loadErr == nil {
		have = store.Fingerprint(stored)
	}
	match := loadErr == nil && have == want

	if outputJSON {
		res := struct {
			Replayed    int    `json:"replayed"`
			Fingerprint string `json:"fingerprint"`
			Stored      string `json:"stored_fingerprint,omitempty"`
			Match       bool   `json:"match"`
			Rebuilt     bool   `json:"rebuilt"`
			Error       string `json:"error,omitempty"`
		}{Replayed: n, Fingerprint: want, Stored: have, Match: match}
		if replayErr != nil {
			res.Error = replayErr.Error()
		}
		if rebuild && replayErr == nil {
			if err := store.Save(pp.DocumentFile, replayed); err != nil {
				return err
			}
			res.Rebuilt = true
		}
		if err := writeJSON(cmd, res); err != nil {
			return err
		}
		return replayErr
	}

	out := cmd.OutOrStdout()
	if replayErr != nil {
		fmt.Fprintf(out, "Replay stopped after %d command(s): %v\n", n, replayErr)
		return replayErr
	}
	switch {
	case loadErr != nil:
		fmt.Fprintf(out, "Project file unreadable: %v\n", loadErr)
	case match:
		fmt.Fprintf(out, "Journal matches project file (%d commands, fingerprint %s)\n", n, want[:12])
	default:
		fmt.Fprintf(out, "Journal differs from project file: replayed %s, stored %s\n", want[:12], have[:12])
	}
	if rebuild {
		if err := store.Save(pp.DocumentFile, replayed); err != nil {
			return err
		}
		fmt.Fprintf(out, "Rebuilt %s from %d command(s)\n", pp.DocumentFile, n)
	}
	return nil
}

func runJournalClear(cmd *cobra.Command, _ []string) error {
	_, j, err := openJournalOnly()
	if err != nil {
		return err
	}
	defer j.Close()
	ctx := commandContext(cmd)
	n, err := j.Count(ctx)
	if err != nil {
		return err
	}
	if err := j.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s journal entries\n", humanize.Comma(int64(n)))
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
