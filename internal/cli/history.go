package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cutline/internal/api"
	"cutline/internal/timeline"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List undo history entries",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop all undo history, keeping the current document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return applyOne(cmd, timeline.ClearHistory{}, false)
		},
	})
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(commandContext(cmd))
	if err != nil {
		return err
	}
	defer ws.Close()

	doc, err := ws.document(commandContext(cmd))
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, api.HistoryToResponse(doc.History, time.Now()))
	}

	h := doc.History
	if len(h.Entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "\tINDEX\tCOMMAND\tDESCRIPTION\tCHECKPOINT\tWHEN")
	for i, e := range h.Entries {
		cursor := ""
		if i == h.CurrentIndex {
			cursor = ">"
		}
		checkpoint := ""
		if e.IsCheckpoint {
			checkpoint = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", cursor, i, e.Command, e.Description, checkpoint, humanize.Time(e.Timestamp))
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "\nstate %s, undo %t, redo %t\n", h.State(), h.CanUndo(), h.CanRedo())
	return nil
}
