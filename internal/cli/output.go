package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cutline/internal/timeline"
	"cutline/internal/tui"
)

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// editResult is the JSON shape of a single dispatched command.
type editResult struct {
	Command      timeline.CommandType  `json:"command"`
	Description  string                `json:"description"`
	HistoryIndex int                   `json:"history_index"`
	HistoryState timeline.HistoryState `json:"history_state"`
	Duration     float64               `json:"duration"`
	Document     *timeline.Document    `json:"document,omitempty"`
}

func reportEdit(cmd *cobra.Command, c timeline.Command, doc timeline.Document, full bool) error {
	if outputJSON {
		res := editResult{
			Command:      c.Type(),
			Description:  timeline.Describe(c.Type()),
			HistoryIndex: doc.History.CurrentIndex,
			HistoryState: doc.History.State(),
			Duration:     doc.Duration,
		}
		if full {
			res.Document = &doc
		}
		return writeJSON(cmd, res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (history %s, duration %s)\n",
		c.Type(),
		timeline.Describe(c.Type()),
		historyPosition(doc.History),
		tui.FormatTimecode(doc.Duration),
	)
	return nil
}

func historyPosition(h timeline.History) string {
	if len(h.Entries) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d/%d", h.CurrentIndex, len(h.Entries)-1)
}
