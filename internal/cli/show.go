package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cutline/internal/store"
	"cutline/internal/timeline"
	"cutline/internal/tui"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [clip-id]",
		Short: "Show the tracks and clips of the project, or one clip",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(commandContext(cmd))
	if err != nil {
		return err
	}
	defer ws.Close()

	doc, err := ws.document(commandContext(cmd))
	if err != nil {
		return err
	}

	if len(args) == 1 {
		ti, ci, ok := doc.FindClip(args[0])
		if !ok {
			return fmt.Errorf("clip %q not found", args[0])
		}
		return showClip(cmd, doc.Tracks[ti], doc.Tracks[ti].Clips[ci])
	}

	if outputJSON {
		return writeJSON(cmd, doc)
	}
	writeDocumentTable(cmd, ws.paths.Root, ws.paths.DocumentFile, doc)
	return nil
}

func writeDocumentTable(cmd *cobra.Command, root, docFile string, doc timeline.Document) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project: %s\n", root)
	if info, err := os.Stat(docFile); err == nil {
		fmt.Fprintf(out, "Saved:   %s (%s, %s)\n", docFile, humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
	}
	fmt.Fprintf(out, "Length:  %s  zoom %.2fx  %g fps  playhead %s\n",
		tui.FormatTimecode(doc.Duration), doc.Zoom, doc.FPS, tui.FormatTimecode(doc.CurrentTime))
	fmt.Fprintf(out, "History: %s (%s)  fingerprint %s\n\n",
		historyPosition(doc.History), doc.History.State(), store.Fingerprint(doc)[:12])

	if len(doc.Tracks) == 0 {
		fmt.Fprintln(out, "No tracks.")
		return
	}

	selected := make(map[string]bool, len(doc.SelectedClipIDs))
	for _, id := range doc.SelectedClipIDs {
		selected[id] = true
	}

	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TRACK\tCLIP\tKIND\tSTART\tEND\tLENGTH\tMEDIA IN\tSOURCE\tSEL")
	for _, t := range doc.Tracks {
		if len(t.Clips) == 0 {
			fmt.Fprintf(w, "%s\t-\t%s\t-\t-\t-\t-\t-\t\n", t.ID, t.Type)
			continue
		}
		for _, c := range t.Clips {
			mark := ""
			if selected[c.ID] {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID,
				c.ID,
				c.Kind,
				formatSeconds(c.StartTime),
				formatSeconds(c.EndTime),
				formatSeconds(c.EndTime-c.StartTime),
				formatSeconds(c.MediaOffset),
				tui.TruncateWithEllipsis(tui.NonEmptyOrDash(clipSource(c)), 32),
				mark,
			)
		}
	}
	w.Flush()

	var transitions []string
	for _, t := range doc.Tracks {
		for _, tr := range t.Transitions {
			transitions = append(transitions, fmt.Sprintf("  %s %s: %s -> %s (%ss)", tr.ID, tr.Type, tr.ClipAID, tr.ClipBID, formatSeconds(tr.Duration)))
		}
	}
	if len(transitions) > 0 {
		fmt.Fprintf(out, "\nTransitions:\n%s\n", strings.Join(transitions, "\n"))
	}
}

func clipSource(c timeline.Clip) string {
	switch {
	case c.Video != nil:
		return c.Video.Src
	case c.Audio != nil:
		return c.Audio.Src
	case c.Caption != nil:
		return c.Caption.Text
	}
	return c.Name
}

func showClip(cmd *cobra.Command, t timeline.Track, c timeline.Clip) error {
	if outputJSON {
		return writeJSON(cmd, struct {
			TrackID string        `json:"trackId"`
			Clip    timeline.Clip `json:"clip"`
		}{t.ID, c})
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", c.ID)
	fmt.Fprintf(w, "Track\t%s\n", t.ID)
	fmt.Fprintf(w, "Kind\t%s\n", c.Kind)
	fmt.Fprintf(w, "Timeline\t%s - %s\n", formatSeconds(c.StartTime), formatSeconds(c.EndTime))
	fmt.Fprintf(w, "Media\toffset %s of %s\n", formatSeconds(c.MediaOffset), formatSeconds(c.MediaDuration))
	fmt.Fprintf(w, "Initial bounds\t%s - %s (offset %s)\n",
		formatSeconds(c.InitialBounds.StartTime), formatSeconds(c.InitialBounds.EndTime), formatSeconds(c.InitialBounds.MediaOffset))
	fmt.Fprintf(w, "Handles\t%s - %s\n", formatSeconds(c.Handles.StartPosition), formatSeconds(c.Handles.EndPosition))
	if src := clipSource(c); src != "" {
		fmt.Fprintf(w, "Source\t%s\n", src)
	}
	return w.Flush()
}
