package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"cutline/internal/config"
	"cutline/internal/journal"
	"cutline/internal/logx"
	"cutline/internal/paths"
	"cutline/internal/store"
	"cutline/internal/timeline"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check project health",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	var checks []healthCheck

	cfg, cfgErr := config.Load(pp.ConfigFile)
	checks = append(checks, checkConfig(cfg, cfgErr))
	if cfgErr != nil {
		return writeDoctorResult(cmd, pp.Root, checks)
	}

	engine := newEngine(cfg, logx.Discard())
	doc, docErr := store.Load(pp.DocumentFile, engine)
	checks = append(checks, checkDocument(cfg, doc, docErr))

	jc, j := checkJournal(ctx, pp)
	checks = append(checks, jc)
	if j != nil {
		defer j.Close()
		if docErr == nil {
			checks = append(checks, checkReplay(ctx, engine, j, doc))
		}
	}

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errors int
	for _, v := range cfg.Validate() {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errors++
		}
	}

	summary := fmt.Sprintf("%d presets, history max %d", len(cfg.Transitions.Presets), cfg.History.MaxSize)
	if errors > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", summary, errors)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

// checkDocument loads the saved document and looks for broken track layouts.
func checkDocument(cfg config.Config, doc timeline.Document, docErr error) healthCheck {
	if docErr != nil {
		return healthCheck{Name: "Document", Status: "error", Summary: docErr.Error()}
	}

	problems := documentProblems(doc, cfg.Editing.RejectOverlapsValue())
	var clips, transitions int
	for _, t := range doc.Tracks {
		clips += len(t.Clips)
		transitions += len(t.Transitions)
	}
	summary := fmt.Sprintf("%d tracks, %d clips, %d transitions", len(doc.Tracks), clips, transitions)
	if len(problems) > 0 {
		return healthCheck{Name: "Document", Status: "error", Summary: fmt.Sprintf("%s; %s", summary, joinComma(problems))}
	}
	return healthCheck{Name: "Document", Status: "ok", Summary: summary}
}

func documentProblems(doc timeline.Document, rejectOverlaps bool) []string {
	var problems []string
	for _, t := range doc.Tracks {
		ids := make(map[string]bool, len(t.Clips))
		for i, c := range t.Clips {
			ids[c.ID] = true
			if c.EndTime <= c.StartTime {
				problems = append(problems, fmt.Sprintf("clip %s has no length", c.ID))
			}
			if i == 0 {
				continue
			}
			prev := t.Clips[i-1]
			if prev.StartTime > c.StartTime {
				problems = append(problems, fmt.Sprintf("track %s is out of order at %s", t.ID, c.ID))
			}
			if rejectOverlaps && timeline.Overlaps(prev.StartTime, prev.EndTime, c.StartTime, c.EndTime) {
				problems = append(problems, fmt.Sprintf("clips %s and %s overlap", prev.ID, c.ID))
			}
		}
		for _, tr := range t.Transitions {
			if !ids[tr.ClipAID] || !ids[tr.ClipBID] {
				problems = append(problems, fmt.Sprintf("transition %s references a missing clip", tr.ID))
			}
		}
	}
	return problems
}

// checkJournal opens the journal when it exists; the caller closes it.
func checkJournal(ctx context.Context, pp paths.ProjectPaths) (healthCheck, *journal.Journal) {
	ok, err := paths.FileExists(pp.JournalFile)
	if err != nil {
		return healthCheck{Name: "Journal", Status: "error", Summary: err.Error()}, nil
	}
	if !ok {
		return healthCheck{Name: "Journal", Status: "warning", Summary: "no journal; edits cannot be replayed"}, nil
	}

	j, err := journal.Open(pp.JournalFile, logx.Discard())
	if err != nil {
		return healthCheck{Name: "Journal", Status: "error", Summary: err.Error()}, nil
	}
	records, err := j.List(ctx, 0)
	if err != nil {
		j.Close()
		return healthCheck{Name: "Journal", Status: "error", Summary: err.Error()}, nil
	}
	var rejected int
	for _, r := range records {
		if !r.Applied {
			rejected++
		}
	}
	return healthCheck{
		Name:    "Journal",
		Status:  "ok",
		Summary: fmt.Sprintf("%d entries, %d rejected", len(records), rejected),
	}, j
}

func checkReplay(ctx context.Context, e *timeline.Engine, j *journal.Journal, doc timeline.Document) healthCheck {
	replayed, n, err := j.Replay(ctx, e, e.NewDocument())
	if err != nil {
		return healthCheck{Name: "Replay", Status: "error", Summary: fmt.Sprintf("stopped after %d commands: %v", n, err)}
	}
	want, have := store.Fingerprint(replayed), store.Fingerprint(doc)
	if want != have {
		return healthCheck{
			Name:    "Replay",
			Status:  "warning",
			Summary: fmt.Sprintf("%d commands replay to a different document", n),
		}
	}
	return healthCheck{Name: "Replay", Status: "ok", Summary: fmt.Sprintf("%d commands reproduce the project", n)}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROJECT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
