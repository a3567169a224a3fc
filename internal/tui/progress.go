package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cutline/pkg/script"
)

const (
	tickInterval = 150 * time.Millisecond
	marqueeGap   = "   "
	detailWidth  = 40
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives animation (spinner, marquee).
type tickMsg time.Time

// stepRow is one line of the apply table.
type stepRow struct {
	index   int
	line    int
	command string
	status  string
	detail  string
}

// ApplyModel renders a script run as a table of steps with live status.
type ApplyModel struct {
	title    string
	rows     []stepRow
	rowIndex map[int]int
	summary  script.Summary
	done     bool
	err      error

	tick int
}

// NewApplyModel builds a model with one pending row per step.
func NewApplyModel(title string, steps []script.Step) ApplyModel {
	m := ApplyModel{
		title:    title,
		rows:     make([]stepRow, 0, len(steps)),
		rowIndex: make(map[int]int, len(steps)),
	}
	for _, s := range steps {
		m.rowIndex[s.Index] = len(m.rows)
		m.rows = append(m.rows, stepRow{
			index:   s.Index,
			line:    s.Line,
			command: string(s.Command.Type()),
			status:  "pending",
		})
	}
	return m
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ApplyModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ApplyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case StepUpdateMsg:
		if idx, ok := m.rowIndex[msg.Index]; ok {
			m.rows[idx].status = msg.Status
			m.rows[idx].detail = msg.Detail
		}
		return m, nil

	case WorkDoneMsg:
		m.summary = msg.Summary
		m.done = true
		// Steps never started were skipped.
		for i := range m.rows {
			if m.rows[i].status == "pending" {
				m.rows[i].status = "skipped"
			}
		}
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m ApplyModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	cmdWidth := len("COMMAND")
	for _, r := range m.rows {
		if len(r.command) > cmdWidth {
			cmdWidth = len(r.command)
		}
	}
	widths := []int{4, 4, cmdWidth, 8, detailWidth}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteByte('\n')
	}
	headers := []string{"STEP", "LINE", "COMMAND", "STATUS", "DETAIL"}
	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = HeaderStyle.Render(pad(h, widths[i]))
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteByte('\n')

	for _, r := range m.rows {
		line := "-"
		if r.line > 0 {
			line = strconv.Itoa(r.line)
		}
		detail := r.detail
		if !m.done && len(strings.TrimSpace(detail)) > detailWidth {
			detail = marqueeText(detail, detailWidth, m.tick)
		} else {
			detail = TruncateWithEllipsis(detail, detailWidth)
		}
		fields := []string{
			pad(strconv.Itoa(r.index), widths[0]),
			pad(line, widths[1]),
			pad(r.command, widths[2]),
			StatusStyle(r.status).Render(pad(r.status, widths[3])),
			detail,
		}
		b.WriteString(strings.TrimRight(strings.Join(fields, "  "), " "))
		b.WriteByte('\n')
	}

	if !m.done {
		processed, total := m.progressCounts()
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Applying %d/%d...\n", spinner, processed, total)
	} else {
		fmt.Fprintf(&b, "\n%s\n", FormatSummary(m.summary))
	}

	return b.String()
}

// progressCounts returns (processed, total) based on how many steps have
// left "pending" and "applying".
func (m ApplyModel) progressCounts() (int, int) {
	processed := 0
	for _, r := range m.rows {
		if r.status != "pending" && r.status != "applying" {
			processed++
		}
	}
	return processed, len(m.rows)
}

// Done returns whether the model has finished (work done or error).
func (m ApplyModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m ApplyModel) Err() error {
	return m.err
}

// FormatSummary renders run counts as a single line.
func FormatSummary(s script.Summary) string {
	return fmt.Sprintf("%d applied, %d rejected, %d skipped", s.Applied, s.Rejected, s.Skipped)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// marqueeText renders a scrolling window over text that exceeds the given width.
// The text slides left on each tick, with a gap between cycles.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	cycle := text + marqueeGap
	offset := tick % len(cycle)
	var result strings.Builder
	result.Grow(width)
	for i := 0; i < width; i++ {
		result.WriteByte(cycle[(offset+i)%len(cycle)])
	}
	return result.String()
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
