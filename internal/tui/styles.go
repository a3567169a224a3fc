package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles view titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	statusStyles = map[string]lipgloss.Style{
		"applied":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"applying": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"skipped":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"rejected": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"failed":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		"pending":  lipgloss.NewStyle().Faint(true),
	}

	clipStyles = map[string]lipgloss.Style{
		"video":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"audio":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"caption": lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	}

	selectedClipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	playheadStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	trackNameStyle    = lipgloss.NewStyle().Faint(true)
	errorLineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	infoLineStyle     = lipgloss.NewStyle().Faint(true)
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func clipStyle(kind string) lipgloss.Style {
	if s, ok := clipStyles[kind]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
