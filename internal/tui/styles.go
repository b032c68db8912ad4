package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-chart/internal/chart"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	UpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	DownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// FormatChange renders "+1.23 (+0.45%) ▲" or its negative counterpart.
func FormatChange(q chart.Quote) string {
	arrow := "▲"
	if !q.IsPositive {
		arrow = "▼"
	}

	return fmt.Sprintf("%+.2f (%+.2f%%) %s", q.Change, q.ChangePercent, arrow)
}

// RenderChange colors FormatChange by direction.
func RenderChange(q chart.Quote) string {
	if q.IsPositive {
		return UpStyle.Render(FormatChange(q))
	}

	return DownStyle.Render(FormatChange(q))
}
