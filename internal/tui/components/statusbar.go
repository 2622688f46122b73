package components

import (
	"strings"

	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: help on the left and a
// status message on the right. Error messages are shown in red.
func RenderStatusBar(width int, helpView, message string, isErr bool) string {
	t := theme.Active

	left := " " + helpView
	right := ""
	if message != "" {
		color := t.TextMuted
		if isErr {
			color = t.Red
		}
		right = lipgloss.NewStyle().Foreground(color).Render(message) + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return lipgloss.NewStyle().
		Foreground(t.TextMuted).
		MaxWidth(width).
		Render(left + strings.Repeat(" ", padding) + right)
}
