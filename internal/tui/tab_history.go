package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/debtfree/internal/cli"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/tui/components"
	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	if len(a.history) == 0 {
		return components.ContentCard("History",
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("No fasts yet."), cw)
	}

	inner := components.CardInnerWidth(cw)
	rows := make([]string, 0, len(a.history))
	for _, h := range a.history {
		c := h.Campaign
		state := lipgloss.NewStyle().Foreground(t.TextDim).Render("closed")
		if c.IsActive {
			state = lipgloss.NewStyle().Foreground(t.Green).Render("active")
		}
		dates := cli.FormatDate(c.StartDate) + " → " + cli.FormatDate(c.EndDate)
		count := lipgloss.NewStyle().Foreground(components.ColorForRate(float64(h.RespectedDays) / model.FastLength)).
			Render(fmt.Sprintf("%2d/%d", h.RespectedDays, model.FastLength))

		title := truncRunes(c.Title, max(inner-lipgloss.Width(dates)-20, 8))
		gap := max(inner-lipgloss.Width(title)-lipgloss.Width(dates)-lipgloss.Width(count)-lipgloss.Width(state)-6, 1)
		rows = append(rows, lipgloss.NewStyle().Foreground(t.TextPrimary).Render(title)+
			strings.Repeat(" ", gap)+
			lipgloss.NewStyle().Foreground(t.TextMuted).Render(dates)+"  "+count+"  "+state)
	}
	return components.ContentCard("History", strings.Join(rows, "\n"), cw)
}
