package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/debtfree/internal/cli"
	"github.com/theirongolddev/debtfree/internal/debt"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/tui/components"
	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// dayWindow is how many day rows are shown around the cursor.
const dayWindow = 10

func (a App) renderFastTab(cw int) string {
	t := theme.Active
	c := a.fast.Fast
	if c == nil {
		body := lipgloss.NewStyle().Foreground(t.TextMuted).Render(
			"No fast in progress.\nStart one with: debtfree fast start --interactive")
		return components.ContentCard("Financial fast", body, cw)
	}

	today := a.today()
	elapsed := min(debt.DaysElapsed(c.StartDate, a.now()), model.FastLength)
	respected := a.fast.RespectedDays()

	savings := "locked"
	if !a.locked {
		savings = cli.FormatMoney(a.summary.FastSavingsMonthly) + "/mo"
	}
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Day", Value: fmt.Sprintf("%d / %d", elapsed, model.FastLength), Note: cli.FormatDate(c.EndDate)},
		{Label: "Respected", Value: fmt.Sprintf("%d", respected), Color: components.ColorForRate(float64(respected) / float64(max(elapsed, 1)))},
		{Label: "Savings", Value: savings, Note: strings.Join(c.Categories, ", ")},
	}, cw)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render(c.Title))
	if c.Intention != "" {
		b.WriteString("  " + lipgloss.NewStyle().Foreground(t.TextMuted).Italic(true).Render(c.Intention))
	}
	b.WriteString("\n\n")
	b.WriteString(components.FastProgressBar("Respected", respected, elapsed, model.FastLength, 10, max(components.CardInnerWidth(cw)-18, 10)))
	b.WriteString("\n\n")
	b.WriteString(a.renderDayRows(today, components.CardInnerWidth(cw)))

	return metrics + "\n" + components.ContentCard("", b.String(), cw)
}

func (a App) renderDayRows(today time.Time, width int) string {
	t := theme.Active
	days := a.fast.Days

	start := max(a.cursor-dayWindow/2, 0)
	end := min(start+dayWindow, len(days))
	start = max(end-dayWindow, 0)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		d := days[i]

		var mark string
		switch {
		case d.Date.After(today):
			mark = lipgloss.NewStyle().Foreground(t.TextDim).Render("·")
		case d.Respected:
			mark = lipgloss.NewStyle().Foreground(t.Green).Render("✓")
		default:
			mark = lipgloss.NewStyle().Foreground(t.Orange).Render("✗")
		}

		label := fmt.Sprintf("Day %02d  %s %s", d.DayIndex,
			cli.FormatDayOfWeek(int(d.Date.Weekday())), d.Date.Format("02 Jan"))
		labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
		if d.Date.Equal(today) {
			labelStyle = labelStyle.Foreground(t.Accent).Bold(true)
		}

		prefix := "  "
		if i == a.cursor {
			prefix = lipgloss.NewStyle().Foreground(t.Accent).Render("› ")
		}

		line := prefix + labelStyle.Render(label) + "  " + mark
		if d.Reflection != "" {
			room := width - lipgloss.Width(line) - 2
			line += "  " + lipgloss.NewStyle().Foreground(t.TextMuted).Render(truncRunes(d.Reflection, room))
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func truncRunes(s string, limit int) string {
	if limit <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
