package components

import (
	"fmt"

	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForRate returns red/orange/yellow/green for a respect rate, where a
// higher rate is better.
func ColorForRate(rate float64) lipgloss.Color {
	t := theme.Active
	switch {
	case rate >= 0.8:
		return t.Green
	case rate >= 0.5:
		return t.Yellow
	case rate >= 0.25:
		return t.Orange
	default:
		return t.Red
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FastProgressBar renders a labeled bar of respected days out of total,
// colored by the respect rate over the elapsed days.
func FastProgressBar(label string, respected, elapsed, total, labelW, barWidth int) string {
	t := theme.Active
	if total <= 0 {
		total = 1
	}
	pct := clampUnit(float64(respected) / float64(total))
	rate := 0.0
	if elapsed > 0 {
		rate = clampUnit(float64(respected) / float64(elapsed))
	}
	color := ColorForRate(rate)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	countStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(pct) + " " +
		countStyle.Render(fmt.Sprintf("%d/%d", respected, total))
}

// MarginBar renders how much of income the expenses consume.
func MarginBar(expenses, income float64, barWidth int) string {
	t := theme.Active
	pct := 1.0
	if income > 0 {
		pct = clampUnit(expenses / income)
	}
	color := ColorForRate(1 - pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return bar.ViewAs(pct) + " " +
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%3.0f%%", pct*100))
}
