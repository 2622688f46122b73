package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/debtfree/internal/cli"
	"github.com/theirongolddev/debtfree/internal/debt"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/tui/components"
	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderLocked(cw int, title string) string {
	t := theme.Active
	body := lipgloss.NewStyle().Foreground(t.Orange).Render("An active subscription is required for this view.") + "\n" +
		lipgloss.NewStyle().Foreground(t.TextMuted).Render("Your fast keeps working without one.")
	return components.ContentCard(title, body, cw)
}

func (a App) renderBudgetTab(cw int) string {
	if a.locked {
		return a.renderLocked(cw, "Budget")
	}
	t := theme.Active
	b := a.budget

	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: cli.FormatMoney(b.MonthlyIncome), Note: b.Month},
		{Label: "Expenses", Value: cli.FormatMoney(a.summary.TotalExpenses)},
		{Label: "Margin", Value: cli.FormatMoney(a.summary.AvailableMarginMonthly), Color: t.Green},
	}, cw)

	inner := components.CardInnerWidth(cw)
	var body strings.Builder
	if len(b.Expenses) == 0 {
		body.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render("No expenses recorded for " + b.Month + "."))
	} else {
		body.WriteString(components.MarginBar(a.summary.TotalExpenses, b.MonthlyIncome, max(inner-6, 10)))
		body.WriteString("\n\n")
		for _, e := range b.Expenses {
			amount := cli.FormatMoney(e.Amount)
			tag := ""
			if debt.IsDebtCategory(e.Category) {
				tag = lipgloss.NewStyle().Foreground(t.Orange).Render(" debt")
			}
			name := truncRunes(e.Category, inner-lipgloss.Width(amount)-8)
			gap := max(inner-lipgloss.Width(name)-lipgloss.Width(tag)-lipgloss.Width(amount), 1)
			body.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Render(name) + tag +
				strings.Repeat(" ", gap) + lipgloss.NewStyle().Foreground(t.TextMuted).Render(amount) + "\n")
		}
	}

	return metrics + "\n" + components.ContentCard("Expenses", strings.TrimRight(body.String(), "\n"), cw)
}

func (a App) renderDebtTab(cw int) string {
	if a.locked {
		return a.renderLocked(cw, "Debt freedom")
	}
	t := theme.Active
	s := a.summary

	freedomColor := t.Green
	if s.EstimatedMonthsToFreedom >= model.UnreachableMonths {
		freedomColor = t.Red
	}
	withFastColor := t.Green
	if s.EstimatedMonthsToFreedomWithFast >= model.UnreachableMonths {
		withFastColor = t.Red
	}

	top := components.MetricCardRow([]components.Metric{
		{Label: "Debt payments", Value: cli.FormatMoney(s.TotalDebtMonthlyPayments), Note: "per month"},
		{Label: "Estimated debt", Value: cli.FormatMoney(s.EstimatedTotalDebtAmount)},
		{Label: "Margin", Value: cli.FormatMoney(s.AvailableMarginMonthly), Note: "per month"},
	}, cw)
	bottom := components.MetricCardRow([]components.Metric{
		{Label: "Debt-free in", Value: cli.FormatMonths(s.EstimatedMonthsToFreedom), Color: freedomColor},
		{Label: "With the fast", Value: cli.FormatMonths(s.EstimatedMonthsToFreedomWithFast), Color: withFastColor},
		{Label: "Fast savings", Value: cli.FormatMoney(s.FastSavingsMonthly), Note: "per month"},
	}, cw)

	gain := ""
	if s.EstimatedMonthsToFreedom < model.UnreachableMonths && s.EstimatedMonthsToFreedomWithFast < s.EstimatedMonthsToFreedom {
		gain = lipgloss.NewStyle().Foreground(t.Green).Render(
			fmt.Sprintf(" Keeping the fast going saves %s.", cli.FormatMonths(s.EstimatedMonthsToFreedom-s.EstimatedMonthsToFreedomWithFast)))
	}
	return strings.TrimRight(top+"\n"+bottom+"\n"+gain, "\n")
}
