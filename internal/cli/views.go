package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/debtfree/internal/debt"
	"github.com/theirongolddev/debtfree/internal/model"
)

// RenderBudget renders a month's income and expense lines.
func RenderBudget(b model.Budget) string {
	var out strings.Builder
	out.WriteString(RenderTitle("Budget " + b.Month))
	out.WriteString("\n\n")

	var total, maxAmount float64
	for _, e := range b.Expenses {
		total += e.Amount
		if e.Amount > maxAmount {
			maxAmount = e.Amount
		}
	}

	rows := make([][]string, 0, len(b.Expenses)+3)
	for _, e := range b.Expenses {
		kind := ""
		if debt.IsDebtCategory(e.Category) {
			kind = "debt"
		}
		rows = append(rows, []string{e.Category, FormatMoney(e.Amount), kind})
	}
	rows = append(rows,
		[]string{SeparatorRow},
		[]string{"Income", FormatMoney(b.MonthlyIncome), ""},
		[]string{"Expenses", FormatMoney(total), ""},
	)
	out.WriteString(RenderTable(Table{
		Headers: []string{"Category", "Amount", "Type"},
		Rows:    rows,
		Align:   []Align{AlignLeft, AlignRight, AlignLeft},
	}))

	if maxAmount > 0 {
		out.WriteString("\n")
		for _, e := range b.Expenses {
			fmt.Fprintf(&out, "  %-20s %s\n", truncate(e.Category, 20), RenderHorizontalBar(e.Amount, maxAmount, 30))
		}
	}
	if len(b.Expenses) == 0 {
		out.WriteString(mutedStyle.Render("  No expenses recorded for this month."))
		out.WriteString("\n")
	}
	return out.String()
}

// RenderDebtSummary renders the freedom projection.
func RenderDebtSummary(s model.DebtSummary) string {
	var out strings.Builder
	out.WriteString(RenderTitle("Debt freedom"))
	out.WriteString("\n\n")
	out.WriteString(RenderTable(Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Monthly debt payments", FormatMoney(s.TotalDebtMonthlyPayments)},
			{"Total expenses", FormatMoney(s.TotalExpenses)},
			{"Available margin", FormatMoney(s.AvailableMarginMonthly)},
			{"Estimated total debt", FormatMoney(s.EstimatedTotalDebtAmount)},
			{"Fast savings (monthly)", FormatMoney(s.FastSavingsMonthly)},
			{"Available for debt", FormatMoney(s.TotalAvailableForDebt)},
			{SeparatorRow},
			{"Months to freedom", FormatMonths(s.EstimatedMonthsToFreedom)},
			{"With the fast", FormatMonths(s.EstimatedMonthsToFreedomWithFast)},
		},
	}))
	if s.EstimatedMonthsToFreedom >= model.UnreachableMonths {
		out.WriteString(warnStyle.Render("  Nothing is available for debt repayment this month."))
		out.WriteString("\n")
	}
	return out.String()
}

// RenderFast renders a campaign with its day strip.
func RenderFast(snap model.FastSnapshot, today time.Time) string {
	if snap.Fast == nil {
		return mutedStyle.Render("No active financial fast. Start one with: debtfree fast start") + "\n"
	}
	c := snap.Fast
	var out strings.Builder
	out.WriteString(RenderTitle(c.Title))
	out.WriteString("\n\n")

	state := "active"
	if !c.IsActive {
		state = "closed"
	}
	rows := [][]string{
		{"Id", c.ID},
		{"State", state},
		{"Dates", FormatDate(c.StartDate) + " to " + FormatDate(c.EndDate)},
		{"Categories", strings.Join(c.Categories, ", ")},
		{"Monthly spend", FormatMoney(c.EstimatedMonthlySpend)},
	}
	if c.Intention != "" {
		rows = append(rows, []string{"Intention", c.Intention})
	}
	if c.HabitName != "" {
		rows = append(rows, []string{"Habit", strings.TrimSpace(c.HabitName + " " + c.HabitReminder)})
	}
	out.WriteString(RenderTable(Table{Rows: rows, Align: []Align{AlignLeft, AlignLeft}}))

	respected := snap.RespectedDays()
	fmt.Fprintf(&out, "\n  %s\n  %s\n",
		RenderDayStrip(snap.Days, today),
		RenderProgressBar(respected, model.FastLength, 30),
	)
	return out.String()
}

// RenderFastDays renders the day log of a campaign.
func RenderFastDays(days []model.FastDay, today time.Time) string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		mark := "no"
		switch {
		case d.Date.After(today):
			mark = "-"
		case d.Respected:
			mark = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%2d  %s %s", d.DayIndex, FormatDayOfWeek(int(d.Date.Weekday())), FormatDate(d.Date)),
			mark,
			truncate(d.Reflection, 40),
		})
	}
	return RenderTable(Table{
		Headers: []string{"Day", "Respected", "Reflection"},
		Rows:    rows,
		Align:   []Align{AlignLeft, AlignLeft, AlignLeft},
	})
}

// RenderHistory renders a list of campaigns.
func RenderHistory(list []model.FastSummary) string {
	if len(list) == 0 {
		return mutedStyle.Render("No financial fasts yet.") + "\n"
	}
	rows := make([][]string, 0, len(list))
	for _, f := range list {
		state := "closed"
		if f.Campaign.IsActive {
			state = "active"
		}
		rows = append(rows, []string{
			FormatDate(f.Campaign.StartDate),
			truncate(f.Campaign.Title, 24),
			state,
			fmt.Sprintf("%d/%d", f.RespectedDays, model.FastLength),
			FormatPercent(float64(f.RespectedDays) / model.FastLength),
		})
	}
	return RenderTable(Table{
		Title:   "Financial fasts",
		Headers: []string{"Start", "Title", "State", "Respected", "Rate"},
		Rows:    rows,
		Align:   []Align{AlignLeft, AlignLeft, AlignLeft},
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
