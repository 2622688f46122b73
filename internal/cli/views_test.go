package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/debtfree/internal/model"
)

func TestRenderBudgetMarksDebtLines(t *testing.T) {
	out := RenderBudget(model.Budget{
		Month:         "2026-10",
		MonthlyIncome: 3000,
		Expenses: []model.Expense{
			{Category: "Crédit auto", Amount: 400},
			{Category: "Loisirs", Amount: 200},
		},
	})
	for _, want := range []string{"Budget 2026-10", "Crédit auto", "Loisirs", "debt"} {
		if !strings.Contains(out, want) {
			t.Errorf("budget view missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "debt") != 1 {
		t.Errorf("only the credit line is debt:\n%s", out)
	}
}

func TestRenderBudgetEmpty(t *testing.T) {
	out := RenderBudget(model.Budget{Month: "2026-01", Expenses: []model.Expense{}})
	if !strings.Contains(out, "No expenses recorded") {
		t.Fatalf("empty budget view:\n%s", out)
	}
}

func TestRenderDebtSummaryUnreachable(t *testing.T) {
	out := RenderDebtSummary(model.DebtSummary{
		EstimatedMonthsToFreedom:         model.UnreachableMonths,
		EstimatedMonthsToFreedomWithFast: model.UnreachableMonths,
	})
	if !strings.Contains(out, "not reachable") || !strings.Contains(out, "Nothing is available") {
		t.Fatalf("unreachable projection view:\n%s", out)
	}
}

func TestRenderFastDaysMarks(t *testing.T) {
	start := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	days := []model.FastDay{
		{DayIndex: 1, Date: start, Respected: true, Reflection: "Repas maison"},
		{DayIndex: 2, Date: start.AddDate(0, 0, 1)},
		{DayIndex: 3, Date: start.AddDate(0, 0, 2)},
	}
	out := RenderFastDays(days, today)
	for _, want := range []string{"yes", "no", "-", "Repas maison", "2026-10-16"} {
		if !strings.Contains(out, want) {
			t.Errorf("day log missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFastWithoutCampaign(t *testing.T) {
	if out := RenderFast(model.FastSnapshot{}, time.Now()); !strings.Contains(out, "No active financial fast") {
		t.Fatalf("empty fast view: %q", out)
	}
}
