package debt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/debtfree/internal/model"
)

func TestIsDebtCategory(t *testing.T) {
	tests := []struct {
		category string
		want     bool
	}{
		{"Crédit auto", true},
		{"Remboursement prêt étudiant", true},
		{"Loisirs", false},
		{"Paiement loyer", true},
		{"  STUDENT LOAN  ", true},
		{"Monthly Payment - phone", true},
		{"CRÉDIT CONSO", true},
		{"Dettes diverses", true},
		{"Épicerie", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDebtCategory(tt.category); got != tt.want {
			t.Errorf("IsDebtCategory(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestFlatEstimator(t *testing.T) {
	got := FlatEstimator{Months: 12}.EstimateTotal(decimal.NewFromInt(400))
	if !got.Equal(decimal.NewFromInt(4800)) {
		t.Fatalf("EstimateTotal = %s, want 4800", got)
	}
}

func TestProjectWorkedExample(t *testing.T) {
	p := NewProjector(nil, nil)
	budget := model.Budget{
		MonthlyIncome: 3000,
		Expenses: []model.Expense{
			{Category: "Crédit auto", Amount: 400},
			{Category: "Loisirs", Amount: 200},
		},
	}
	got := p.Project(budget, model.FastSnapshot{})
	want := model.DebtSummary{
		TotalDebtMonthlyPayments:         400,
		TotalExpenses:                    600,
		AvailableMarginMonthly:           2400,
		EstimatedTotalDebtAmount:         4800,
		FastSavingsMonthly:               0,
		TotalAvailableForDebt:            2800,
		EstimatedMonthsToFreedom:         2,
		EstimatedMonthsToFreedomWithFast: 2,
	}
	if got != want {
		t.Fatalf("Project =\n%+v\nwant\n%+v", got, want)
	}
}

func TestProjectDegenerateIsSentinel(t *testing.T) {
	got := NewProjector(nil, nil).Project(model.Budget{Expenses: []model.Expense{}}, model.FastSnapshot{})
	if got.TotalAvailableForDebt != 0 {
		t.Fatalf("available = %v, want 0", got.TotalAvailableForDebt)
	}
	if got.EstimatedMonthsToFreedom != model.UnreachableMonths || got.EstimatedMonthsToFreedomWithFast != model.UnreachableMonths {
		t.Fatalf("months = %d / %d, want 999", got.EstimatedMonthsToFreedom, got.EstimatedMonthsToFreedomWithFast)
	}
}

func TestMarginNeverNegative(t *testing.T) {
	budget := model.Budget{
		MonthlyIncome: 500,
		Expenses:      []model.Expense{{Category: "Prêt immobilier", Amount: 1200}},
	}
	got := NewProjector(nil, nil).Project(budget, model.FastSnapshot{})
	if got.AvailableMarginMonthly != 0 {
		t.Fatalf("margin = %v, want 0", got.AvailableMarginMonthly)
	}
	// 14400 / 1200
	if got.EstimatedMonthsToFreedom != 12 {
		t.Fatalf("months = %d, want 12", got.EstimatedMonthsToFreedom)
	}
}

func fastWithRespected(start time.Time, spend float64, respected int) model.FastSnapshot {
	c := &model.FastCampaign{ID: "c1", StartDate: start, EstimatedMonthlySpend: spend, IsActive: true}
	days := make([]model.FastDay, model.FastLength)
	for i := range days {
		days[i] = model.FastDay{DayIndex: i + 1, Date: model.DayDate(start, i+1), Respected: i < respected}
	}
	return model.FastSnapshot{Fast: c, Days: days}
}

func TestFastSavingsRunRate(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		now       time.Time
		spend     float64
		respected int
		want      float64
	}{
		// day 10, 5 respected: 300/30*5 * 30/10 = 150
		{"run rate", time.Date(2026, 10, 10, 15, 0, 0, 0, time.UTC), 300, 5, 150},
		// day 1, 1 respected: 10 * 30 = 300, capped at 300
		{"capped", time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC), 300, 1, 300},
		{"none respected", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), 300, 0, 0},
		{"zero spend", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), 0, 10, 0},
		// start in the future clamps elapsed to 1
		{"future start", time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC), 90, 1, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProjector(nil, nil)
			p.Now = func() time.Time { return tt.now }
			got := p.fastSavings(fastWithRespected(start, tt.spend, tt.respected))
			if !got.Equal(decimal.NewFromFloat(tt.want)) {
				t.Fatalf("fastSavings = %s, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysElapsed(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	start := time.Date(2026, 10, 20, 0, 0, 0, 0, loc)
	// crosses the end of daylight saving time on 2026-10-25
	now := time.Date(2026, 10, 30, 23, 59, 0, 0, loc)
	if got := DaysElapsed(start, now); got != 11 {
		t.Fatalf("DaysElapsed = %d, want 11", got)
	}
	if got := DaysElapsed(start, start.Add(-48*time.Hour)); got != 1 {
		t.Fatalf("DaysElapsed before start = %d, want 1", got)
	}
}

type stubBudgets struct {
	budget model.Budget
	err    error
}

func (s stubBudgets) GetBudget(context.Context, string, string) (model.Budget, error) {
	return s.budget, s.err
}

type stubFasts struct {
	snap model.FastSnapshot
}

func (s stubFasts) GetActiveCampaign(context.Context, string) (model.FastSnapshot, error) {
	return s.snap, nil
}

func TestGetDebtSummaryWithFast(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	budgets := stubBudgets{budget: model.Budget{
		MonthlyIncome: 1000,
		Expenses: []model.Expense{
			{Category: "Crédit auto", Amount: 500},
			{Category: "Loyer", Amount: 500},
		},
	}}
	p := NewProjector(budgets, stubFasts{snap: fastWithRespected(start, 300, 10)})
	p.Now = func() time.Time { return time.Date(2026, 10, 10, 12, 0, 0, 0, time.UTC) }

	got, err := p.GetDebtSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetDebtSummary: %v", err)
	}
	// available = 500 + 0; total = 6000; fast = min(300, 300*10/10) = 300
	if got.TotalAvailableForDebt != 500 || got.FastSavingsMonthly != 300 {
		t.Fatalf("summary = %+v", got)
	}
	if got.EstimatedMonthsToFreedom != 12 {
		t.Fatalf("months = %d, want 12", got.EstimatedMonthsToFreedom)
	}
	// ceil(6000 / 800) = 8
	if got.EstimatedMonthsToFreedomWithFast != 8 {
		t.Fatalf("months with fast = %d, want 8", got.EstimatedMonthsToFreedomWithFast)
	}
}

func TestGetDebtSummaryPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	p := NewProjector(stubBudgets{err: boom}, stubFasts{})
	if _, err := p.GetDebtSummary(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

type everythingIsDebt struct{}

func (everythingIsDebt) IsDebt(string) bool { return true }

func TestStrategiesArePluggable(t *testing.T) {
	p := NewProjector(nil, nil)
	p.Classifier = everythingIsDebt{}
	p.Estimator = FlatEstimator{Months: 6}
	got := p.Project(model.Budget{
		MonthlyIncome: 1000,
		Expenses:      []model.Expense{{Category: "Loisirs", Amount: 100}},
	}, model.FastSnapshot{})
	// debt 100, total 600, available 100 + 900 = 1000
	if got.TotalDebtMonthlyPayments != 100 || got.EstimatedTotalDebtAmount != 600 || got.EstimatedMonthsToFreedom != 1 {
		t.Fatalf("summary = %+v", got)
	}
}
