package debt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/theirongolddev/debtfree/internal/model"
)

var tracer = otel.Tracer("github.com/theirongolddev/debtfree/internal/debt")

// BudgetReader returns a user's budget for a month slug; "" is the current month.
type BudgetReader interface {
	GetBudget(ctx context.Context, userID, monthSlug string) (model.Budget, error)
}

// FastReader returns a user's active campaign, or a snapshot with nil Fast.
type FastReader interface {
	GetActiveCampaign(ctx context.Context, userID string) (model.FastSnapshot, error)
}

// Projector computes DebtSummary from the current month's budget and the
// active fast campaign.
type Projector struct {
	Budgets    BudgetReader
	Fasts      FastReader
	Classifier Classifier
	Estimator  Estimator
	Now        func() time.Time
}

// NewProjector wires the default keyword classifier and 12-month estimator.
func NewProjector(budgets BudgetReader, fasts FastReader) *Projector {
	return &Projector{
		Budgets:    budgets,
		Fasts:      fasts,
		Classifier: NewKeywordClassifier(),
		Estimator:  FlatEstimator{Months: 12},
		Now:        time.Now,
	}
}

// GetDebtSummary projects months to freedom for userID.
func (p *Projector) GetDebtSummary(ctx context.Context, userID string) (model.DebtSummary, error) {
	ctx, span := tracer.Start(ctx, "debt.GetDebtSummary")
	defer span.End()

	budget, err := p.Budgets.GetBudget(ctx, userID, "")
	if err != nil {
		span.RecordError(err)
		return model.DebtSummary{}, err
	}
	fast, err := p.Fasts.GetActiveCampaign(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return model.DebtSummary{}, err
	}

	summary := p.Project(budget, fast)
	span.SetAttributes(
		attribute.String("debt.month", budget.Month),
		attribute.Int("debt.expense_count", len(budget.Expenses)),
		attribute.Bool("debt.fast_active", fast.Fast != nil),
		attribute.Int("debt.months_to_freedom", summary.EstimatedMonthsToFreedom),
	)
	return summary, nil
}

// Project is the pure projection over an already loaded budget and fast.
func (p *Projector) Project(budget model.Budget, fast model.FastSnapshot) model.DebtSummary {
	classifier := p.Classifier
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	estimator := p.Estimator
	if estimator == nil {
		estimator = FlatEstimator{Months: 12}
	}

	debtPayments := decimal.Zero
	totalExpenses := decimal.Zero
	for _, e := range budget.Expenses {
		amount := decimal.NewFromFloat(e.Amount)
		totalExpenses = totalExpenses.Add(amount)
		if classifier.IsDebt(e.Category) {
			debtPayments = debtPayments.Add(amount)
		}
	}

	margin := decimal.Max(decimal.Zero, decimal.NewFromFloat(budget.MonthlyIncome).Sub(totalExpenses))
	estimatedTotal := estimator.EstimateTotal(debtPayments)
	fastSavings := p.fastSavings(fast)
	available := debtPayments.Add(margin)

	return model.DebtSummary{
		TotalDebtMonthlyPayments:         debtPayments.InexactFloat64(),
		TotalExpenses:                    totalExpenses.InexactFloat64(),
		AvailableMarginMonthly:           margin.InexactFloat64(),
		EstimatedTotalDebtAmount:         estimatedTotal.InexactFloat64(),
		FastSavingsMonthly:               fastSavings.InexactFloat64(),
		TotalAvailableForDebt:            available.InexactFloat64(),
		EstimatedMonthsToFreedom:         monthsToFreedom(estimatedTotal, available),
		EstimatedMonthsToFreedomWithFast: monthsToFreedom(estimatedTotal, available.Add(fastSavings)),
	}
}

// fastSavings extrapolates savings to date to a 30-day run rate, capped at
// the campaign's estimated monthly spend.
func (p *Projector) fastSavings(fast model.FastSnapshot) decimal.Decimal {
	if fast.Fast == nil || fast.Fast.EstimatedMonthlySpend <= 0 {
		return decimal.Zero
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	spend := decimal.NewFromFloat(fast.Fast.EstimatedMonthlySpend)
	respected := decimal.NewFromInt(int64(fast.RespectedDays()))
	elapsed := decimal.NewFromInt(int64(DaysElapsed(fast.Fast.StartDate, now())))

	// (spend / 30 × respected) × (30 / elapsed)
	runRate := spend.Mul(respected).Div(elapsed)
	return decimal.Min(spend, runRate)
}

// DaysElapsed counts calendar days from start through now inclusive, never
// less than 1.
func DaysElapsed(start, now time.Time) int {
	now = now.In(start.Location())
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func monthsToFreedom(total, available decimal.Decimal) int {
	if !available.IsPositive() {
		return model.UnreachableMonths
	}
	return int(total.Div(available).Ceil().IntPart())
}
