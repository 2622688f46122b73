package model

import "time"

// MonthLayout is the API-facing month token format.
const MonthLayout = "2006-01"

// Expense is one declared monthly expense line.
type Expense struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ExpenseInput is an expense line as submitted, before sanitizing.
// Amount may be NaN when the submitted value was not numeric.
type ExpenseInput struct {
	Category string
	Amount   float64
}

// Budget is the income and expenses snapshot for one user and month.
type Budget struct {
	Month         string    `json:"month"`
	MonthlyIncome float64   `json:"monthlyIncome"`
	Expenses      []Expense `json:"expenses"`
}

// MonthStart returns the first day of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DebtSummary is the freedom projection for a user's current month.
type DebtSummary struct {
	TotalDebtMonthlyPayments         float64 `json:"totalDebtMonthlyPayments"`
	TotalExpenses                    float64 `json:"totalExpenses"`
	AvailableMarginMonthly           float64 `json:"availableMarginMonthly"`
	EstimatedTotalDebtAmount         float64 `json:"estimatedTotalDebtAmount"`
	FastSavingsMonthly               float64 `json:"fastSavingsMonthly"`
	TotalAvailableForDebt            float64 `json:"totalAvailableForDebt"`
	EstimatedMonthsToFreedom         int     `json:"estimatedMonthsToFreedom"`
	EstimatedMonthsToFreedomWithFast int     `json:"estimatedMonthsToFreedomWithFast"`
}

// UnreachableMonths marks a projection that cannot currently be achieved.
const UnreachableMonths = 999
