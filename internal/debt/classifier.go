// Package debt classifies expense categories and projects the number of
// months until a user's modeled debt is repaid.
package debt

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Classifier decides whether an expense category is a debt obligation.
type Classifier interface {
	IsDebt(category string) bool
}

// Estimator turns total monthly debt payments into an estimated debt amount.
type Estimator interface {
	EstimateTotal(monthlyPayments decimal.Decimal) decimal.Decimal
}

// DefaultKeywords are matched by substring against the lower-cased category,
// so "Paiement loyer" counts as debt.
var DefaultKeywords = []string{
	"dette", "dettes", "debt",
	"crédit", "credit", "crédits",
	"remboursement", "repayment",
	"prêt", "loan", "prêts",
	"mensualité", "monthly payment",
	"paiement", "payment",
}

// KeywordClassifier matches categories containing any keyword.
type KeywordClassifier struct {
	Keywords []string
}

// NewKeywordClassifier returns a classifier over DefaultKeywords.
func NewKeywordClassifier() KeywordClassifier {
	return KeywordClassifier{Keywords: DefaultKeywords}
}

func (k KeywordClassifier) IsDebt(category string) bool {
	normalized := cases.Lower(language.Und).String(strings.TrimSpace(category))
	if normalized == "" {
		return false
	}
	for _, kw := range k.Keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// IsDebtCategory classifies with the default keyword set.
func IsDebtCategory(category string) bool {
	return NewKeywordClassifier().IsDebt(category)
}

// FlatEstimator multiplies monthly payments by a fixed number of months.
type FlatEstimator struct {
	Months int
}

func (f FlatEstimator) EstimateTotal(monthlyPayments decimal.Decimal) decimal.Decimal {
	return monthlyPayments.Mul(decimal.NewFromInt(int64(f.Months)))
}
