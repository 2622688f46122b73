// Package ledger stores and returns one income and expenses snapshot per user
// per calendar month.
package ledger

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/model"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Store is the persistence the ledger needs.
type Store interface {
	GetBudget(ctx context.Context, userID string, month time.Time) (model.Budget, bool, error)
	SaveBudget(ctx context.Context, userID string, month time.Time, income float64, expenses []model.ExpenseInput) error
	ListBudgetMonths(ctx context.Context, userID string) ([]string, error)
}

// Ledger is the Budget Ledger service.
type Ledger struct {
	store Store
	// Now supplies the server clock; its location defines the calendar month.
	Now func() time.Time
}

// New returns a ledger over s.
func New(s Store) *Ledger {
	return &Ledger{store: s, Now: time.Now}
}

// ResolveMonth parses a YYYY-MM slug, falling back to now's month when the
// slug is absent or malformed.
func ResolveMonth(slug string, now time.Time) time.Time {
	slug = strings.TrimSpace(slug)
	if monthPattern.MatchString(slug) {
		if t, err := time.ParseInLocation(model.MonthLayout, slug, now.Location()); err == nil {
			return t
		}
	}
	return model.MonthStart(now)
}

// ValidMonth reports whether slug is a well-formed YYYY-MM token.
func ValidMonth(slug string) bool {
	return monthPattern.MatchString(strings.TrimSpace(slug))
}

// GetBudget returns the snapshot for userID and month. A month with no stored
// record yields a zeroed snapshot.
func (l *Ledger) GetBudget(ctx context.Context, userID, monthSlug string) (model.Budget, error) {
	month := ResolveMonth(monthSlug, l.Now())
	b, _, err := l.store.GetBudget(ctx, userID, month)
	if err != nil {
		return model.Budget{}, apperr.Persistence("load budget", err)
	}
	return b, nil
}

// SaveBudget validates and sanitizes the input, replaces the stored snapshot,
// and returns it as read back from the store.
func (l *Ledger) SaveBudget(ctx context.Context, userID, monthSlug string, income float64, expenses []model.ExpenseInput) (model.Budget, error) {
	if !validAmount(income) {
		return model.Budget{}, apperr.Validation(apperr.CodeIncomeInvalid, "monthly income must be a non-negative number")
	}
	month := ResolveMonth(monthSlug, l.Now())
	clean := SanitizeExpenses(expenses)

	if err := l.store.SaveBudget(ctx, userID, month, income, clean); err != nil {
		return model.Budget{}, apperr.Persistence("save budget", err)
	}
	b, _, err := l.store.GetBudget(ctx, userID, month)
	if err != nil {
		return model.Budget{}, apperr.Persistence("reload budget", err)
	}
	return b, nil
}

// Months lists the months with a stored snapshot, newest first.
func (l *Ledger) Months(ctx context.Context, userID string) ([]string, error) {
	months, err := l.store.ListBudgetMonths(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("list budget months", err)
	}
	return months, nil
}

// SanitizeExpenses trims categories and drops lines with an empty category or
// an amount that is not a finite number >= 0.
func SanitizeExpenses(in []model.ExpenseInput) []model.ExpenseInput {
	out := make([]model.ExpenseInput, 0, len(in))
	for _, e := range in {
		category := strings.TrimSpace(e.Category)
		if category == "" || !validAmount(e.Amount) {
			continue
		}
		out = append(out, model.ExpenseInput{Category: category, Amount: e.Amount})
	}
	return out
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// CoerceNumber converts a JSON value to a float: numbers as-is, numeric
// strings parsed. Anything else, including null and "", is NaN.
func CoerceNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return math.NaN()
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f == nil {
			return math.NaN()
		}
		return *f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if v, err := strconv.ParseFloat(s, 64); err == nil && s != "" {
			return v
		}
	}
	return math.NaN()
}

var amountCleaner = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".")

// ParseAmount reads an amount typed by a person: "1234.5", "1234,5",
// "1 234,50" and a trailing "€" are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	return strconv.ParseFloat(amountCleaner.Replace(s), 64)
}
