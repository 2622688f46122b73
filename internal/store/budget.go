package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/debtfree/internal/model"

	"github.com/google/uuid"
)

// GetBudget loads the budget header and expense lines for (userID, month).
// found is false when no record exists.
func (s *Store) GetBudget(ctx context.Context, userID string, month time.Time) (budget model.Budget, found bool, err error) {
	if err := s.ready(ctx); err != nil {
		return model.Budget{}, false, err
	}
	budget = model.Budget{
		Month:    month.Format(model.MonthLayout),
		Expenses: []model.Expense{},
	}

	var budgetID string
	err = s.db.QueryRowContext(ctx,
		s.q(`SELECT id, monthly_income FROM budgets WHERE user_id = ? AND month = ?`),
		userID, formatDate(model.MonthStart(month)),
	).Scan(&budgetID, &budget.MonthlyIncome)
	if errors.Is(err, sql.ErrNoRows) {
		return budget, false, nil
	}
	if err != nil {
		return model.Budget{}, false, fmt.Errorf("get budget: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id, category, amount FROM budget_expenses WHERE budget_id = ? ORDER BY position ASC`),
		budgetID,
	)
	if err != nil {
		return model.Budget{}, false, fmt.Errorf("list budget expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Amount); err != nil {
			return model.Budget{}, false, fmt.Errorf("scan budget expense: %w", err)
		}
		budget.Expenses = append(budget.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return model.Budget{}, false, fmt.Errorf("list budget expenses: %w", err)
	}
	return budget, true, nil
}

// SaveBudget upserts the header for (userID, month) and replaces its expense
// lines, all in one transaction.
func (s *Store) SaveBudget(ctx context.Context, userID string, month time.Time, income float64, expenses []model.ExpenseInput) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	now := toMillis(s.now())

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var budgetID string
		err := tx.QueryRowContext(ctx,
			s.q(`INSERT INTO budgets (id, user_id, month, monthly_income, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, month) DO UPDATE SET
				monthly_income = excluded.monthly_income,
				updated_at = excluded.updated_at
			RETURNING id`),
			uuid.NewString(), userID, formatDate(model.MonthStart(month)), income, now, now,
		).Scan(&budgetID)
		if err != nil {
			return fmt.Errorf("upsert budget: %w", err)
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM budget_expenses WHERE budget_id = ?`), budgetID); err != nil {
			return fmt.Errorf("clear budget expenses: %w", err)
		}

		for i, e := range expenses {
			_, err := tx.ExecContext(ctx,
				s.q(`INSERT INTO budget_expenses (id, budget_id, position, category, amount) VALUES (?, ?, ?, ?, ?)`),
				uuid.NewString(), budgetID, i, e.Category, e.Amount,
			)
			if err != nil {
				return fmt.Errorf("insert budget expense: %w", err)
			}
		}
		return nil
	})
}

// ListBudgetMonths returns the months with a stored budget, newest first.
func (s *Store) ListBudgetMonths(ctx context.Context, userID string) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT month FROM budgets WHERE user_id = ? ORDER BY month DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list budget months: %w", err)
	}
	defer func() { _ = rows.Close() }()

	months := []string{}
	for rows.Next() {
		var stored string
		if err := rows.Scan(&stored); err != nil {
			return nil, fmt.Errorf("scan budget month: %w", err)
		}
		if len(stored) >= len(model.MonthLayout) {
			stored = stored[:len(model.MonthLayout)]
		}
		months = append(months, stored)
	}
	return months, rows.Err()
}
