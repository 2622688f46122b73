package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/theirongolddev/debtfree/internal/model"
)

const campaignColumns = `id, user_id, title, categories, intention, additional_notes,
	habit_name, habit_reminder, category_budgets, estimated_monthly_spend,
	start_date, end_date, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanCampaign(row rowScanner) (model.FastCampaign, error) {
	var (
		c                   model.FastCampaign
		categories, budgets string
		startDate, endDate  string
		createdAt           int64
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.Title, &categories, &c.Intention, &c.AdditionalNotes,
		&c.HabitName, &c.HabitReminder, &budgets, &c.EstimatedMonthlySpend,
		&startDate, &endDate, &c.IsActive, &createdAt,
	)
	if err != nil {
		return model.FastCampaign{}, err
	}
	if err := json.Unmarshal([]byte(categories), &c.Categories); err != nil {
		return model.FastCampaign{}, fmt.Errorf("decode categories: %w", err)
	}
	if err := json.Unmarshal([]byte(budgets), &c.CategoryBudgets); err != nil {
		return model.FastCampaign{}, fmt.Errorf("decode category budgets: %w", err)
	}
	if c.CategoryBudgets == nil {
		c.CategoryBudgets = map[string]float64{}
	}
	if c.StartDate, err = s.parseDate(startDate); err != nil {
		return model.FastCampaign{}, fmt.Errorf("decode start date: %w", err)
	}
	if c.EndDate, err = s.parseDate(endDate); err != nil {
		return model.FastCampaign{}, fmt.Errorf("decode end date: %w", err)
	}
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

// CreateCampaign inserts the campaign and its day rows in one transaction.
// A second active campaign for the same user is rejected by the partial
// unique index and reported as ErrAlreadyExists.
func (s *Store) CreateCampaign(ctx context.Context, c model.FastCampaign, days []model.FastDay) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	categories, err := json.Marshal(c.Categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	budgets, err := json.Marshal(c.CategoryBudgets)
	if err != nil {
		return fmt.Errorf("encode category budgets: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO fast_campaigns (`+campaignColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			c.ID, c.UserID, c.Title, string(categories), c.Intention, c.AdditionalNotes,
			c.HabitName, c.HabitReminder, string(budgets), c.EstimatedMonthlySpend,
			formatDate(c.StartDate), formatDate(c.EndDate), c.IsActive, toMillis(c.CreatedAt),
		)
		if err != nil {
			return err
		}
		return s.insertDays(ctx, tx, days)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (s *Store) insertDays(ctx context.Context, tx *sql.Tx, days []model.FastDay) error {
	for _, d := range days {
		_, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO fast_days (id, campaign_id, day_index, date, respected, reflection)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (campaign_id, day_index) DO NOTHING`),
			d.ID, d.CampaignID, d.DayIndex, formatDate(d.Date), d.Respected, d.Reflection,
		)
		if err != nil {
			return fmt.Errorf("insert fast day %d: %w", d.DayIndex, err)
		}
	}
	return nil
}

// InsertDays adds missing day rows to an existing campaign.
func (s *Store) InsertDays(ctx context.Context, days []model.FastDay) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.insertDays(ctx, tx, days)
	})
}

// ActiveCampaign returns the user's most recent active campaign.
func (s *Store) ActiveCampaign(ctx context.Context, userID string) (model.FastCampaign, error) {
	if err := s.ready(ctx); err != nil {
		return model.FastCampaign{}, err
	}
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+campaignColumns+` FROM fast_campaigns
		WHERE user_id = ? AND is_active = ?
		ORDER BY created_at DESC LIMIT 1`),
		userID, true,
	)
	c, err := s.scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FastCampaign{}, ErrNotFound
	}
	if err != nil {
		return model.FastCampaign{}, fmt.Errorf("get active campaign: %w", err)
	}
	return c, nil
}

// GetCampaign returns one campaign owned by userID in any state.
func (s *Store) GetCampaign(ctx context.Context, userID, campaignID string) (model.FastCampaign, error) {
	if err := s.ready(ctx); err != nil {
		return model.FastCampaign{}, err
	}
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+campaignColumns+` FROM fast_campaigns WHERE id = ? AND user_id = ?`),
		campaignID, userID,
	)
	c, err := s.scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FastCampaign{}, ErrNotFound
	}
	if err != nil {
		return model.FastCampaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// ListCampaigns returns the user's campaigns, newest first, with respected-day counts.
func (s *Store) ListCampaigns(ctx context.Context, userID string) ([]model.FastSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+campaignColumns+` FROM fast_campaigns WHERE user_id = ? ORDER BY created_at DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	var out []model.FastSummary
	for rows.Next() {
		c, err := s.scanCampaign(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, model.FastSummary{Campaign: c})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	_ = rows.Close()

	counts, err := s.respectedCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].RespectedDays = counts[out[i].Campaign.ID]
	}
	return out, nil
}

func (s *Store) respectedCounts(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT d.campaign_id, COUNT(*)
		FROM fast_days d
		JOIN fast_campaigns c ON c.id = d.campaign_id
		WHERE c.user_id = ? AND d.respected = ?
		GROUP BY d.campaign_id`),
		userID, true,
	)
	if err != nil {
		return nil, fmt.Errorf("count respected days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan respected count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// CampaignDays returns a campaign's days ordered by day index.
func (s *Store) CampaignDays(ctx context.Context, campaignID string) ([]model.FastDay, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id, campaign_id, day_index, date, respected, reflection
		FROM fast_days WHERE campaign_id = ? ORDER BY day_index ASC`),
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list fast days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	days := []model.FastDay{}
	for rows.Next() {
		var d model.FastDay
		var date string
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DayIndex, &date, &d.Respected, &d.Reflection); err != nil {
			return nil, fmt.Errorf("scan fast day: %w", err)
		}
		if d.Date, err = s.parseDate(date); err != nil {
			return nil, fmt.Errorf("decode fast day date: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// CloseCampaign marks a campaign owned by userID inactive. Day rows are kept.
func (s *Store) CloseCampaign(ctx context.Context, userID, campaignID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE fast_campaigns SET is_active = ? WHERE id = ? AND user_id = ?`),
		false, campaignID, userID,
	)
	if err != nil {
		return fmt.Errorf("close campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close campaign: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDay applies upd to one day of a campaign. Ownership is checked by
// the caller; a missing day row is reported as ErrNotFound.
func (s *Store) UpdateDay(ctx context.Context, campaignID string, dayIndex int, upd model.DayUpdate) (model.FastDay, error) {
	if err := s.ready(ctx); err != nil {
		return model.FastDay{}, err
	}
	var d model.FastDay
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if upd.Respected != nil {
			if _, err := tx.ExecContext(ctx,
				s.q(`UPDATE fast_days SET respected = ? WHERE campaign_id = ? AND day_index = ?`),
				*upd.Respected, campaignID, dayIndex,
			); err != nil {
				return fmt.Errorf("update respected: %w", err)
			}
		}
		if upd.Reflection != nil {
			if _, err := tx.ExecContext(ctx,
				s.q(`UPDATE fast_days SET reflection = ? WHERE campaign_id = ? AND day_index = ?`),
				*upd.Reflection, campaignID, dayIndex,
			); err != nil {
				return fmt.Errorf("update reflection: %w", err)
			}
		}

		var date string
		err := tx.QueryRowContext(ctx,
			s.q(`SELECT id, campaign_id, day_index, date, respected, reflection
			FROM fast_days WHERE campaign_id = ? AND day_index = ?`),
			campaignID, dayIndex,
		).Scan(&d.ID, &d.CampaignID, &d.DayIndex, &date, &d.Respected, &d.Reflection)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read fast day: %w", err)
		}
		d.Date, err = s.parseDate(date)
		return err
	})
	if err != nil {
		return model.FastDay{}, err
	}
	return d, nil
}

// OrphanedCampaigns returns active campaigns that have no day rows.
func (s *Store) OrphanedCampaigns(ctx context.Context) ([]model.FastCampaign, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+campaignColumns+` FROM fast_campaigns c
		WHERE c.is_active = ?
		  AND NOT EXISTS (SELECT 1 FROM fast_days d WHERE d.campaign_id = c.id)`),
		true,
	)
	if err != nil {
		return nil, fmt.Errorf("list orphaned campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.FastCampaign
	for rows.Next() {
		c, err := s.scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
