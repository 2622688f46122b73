// Package fast runs 30-day financial fast campaigns and their daily logs.
package fast

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/store"
)

// MaxReflectionRunes bounds a day's reflection text.
const MaxReflectionRunes = 2000

// Store is the persistence the manager needs.
type Store interface {
	CreateCampaign(ctx context.Context, c model.FastCampaign, days []model.FastDay) error
	InsertDays(ctx context.Context, days []model.FastDay) error
	ActiveCampaign(ctx context.Context, userID string) (model.FastCampaign, error)
	GetCampaign(ctx context.Context, userID, campaignID string) (model.FastCampaign, error)
	ListCampaigns(ctx context.Context, userID string) ([]model.FastSummary, error)
	CampaignDays(ctx context.Context, campaignID string) ([]model.FastDay, error)
	CloseCampaign(ctx context.Context, userID, campaignID string) error
	UpdateDay(ctx context.Context, campaignID string, dayIndex int, upd model.DayUpdate) (model.FastDay, error)
	OrphanedCampaigns(ctx context.Context) ([]model.FastCampaign, error)
}

// Manager is the Fast Campaign Manager.
type Manager struct {
	store Store
	// Now supplies the server clock; campaign dates are midnights in its location.
	Now   func() time.Time
	NewID func() string
}

// NewManager returns a manager over s.
func NewManager(s Store) *Manager {
	return &Manager{store: s, Now: time.Now, NewID: uuid.NewString}
}

func (m *Manager) today() time.Time {
	now := m.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// CreateCampaign starts a campaign today with its 30 day rows.
func (m *Manager) CreateCampaign(ctx context.Context, userID string, in model.NewFastInput) (model.FastSnapshot, error) {
	categories := NormalizeCategories(in.Categories)
	if len(categories) == 0 {
		return model.FastSnapshot{}, apperr.Validation(apperr.CodeCategoriesRequired, "at least one category is required")
	}
	spend := in.EstimatedMonthlySpend
	if math.IsNaN(spend) || math.IsInf(spend, 0) || spend <= 0 {
		return model.FastSnapshot{}, apperr.Validation(apperr.CodeAmountInvalid, "estimated monthly spend must be a positive number")
	}

	switch _, err := m.store.ActiveCampaign(ctx, userID); {
	case err == nil:
		return model.FastSnapshot{}, fastExists()
	case !errors.Is(err, store.ErrNotFound):
		return model.FastSnapshot{}, apperr.Persistence("check active campaign", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = model.DefaultFastTitle
	}
	start := m.today()
	c := model.FastCampaign{
		ID:                    m.NewID(),
		UserID:                userID,
		Title:                 title,
		Categories:            categories,
		Intention:             strings.TrimSpace(in.Intention),
		AdditionalNotes:       strings.TrimSpace(in.AdditionalNotes),
		HabitName:             strings.TrimSpace(in.HabitName),
		HabitReminder:         strings.TrimSpace(in.HabitReminder),
		CategoryBudgets:       FilterBudgets(in.CategoryBudgets, categories),
		EstimatedMonthlySpend: spend,
		StartDate:             start,
		EndDate:               model.DayDate(start, model.FastLength),
		IsActive:              true,
		CreatedAt:             m.Now(),
	}
	days := m.buildDays(c)

	if err := m.store.CreateCampaign(ctx, c, days); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return model.FastSnapshot{}, fastExists()
		}
		return model.FastSnapshot{}, apperr.Persistence("create campaign", err)
	}
	return model.FastSnapshot{Fast: &c, Days: days}, nil
}

func fastExists() error {
	return apperr.Conflict(apperr.CodeFastExists, "an active financial fast already exists")
}

func (m *Manager) buildDays(c model.FastCampaign) []model.FastDay {
	days := make([]model.FastDay, model.FastLength)
	for i := range days {
		days[i] = model.FastDay{
			ID:         m.NewID(),
			CampaignID: c.ID,
			DayIndex:   i + 1,
			Date:       model.DayDate(c.StartDate, i+1),
		}
	}
	return days
}

// GetActiveCampaign returns the user's active campaign with its days, or a
// snapshot with nil Fast and no days. An active campaign found without day
// rows is repaired before returning.
func (m *Manager) GetActiveCampaign(ctx context.Context, userID string) (model.FastSnapshot, error) {
	c, err := m.store.ActiveCampaign(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.FastSnapshot{Days: []model.FastDay{}}, nil
	}
	if err != nil {
		return model.FastSnapshot{}, apperr.Persistence("load active campaign", err)
	}
	days, err := m.loadDays(ctx, c)
	if err != nil {
		return model.FastSnapshot{}, err
	}
	return model.FastSnapshot{Fast: &c, Days: days}, nil
}

// GetCampaign returns a campaign owned by userID in any state.
func (m *Manager) GetCampaign(ctx context.Context, userID, campaignID string) (model.FastSnapshot, error) {
	c, err := m.store.GetCampaign(ctx, userID, campaignID)
	if errors.Is(err, store.ErrNotFound) {
		return model.FastSnapshot{}, notFound()
	}
	if err != nil {
		return model.FastSnapshot{}, apperr.Persistence("load campaign", err)
	}
	days, err := m.loadDays(ctx, c)
	if err != nil {
		return model.FastSnapshot{}, err
	}
	return model.FastSnapshot{Fast: &c, Days: days}, nil
}

// loadDays reads a campaign's days, inserting any missing rows of an active
// campaign first.
func (m *Manager) loadDays(ctx context.Context, c model.FastCampaign) ([]model.FastDay, error) {
	days, err := m.store.CampaignDays(ctx, c.ID)
	if err != nil {
		return nil, apperr.Persistence("load campaign days", err)
	}
	if !c.IsActive || len(days) == model.FastLength {
		return days, nil
	}
	log.Printf("repairing campaign %s: %d of %d days present", c.ID, len(days), model.FastLength)
	if err := m.store.InsertDays(ctx, m.buildDays(c)); err != nil {
		return nil, apperr.Persistence("repair campaign days", err)
	}
	days, err = m.store.CampaignDays(ctx, c.ID)
	if err != nil {
		return nil, apperr.Persistence("load campaign days", err)
	}
	return days, nil
}

// ListCampaigns returns the user's campaigns, newest first.
func (m *Manager) ListCampaigns(ctx context.Context, userID string) ([]model.FastSummary, error) {
	list, err := m.store.ListCampaigns(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("list campaigns", err)
	}
	if list == nil {
		list = []model.FastSummary{}
	}
	return list, nil
}

// CloseCampaign deactivates a campaign owned by userID. Closing an already
// closed campaign succeeds.
func (m *Manager) CloseCampaign(ctx context.Context, userID, campaignID string) error {
	if strings.TrimSpace(campaignID) == "" {
		return notFound()
	}
	err := m.store.CloseCampaign(ctx, userID, campaignID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return apperr.Persistence("close campaign", err)
	}
	return nil
}

// UpdateDay sets a day's respected flag and/or reflection. Only days of the
// caller's active campaign dated today or earlier may change. Applying the
// same update twice leaves the same state.
func (m *Manager) UpdateDay(ctx context.Context, userID, campaignID string, dayIndex int, upd model.DayUpdate) (model.FastDay, error) {
	if dayIndex < 1 || dayIndex > model.FastLength {
		return model.FastDay{}, apperr.Validation(apperr.CodeDayInvalid, "day index must be between 1 and 30")
	}
	if upd.Reflection != nil {
		trimmed := strings.TrimSpace(*upd.Reflection)
		if utf8.RuneCountInString(trimmed) > MaxReflectionRunes {
			return model.FastDay{}, apperr.Validation(apperr.CodeReflectionTooLong, "reflection is too long")
		}
		upd.Reflection = &trimmed
	}

	c, err := m.store.GetCampaign(ctx, userID, campaignID)
	if errors.Is(err, store.ErrNotFound) {
		return model.FastDay{}, notFound()
	}
	if err != nil {
		return model.FastDay{}, apperr.Persistence("load campaign", err)
	}
	if !c.IsActive {
		return model.FastDay{}, apperr.Conflict(apperr.CodeFastClosed, "the financial fast is closed")
	}
	if model.DayDate(c.StartDate, dayIndex).After(m.today()) {
		return model.FastDay{}, apperr.Validation(apperr.CodeDayInFuture, "this day has not started yet")
	}
	if _, err := m.loadDays(ctx, c); err != nil {
		return model.FastDay{}, err
	}

	day, err := m.store.UpdateDay(ctx, c.ID, dayIndex, upd)
	if err != nil {
		return model.FastDay{}, apperr.Persistence("update day", err)
	}
	return day, nil
}

// RepairOrphans inserts day rows for every active campaign that has none.
// It returns how many campaigns were repaired.
func (m *Manager) RepairOrphans(ctx context.Context) (int, error) {
	orphans, err := m.store.OrphanedCampaigns(ctx)
	if err != nil {
		return 0, apperr.Persistence("list orphaned campaigns", err)
	}
	for i, c := range orphans {
		if err := m.store.InsertDays(ctx, m.buildDays(c)); err != nil {
			return i, apperr.Persistence("repair campaign days", err)
		}
		log.Printf("repaired campaign %s for user %s", c.ID, c.UserID)
	}
	return len(orphans), nil
}

func notFound() error {
	return apperr.NotFound(apperr.CodeFastNotFound, "financial fast not found")
}

// NormalizeCategories trims, drops empties and removes duplicates, keeping
// first-seen order.
func NormalizeCategories(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// FilterBudgets keeps finite non-negative targets for listed categories.
func FilterBudgets(in map[string]float64, categories []string) map[string]float64 {
	out := make(map[string]float64)
	if len(in) == 0 {
		return out
	}
	listed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		listed[c] = struct{}{}
	}
	for k, v := range in {
		k = strings.TrimSpace(k)
		if _, ok := listed[k]; !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		out[k] = v
	}
	return out
}
