package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/theirongolddev/debtfree/internal/model"
)

// GetSubscription returns the mirrored entitlement snapshot for userID.
func (s *Store) GetSubscription(ctx context.Context, userID string) (model.EntitlementSnapshot, error) {
	if err := s.ready(ctx); err != nil {
		return model.EntitlementSnapshot{}, err
	}
	var (
		snap       model.EntitlementSnapshot
		status     string
		graceUntil sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT status, grace_until FROM subscriptions WHERE user_id = ?`),
		userID,
	).Scan(&status, &graceUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EntitlementSnapshot{}, ErrNotFound
	}
	if err != nil {
		return model.EntitlementSnapshot{}, fmt.Errorf("get subscription: %w", err)
	}
	snap.Status = model.SubscriptionStatus(status)
	if graceUntil.Valid {
		t := fromMillis(graceUntil.Int64)
		snap.GraceUntil = &t
	}
	return snap, nil
}

// PutSubscription replaces the mirrored snapshot for userID.
func (s *Store) PutSubscription(ctx context.Context, userID string, snap model.EntitlementSnapshot) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	var graceUntil sql.NullInt64
	if snap.GraceUntil != nil {
		graceUntil = sql.NullInt64{Int64: toMillis(*snap.GraceUntil), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO subscriptions (user_id, status, grace_until, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			status = excluded.status,
			grace_until = excluded.grace_until,
			updated_at = excluded.updated_at`),
		userID, string(snap.Status), graceUntil, toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("put subscription: %w", err)
	}
	return nil
}
