// Package entitlement decides whether a user may use premium tools.
package entitlement

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/model"
)

// ErrNoSnapshot is returned by a Source that has no record for the user.
var ErrNoSnapshot = errors.New("entitlement: no subscription snapshot")

// Source looks up a user's subscription snapshot.
type Source interface {
	Lookup(ctx context.Context, userID string) (model.EntitlementSnapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, userID string) (model.EntitlementSnapshot, error)

func (f SourceFunc) Lookup(ctx context.Context, userID string) (model.EntitlementSnapshot, error) {
	return f(ctx, userID)
}

// HasAccess reports whether snap grants premium access at now: active and
// trialing always do, past_due only while the grace period has not ended.
func HasAccess(snap *model.EntitlementSnapshot, now time.Time) bool {
	if snap == nil {
		return false
	}
	switch snap.Status {
	case model.StatusActive, model.StatusTrialing:
		return true
	case model.StatusPastDue:
		return snap.GraceUntil != nil && snap.GraceUntil.After(now)
	default:
		return false
	}
}

// Gate combines a Source with HasAccess. Lookup failures fail closed.
type Gate struct {
	Source Source
	Now    func() time.Time
}

// NewGate returns a gate reading from src.
func NewGate(src Source) *Gate {
	return &Gate{Source: src, Now: time.Now}
}

// Allowed reports whether userID may use premium tools.
func (g *Gate) Allowed(ctx context.Context, userID string) bool {
	if g == nil || g.Source == nil {
		return false
	}
	snap, err := g.Source.Lookup(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			log.Printf("entitlement lookup for %s: %v", userID, err)
		}
		return false
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return HasAccess(&snap, now())
}

// Check returns an EntitlementRequired error unless userID has access.
func (g *Gate) Check(ctx context.Context, userID string) error {
	if !g.Allowed(ctx, userID) {
		return apperr.EntitlementRequired("subscription required")
	}
	return nil
}

// Open grants every user an active snapshot. It backs single-user installs.
var Open Source = SourceFunc(func(context.Context, string) (model.EntitlementSnapshot, error) {
	return model.EntitlementSnapshot{Status: model.StatusActive}, nil
})
