package entitlement

import (
	"context"
	"errors"

	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/store"
)

type subscriptionReader interface {
	GetSubscription(ctx context.Context, userID string) (model.EntitlementSnapshot, error)
}

// StoreSource reads the local subscriptions mirror table.
type StoreSource struct {
	Store subscriptionReader
}

func (s StoreSource) Lookup(ctx context.Context, userID string) (model.EntitlementSnapshot, error) {
	snap, err := s.Store.GetSubscription(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.EntitlementSnapshot{}, ErrNoSnapshot
	}
	return snap, err
}
