package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/model"
)

func TestHasAccess(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		snap *model.EntitlementSnapshot
		want bool
	}{
		{"nil snapshot", nil, false},
		{"active", &model.EntitlementSnapshot{Status: model.StatusActive}, true},
		{"trialing", &model.EntitlementSnapshot{Status: model.StatusTrialing}, true},
		{"past due in grace", &model.EntitlementSnapshot{Status: model.StatusPastDue, GraceUntil: &future}, true},
		{"past due grace ended", &model.EntitlementSnapshot{Status: model.StatusPastDue, GraceUntil: &past}, false},
		{"past due no grace", &model.EntitlementSnapshot{Status: model.StatusPastDue}, false},
		{"canceled with grace", &model.EntitlementSnapshot{Status: model.StatusCanceled, GraceUntil: &future}, false},
		{"incomplete", &model.EntitlementSnapshot{Status: model.StatusIncomplete}, false},
		{"unpaid", &model.EntitlementSnapshot{Status: model.StatusUnpaid}, false},
		{"unknown status", &model.EntitlementSnapshot{Status: "paused"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasAccess(tt.snap, now); got != tt.want {
				t.Fatalf("HasAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGateFailsClosed(t *testing.T) {
	failing := SourceFunc(func(context.Context, string) (model.EntitlementSnapshot, error) {
		return model.EntitlementSnapshot{}, errors.New("billing unreachable")
	})
	g := NewGate(failing)
	err := g.Check(context.Background(), "u1")
	if !apperr.HasCode(err, apperr.CodeSubscriptionRequired) {
		t.Fatalf("Check() err = %v, want subscription_required", err)
	}

	missing := SourceFunc(func(context.Context, string) (model.EntitlementSnapshot, error) {
		return model.EntitlementSnapshot{}, ErrNoSnapshot
	})
	if NewGate(missing).Allowed(context.Background(), "u1") {
		t.Fatal("missing snapshot must not grant access")
	}

	var nilGate *Gate
	if nilGate.Allowed(context.Background(), "u1") {
		t.Fatal("nil gate must not grant access")
	}
}

func TestGateOpenSource(t *testing.T) {
	if err := NewGate(Open).Check(context.Background(), "anyone"); err != nil {
		t.Fatalf("open source should grant access: %v", err)
	}
}
