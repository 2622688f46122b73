package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/debtfree/internal/entitlement"
	"github.com/theirongolddev/debtfree/internal/model"
)

func TestNewClientRequiresBaseURL(t *testing.T) {
	if NewClient("  ", "key") != nil {
		t.Fatal("expected nil client for empty base URL")
	}
}

func TestLookupParsesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/v1/users/u%201/subscription" {
			t.Errorf("unexpected path %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"past_due","grace_until":"2026-11-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL+"/", "secret").Lookup(context.Background(), "u 1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	want := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	if snap.Status != model.StatusPastDue || snap.GraceUntil == nil || !snap.GraceUntil.Equal(want) {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestLookupStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, entitlement.ErrNoSnapshot},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := NewClient(srv.URL, "").Lookup(context.Background(), "u1")
		srv.Close()
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestLookupRejectsUnknownStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"paused"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").Lookup(context.Background(), "u1"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestLookupFailsClosedThroughGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gate := entitlement.NewGate(NewClient(srv.URL, ""))
	if gate.Allowed(context.Background(), "u1") {
		t.Fatal("gate must deny access when billing is unavailable")
	}
}
