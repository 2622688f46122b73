// Package billing fetches subscription snapshots from the billing service.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/debtfree/internal/entitlement"
	"github.com/theirongolddev/debtfree/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnauthorized indicates the billing API key was rejected.
	ErrUnauthorized = errors.New("billing: unauthorized (api key invalid)")
	// ErrRateLimited indicates the billing API rate limit was hit.
	ErrRateLimited = errors.New("billing: rate limited")
)

// Client reads subscription state over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a client for baseURL, or nil if baseURL is empty.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{},
	}
}

type subscriptionResponse struct {
	Status     string  `json:"status"`
	GraceUntil *string `json:"grace_until"`
}

// Lookup implements entitlement.Source. A 404 means the user has no
// subscription and is reported as entitlement.ErrNoSnapshot.
func (c *Client) Lookup(ctx context.Context, userID string) (model.EntitlementSnapshot, error) {
	body, err := c.get(ctx, "/v1/users/"+url.PathEscape(userID)+"/subscription")
	if err != nil {
		return model.EntitlementSnapshot{}, err
	}

	var raw subscriptionResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.EntitlementSnapshot{}, fmt.Errorf("billing: parsing subscription: %w", err)
	}

	snap := model.EntitlementSnapshot{Status: model.SubscriptionStatus(strings.ToLower(strings.TrimSpace(raw.Status)))}
	if !snap.Status.Valid() {
		return model.EntitlementSnapshot{}, fmt.Errorf("billing: unknown subscription status %q", raw.Status)
	}
	if raw.GraceUntil != nil && *raw.GraceUntil != "" {
		t, err := time.Parse(time.RFC3339, *raw.GraceUntil)
		if err != nil {
			return model.EntitlementSnapshot{}, fmt.Errorf("billing: parsing grace_until: %w", err)
		}
		snap.GraceUntil = &t
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("billing: creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "debtfree/1.0")

	//nolint:gosec // base URL comes from operator configuration
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, entitlement.ErrNoSnapshot
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("billing: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("billing: reading response: %w", err)
	}
	return body, nil
}

var _ entitlement.Source = (*Client)(nil)
