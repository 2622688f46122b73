package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/auth"
	"github.com/theirongolddev/debtfree/internal/debt"
	"github.com/theirongolddev/debtfree/internal/entitlement"
	"github.com/theirongolddev/debtfree/internal/fast"
	"github.com/theirongolddev/debtfree/internal/ledger"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/store"
)

const testSecret = "daemon-test-secret"

type testServer struct {
	handler http.Handler
	service *Service
	store   *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	verifier, err := auth.NewVerifier(testSecret, "", "")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	budgets := ledger.New(s)
	fasts := fast.NewManager(s)
	svc := New(Config{EventsBuffer: 10}, Deps{
		Budgets: budgets,
		Debt:    debt.NewProjector(budgets, fasts),
		Fasts:   fasts,
		Gate:    entitlement.NewGate(entitlement.StoreSource{Store: s}),
		Auth:    verifier,
	})
	return &testServer{handler: svc.Handler(), service: svc, store: s}
}

func (ts *testServer) subscribe(t *testing.T, userID string, status model.SubscriptionStatus) {
	t.Helper()
	if err := ts.store.PutSubscription(context.Background(), userID, model.EntitlementSnapshot{Status: status}); err != nil {
		t.Fatalf("put subscription: %v", err)
	}
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.Issue(testSecret, "", "", userID, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doRaw(t *testing.T, handler http.Handler, token, method, path string, payload any, expectedStatus int) []byte {
	t.Helper()

	var body bytes.Buffer
	switch p := payload.(type) {
	case nil:
	case string:
		body.WriteString(p)
	default:
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	respBytes, err := io.ReadAll(recorder.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if recorder.Code != expectedStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, expectedStatus, recorder.Code, respBytes)
	}
	return respBytes
}

func doJSON[T any](t *testing.T, handler http.Handler, token, method, path string, payload any, expectedStatus int) T {
	t.Helper()

	var value T
	respBytes := doRaw(t, handler, token, method, path, payload, expectedStatus)
	if len(respBytes) == 0 {
		return value
	}
	if err := json.Unmarshal(respBytes, &value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return value
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	body := doRaw(t, ts.handler, "", http.MethodGet, "/healthz", nil, http.StatusOK)
	if strings.TrimSpace(string(body)) != "ok" {
		t.Fatalf("healthz body = %q", body)
	}
}

func TestUnauthenticated(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/budget", "/debt-free/summary", "/financial-fast", "/v1/events"} {
		got := doJSON[errorBody](t, ts.handler, "", http.MethodGet, path, nil, http.StatusUnauthorized)
		if got.Error != "unauthenticated" {
			t.Fatalf("%s error = %q", path, got.Error)
		}
	}
	doJSON[errorBody](t, ts.handler, "garbage", http.MethodGet, "/budget", nil, http.StatusUnauthorized)
}

func TestEntitlementGatesPremiumRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "u1")

	for _, path := range []string{"/budget", "/budget/months", "/debt-free/summary"} {
		got := doJSON[errorBody](t, ts.handler, token, http.MethodGet, path, nil, http.StatusPaymentRequired)
		if got.Error != "subscription_required" {
			t.Fatalf("%s error = %q", path, got.Error)
		}
	}
	ts.subscribe(t, "u1", model.StatusCanceled)
	doJSON[errorBody](t, ts.handler, token, http.MethodGet, "/budget", nil, http.StatusPaymentRequired)

	// fast tracking only needs an identity
	doJSON[model.FastSnapshot](t, ts.handler, token, http.MethodGet, "/financial-fast", nil, http.StatusOK)

	ts.subscribe(t, "u1", model.StatusTrialing)
	doJSON[model.Budget](t, ts.handler, token, http.MethodGet, "/budget", nil, http.StatusOK)
}

func TestBudgetAndSummaryFlow(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "u1")
	ts.subscribe(t, "u1", model.StatusActive)

	empty := doJSON[model.Budget](t, ts.handler, token, http.MethodGet, "/budget?month=bogus", nil, http.StatusOK)
	if empty.MonthlyIncome != 0 || empty.Expenses == nil || len(empty.Expenses) != 0 {
		t.Fatalf("empty budget = %+v", empty)
	}

	payload := `{"monthlyIncome": 3000, "expenses": [
		{"category": " Crédit auto ", "amount": 400},
		{"category": "Loisirs", "amount": "200"},
		{"category": "", "amount": 10},
		{"category": "Texte", "amount": "abc"},
		{"category": "Nul", "amount": null},
		{"category": 12, "amount": 5},
		{"category": "Négatif", "amount": -3}
	]}`
	saved := doJSON[model.Budget](t, ts.handler, token, http.MethodPost, "/budget", payload, http.StatusOK)
	if len(saved.Expenses) != 2 || saved.Expenses[0].Category != "Crédit auto" || saved.Expenses[1].Amount != 200 {
		t.Fatalf("saved = %+v", saved)
	}
	if saved.Expenses[0].ID == "" {
		t.Fatal("expense lines should carry ids")
	}

	got := doJSON[model.Budget](t, ts.handler, token, http.MethodGet, "/budget", nil, http.StatusOK)
	if got.Month != saved.Month || got.MonthlyIncome != 3000 || len(got.Expenses) != 2 {
		t.Fatalf("read back = %+v", got)
	}

	summary := doJSON[model.DebtSummary](t, ts.handler, token, http.MethodGet, "/debt-free/summary", nil, http.StatusOK)
	if summary.TotalDebtMonthlyPayments != 400 || summary.TotalExpenses != 600 || summary.AvailableMarginMonthly != 2400 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.EstimatedTotalDebtAmount != 4800 || summary.TotalAvailableForDebt != 2800 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.EstimatedMonthsToFreedom != 2 || summary.EstimatedMonthsToFreedomWithFast != 2 {
		t.Fatalf("months = %d / %d", summary.EstimatedMonthsToFreedom, summary.EstimatedMonthsToFreedomWithFast)
	}

	doJSON[model.Budget](t, ts.handler, token, http.MethodPost, "/budget", map[string]any{"month": "2025-12", "monthlyIncome": 1}, http.StatusOK)
	months := doJSON[map[string][]string](t, ts.handler, token, http.MethodGet, "/budget/months", nil, http.StatusOK)
	if len(months["months"]) != 2 || months["months"][1] != "2025-12" {
		t.Fatalf("months = %v", months)
	}
}

func TestSaveBudgetRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "u1")
	ts.subscribe(t, "u1", model.StatusActive)

	for _, payload := range []any{
		map[string]any{"monthlyIncome": -1},
		map[string]any{"monthlyIncome": "abc"},
		map[string]any{"expenses": []any{}},
	} {
		got := doJSON[errorBody](t, ts.handler, token, http.MethodPost, "/budget", payload, http.StatusBadRequest)
		if got.Error != "income_invalid" {
			t.Fatalf("payload %v: error = %q", payload, got.Error)
		}
	}
	got := doJSON[errorBody](t, ts.handler, token, http.MethodPost, "/budget", "{not json", http.StatusBadRequest)
	if got.Error != "bad_request" {
		t.Fatalf("malformed body error = %q", got.Error)
	}
}

func TestSaveBudgetNullIncomeKeepsStoredBudget(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "u1")
	ts.subscribe(t, "u1", model.StatusActive)

	doJSON[model.Budget](t, ts.handler, token, http.MethodPost, "/budget",
		`{"monthlyIncome": 3000, "expenses": [{"category": "Loyer", "amount": 900}]}`, http.StatusOK)

	got := doJSON[errorBody](t, ts.handler, token, http.MethodPost, "/budget",
		`{"monthlyIncome": null, "expenses": [{"category": "Nul", "amount": null}]}`, http.StatusBadRequest)
	if got.Error != "income_invalid" {
		t.Fatalf("null income error = %q", got.Error)
	}

	stored := doJSON[model.Budget](t, ts.handler, token, http.MethodGet, "/budget", nil, http.StatusOK)
	if stored.MonthlyIncome != 3000 || len(stored.Expenses) != 1 || stored.Expenses[0].Category != "Loyer" {
		t.Fatalf("stored budget changed: %+v", stored)
	}
}

func TestFastLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := tokenFor(t, "u1")

	none := doJSON[map[string]json.RawMessage](t, ts.handler, token, http.MethodGet, "/financial-fast", nil, http.StatusOK)
	if string(none["fast"]) != "null" || string(none["days"]) != "[]" {
		t.Fatalf("no fast = %s / %s", none["fast"], none["days"])
	}

	bad := doJSON[errorBody](t, ts.handler, token, http.MethodPost, "/financial-fast",
		map[string]any{"categories": []string{}, "estimatedMonthlySpend": 100}, http.StatusBadRequest)
	if bad.Error != "categories_required" {
		t.Fatalf("error = %q", bad.Error)
	}
	bad = doJSON[errorBody](t, ts.handler, token, http.MethodPost, "/financial-fast",
		map[string]any{"categories": []string{"Café"}, "estimatedMonthlySpend": "0"}, http.StatusBadRequest)
	if bad.Error != "amount_invalid" {
		t.Fatalf("error = %q", bad.Error)
	}

	create := map[string]any{
		"categories":            []string{"Restaurants", "Café"},
		"intention":             "Rembourser",
		"categoryBudgets":       map[string]any{"Café": "20"},
		"estimatedMonthlySpend": 300,
	}
	created := doJSON[model.FastSnapshot](t, ts.handler, token, http.MethodPost, "/financial-fast", create, http.StatusOK)
	if created.Fast == nil || len(created.Days) != model.FastLength || created.Fast.CategoryBudgets["Café"] != 20 {
		t.Fatalf("created = %+v", created)
	}
	id := created.Fast.ID

	dup := doJSON[errorBody](t, ts.handler, token, http.MethodPost, "/financial-fast", create, http.StatusBadRequest)
	if dup.Error != "fast_exists" {
		t.Fatalf("duplicate error = %q", dup.Error)
	}

	day := doJSON[map[string]model.FastDay](t, ts.handler, token, http.MethodPatch, "/financial-fast",
		map[string]any{"action": "update_day", "fastId": id, "dayIndex": 1, "respected": true, "reflection": "ok"}, http.StatusOK)
	if !day["day"].Respected || day["day"].Reflection != "ok" {
		t.Fatalf("day = %+v", day["day"])
	}
	future := doJSON[errorBody](t, ts.handler, token, http.MethodPatch, "/financial-fast",
		map[string]any{"action": "update_day", "fastId": id, "dayIndex": 30, "respected": true}, http.StatusBadRequest)
	if future.Error != "day_in_future" {
		t.Fatalf("future error = %q", future.Error)
	}
	invalid := doJSON[errorBody](t, ts.handler, token, http.MethodPatch, "/financial-fast",
		map[string]any{"action": "update_day", "fastId": id, "dayIndex": 1.5}, http.StatusBadRequest)
	if invalid.Error != "day_invalid" {
		t.Fatalf("fractional index error = %q", invalid.Error)
	}

	other := tokenFor(t, "u2")
	nf := doJSON[errorBody](t, ts.handler, other, http.MethodPatch, "/financial-fast",
		map[string]any{"action": "close", "fastId": id}, http.StatusNotFound)
	if nf.Error != "fast_not_found" {
		t.Fatalf("foreign close error = %q", nf.Error)
	}
	doJSON[errorBody](t, ts.handler, other, http.MethodGet, "/financial-fast/"+id, nil, http.StatusNotFound)

	unsupported := doJSON[errorBody](t, ts.handler, token, http.MethodPatch, "/financial-fast",
		map[string]any{"action": "pause", "fastId": id}, http.StatusBadRequest)
	if unsupported.Error != "unsupported_action" {
		t.Fatalf("unsupported error = %q", unsupported.Error)
	}

	closed := doJSON[map[string]bool](t, ts.handler, token, http.MethodPatch, "/financial-fast",
		map[string]any{"action": "close", "fastId": id}, http.StatusOK)
	if !closed["success"] {
		t.Fatalf("close = %v", closed)
	}

	byID := doJSON[model.FastSnapshot](t, ts.handler, token, http.MethodGet, "/financial-fast/"+id, nil, http.StatusOK)
	if byID.Fast == nil || byID.Fast.IsActive || byID.RespectedDays() != 1 {
		t.Fatalf("closed campaign = %+v", byID.Fast)
	}
	history := doJSON[map[string][]model.FastSummary](t, ts.handler, token, http.MethodGet, "/financial-fast/history", nil, http.StatusOK)
	if len(history["fasts"]) != 1 || history["fasts"][0].RespectedDays != 1 {
		t.Fatalf("history = %+v", history)
	}

	doJSON[model.FastSnapshot](t, ts.handler, token, http.MethodPost, "/financial-fast", create, http.StatusOK)
}

func TestEventsAreScopedToUser(t *testing.T) {
	ts := newTestServer(t)
	ts.subscribe(t, "u1", model.StatusActive)
	u1, u2 := tokenFor(t, "u1"), tokenFor(t, "u2")

	doJSON[model.Budget](t, ts.handler, u1, http.MethodPost, "/budget", map[string]any{"monthlyIncome": 100}, http.StatusOK)

	mine := doJSON[[]Event](t, ts.handler, u1, http.MethodGet, "/v1/events", nil, http.StatusOK)
	if len(mine) != 1 || mine[0].Type != EventBudgetSaved {
		t.Fatalf("u1 events = %+v", mine)
	}
	theirs := doJSON[[]Event](t, ts.handler, u2, http.MethodGet, "/v1/events", nil, http.StatusOK)
	if len(theirs) != 0 {
		t.Fatalf("u2 sees %d events", len(theirs))
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, Deps{})

	s.publish("u1", EventBudgetSaved, nil)
	s.publish("u1", EventBudgetSaved, nil)
	s.publish("u1", EventBudgetSaved, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

type failingFasts struct {
	FastService
}

func (failingFasts) GetActiveCampaign(context.Context, string) (model.FastSnapshot, error) {
	return model.FastSnapshot{}, apperr.Persistence("load active campaign", errors.New("disk I/O error at page 7"))
}

func (failingFasts) ListCampaigns(context.Context, string) ([]model.FastSummary, error) {
	panic("boom")
}

func TestServerErrorsAreHiddenAndCounted(t *testing.T) {
	svc := New(Config{DevUser: "local"}, Deps{Fasts: failingFasts{}})
	h := svc.Handler()

	body := doRaw(t, h, "", http.MethodGet, "/financial-fast", nil, http.StatusInternalServerError)
	if strings.Contains(string(body), "disk") {
		t.Fatalf("internal detail leaked: %s", body)
	}
	var got errorBody
	_ = json.Unmarshal(body, &got)
	if got.Error != "persistence_error" {
		t.Fatalf("error = %q", got.Error)
	}

	doJSON[errorBody](t, h, "", http.MethodGet, "/financial-fast/history", nil, http.StatusInternalServerError)

	status := doJSON[Status](t, h, "", http.MethodGet, "/v1/status", nil, http.StatusOK)
	if status.ServerErrors != 2 || !strings.Contains(status.LastError, "disk") {
		t.Fatalf("status = %+v", status)
	}
}

func TestDevUserWithoutAuthenticator(t *testing.T) {
	svc := New(Config{DevUser: "local"}, Deps{Gate: entitlement.NewGate(entitlement.Open)})
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "dev.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	svc.deps.Budgets = ledger.New(s)

	got := doJSON[model.Budget](t, svc.Handler(), "", http.MethodGet, "/budget", nil, http.StatusOK)
	if got.Expenses == nil {
		t.Fatal("expected empty expenses slice")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	svc := New(Config{ShutdownTimeout: time.Second}, Deps{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
