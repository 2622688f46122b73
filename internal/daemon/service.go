// Package daemon provides the long-running HTTP API service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/debtfree/internal/model"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	EventsBuffer      int
	// DevUser authenticates every request as this user when no
	// Authenticator is configured. Intended for single-user local installs.
	DevUser string
}

// BudgetService is the Budget Ledger surface the API exposes.
type BudgetService interface {
	GetBudget(ctx context.Context, userID, monthSlug string) (model.Budget, error)
	SaveBudget(ctx context.Context, userID, monthSlug string, income float64, expenses []model.ExpenseInput) (model.Budget, error)
	Months(ctx context.Context, userID string) ([]string, error)
}

// DebtService computes freedom projections.
type DebtService interface {
	GetDebtSummary(ctx context.Context, userID string) (model.DebtSummary, error)
}

// FastService is the Fast Campaign Manager surface the API exposes.
type FastService interface {
	CreateCampaign(ctx context.Context, userID string, in model.NewFastInput) (model.FastSnapshot, error)
	GetActiveCampaign(ctx context.Context, userID string) (model.FastSnapshot, error)
	GetCampaign(ctx context.Context, userID, campaignID string) (model.FastSnapshot, error)
	ListCampaigns(ctx context.Context, userID string) ([]model.FastSummary, error)
	CloseCampaign(ctx context.Context, userID, campaignID string) error
	UpdateDay(ctx context.Context, userID, campaignID string, dayIndex int, upd model.DayUpdate) (model.FastDay, error)
}

// Gate rejects users without premium access.
type Gate interface {
	Check(ctx context.Context, userID string) error
}

// Authenticator resolves the caller's user id from a request.
type Authenticator interface {
	FromRequest(r *http.Request) (string, error)
}

// Deps are the services behind the API.
type Deps struct {
	Budgets BudgetService
	Debt    DebtService
	Fasts   FastService
	Gate    Gate
	Auth    Authenticator
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	UptimeSec       int64     `json:"uptime_sec"`
	Requests        int64     `json:"requests"`
	ServerErrors    int64     `json:"server_errors"`
	LastError       string    `json:"last_error,omitempty"`
	LastErrorAt     time.Time `json:"last_error_at,omitzero"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	deps Deps
	now  func() time.Time

	mu           sync.RWMutex
	startedAt    time.Time
	requests     int64
	serverErrors int64
	lastError    string
	lastErrorAt  time.Time
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]subscriber
}

// New returns a new daemon service with the provided config.
func New(cfg Config, deps Deps) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	return &Service{
		cfg:       cfg,
		deps:      deps,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]subscriber),
	}
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.Handle("GET /v1/events", s.authed(s.handleEvents))
	mux.Handle("GET /v1/stream", s.authed(s.handleStream))

	mux.Handle("GET /budget", s.gated(s.handleGetBudget))
	mux.Handle("POST /budget", s.gated(s.handleSaveBudget))
	mux.Handle("GET /budget/months", s.gated(s.handleBudgetMonths))
	mux.Handle("GET /debt-free/summary", s.gated(s.handleDebtSummary))

	mux.Handle("GET /financial-fast", s.authed(s.handleGetFast))
	mux.Handle("POST /financial-fast", s.authed(s.handleCreateFast))
	mux.Handle("PATCH /financial-fast", s.authed(s.handlePatchFast))
	mux.Handle("GET /financial-fast/history", s.authed(s.handleFastHistory))
	mux.Handle("GET /financial-fast/{id}", s.authed(s.handleGetFastByID))

	return s.recoverer(s.traced(s.logged(mux)))
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("daemon listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Printf("debtfree api listening on %s", ln.Addr())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) recordRequest(status int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if status >= http.StatusInternalServerError {
		s.serverErrors++
		if err != nil {
			s.lastError = err.Error()
			s.lastErrorAt = s.now()
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		UptimeSec:       int64(s.now().Sub(s.startedAt).Seconds()),
		Requests:        s.requests,
		ServerErrors:    s.serverErrors,
		LastError:       s.lastError,
		LastErrorAt:     s.lastErrorAt,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}
