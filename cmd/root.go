package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/debtfree/internal/billing"
	"github.com/theirongolddev/debtfree/internal/cli"
	"github.com/theirongolddev/debtfree/internal/config"
	"github.com/theirongolddev/debtfree/internal/debt"
	"github.com/theirongolddev/debtfree/internal/entitlement"
	"github.com/theirongolddev/debtfree/internal/fast"
	"github.com/theirongolddev/debtfree/internal/ledger"
	"github.com/theirongolddev/debtfree/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagEnvFile string
	flagUser    string
	flagDB      string
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "debtfree",
	Short: "Budget, financial fasts, and a path out of debt",
	Long:  "Track a monthly budget, run 30-day financial fasts, and project how long until you are debt-free.",
	RunE:  runFastShow,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.Path(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded before the environment")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User id (defaults to auth.dev_user, then $USER)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite path override")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig resolves the config file, .env, and environment, then applies
// command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Resolve(flagConfig, flagEnvFile)
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.Database.Driver = string(store.SQLite)
		cfg.Database.Path = flagDB
	}
	if cfg.General.Locale != "" {
		cli.Locale = cfg.General.Locale
	}
	return cfg, cfg.Validate()
}

// runtime bundles the services every command works through.
type runtime struct {
	cfg       config.Config
	loc       *time.Location
	store     *store.Store
	ledger    *ledger.Ledger
	fasts     *fast.Manager
	projector *debt.Projector
	gate      *entitlement.Gate
}

func (rt *runtime) Close() {
	if rt != nil && rt.store != nil {
		_ = rt.store.Close()
	}
}

// now is the wall clock in the configured zone; calendar months and fast
// days are derived from it.
func (rt *runtime) now() time.Time {
	return time.Now().In(rt.loc)
}

func openRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	driver, source := cfg.DatabaseSource()
	st, err := store.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	st.SetLocation(loc)

	rt := &runtime{cfg: cfg, loc: loc, store: st}

	rt.ledger = ledger.New(st)
	rt.ledger.Now = rt.now
	rt.fasts = fast.NewManager(st)
	rt.fasts.Now = rt.now
	rt.projector = debt.NewProjector(rt.ledger, rt.fasts)
	rt.projector.Now = rt.now

	src, err := entitlementSource(cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	rt.gate = entitlement.NewGate(src)
	return rt, nil
}

func entitlementSource(cfg config.Config, st *store.Store) (entitlement.Source, error) {
	switch cfg.Billing.Mode {
	case config.BillingOpen:
		return entitlement.Open, nil
	case config.BillingRemote:
		client := billing.NewClient(cfg.Billing.BaseURL, cfg.Billing.APIKey)
		if client == nil {
			return nil, errors.New("billing.base_url is required in remote mode")
		}
		return client, nil
	default:
		return entitlement.StoreSource{Store: st}, nil
	}
}

// userID picks --user, then auth.dev_user, then the login name.
func (rt *runtime) userID() (string, error) {
	for _, v := range []string{flagUser, rt.cfg.Auth.DevUser, os.Getenv("USER")} {
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", errors.New("no user: pass --user or set auth.dev_user")
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
