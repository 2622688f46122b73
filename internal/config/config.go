package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all debtfree configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Auth       AuthConfig       `toml:"auth"`
	Billing    BillingConfig    `toml:"billing"`
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr              string        `toml:"addr" env:"DEBTFREE_ADDR"`
	ReadHeaderTimeout time.Duration `toml:"read_header_timeout" env:"DEBTFREE_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout" env:"DEBTFREE_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `toml:"driver" env:"DEBTFREE_DB_DRIVER"`
	Path   string `toml:"path,omitempty" env:"DEBTFREE_DB_PATH"`
	DSN    string `toml:"dsn,omitempty" env:"DEBTFREE_DB_DSN"`
}

// AuthConfig holds bearer-token settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret,omitempty" env:"DEBTFREE_JWT_SECRET"`
	Issuer    string `toml:"issuer,omitempty" env:"DEBTFREE_JWT_ISSUER"`
	Audience  string `toml:"audience,omitempty" env:"DEBTFREE_JWT_AUDIENCE"`
	DevUser   string `toml:"dev_user,omitempty" env:"DEBTFREE_DEV_USER"`
}

// Billing modes.
const (
	BillingLocal  = "local"
	BillingRemote = "remote"
	BillingOpen   = "open"
)

// BillingConfig selects where subscription snapshots come from.
type BillingConfig struct {
	Mode    string `toml:"mode" env:"DEBTFREE_BILLING_MODE"`
	BaseURL string `toml:"base_url,omitempty" env:"DEBTFREE_BILLING_URL"`
	APIKey  string `toml:"api_key,omitempty" env:"DEBTFREE_BILLING_API_KEY"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Locale   string `toml:"locale" env:"DEBTFREE_LOCALE"`
	Timezone string `toml:"timezone,omitempty" env:"DEBTFREE_TIMEZONE"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"DEBTFREE_THEME"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `toml:"otel_endpoint,omitempty" env:"DEBTFREE_OTEL_ENDPOINT"`
	ServiceName string `toml:"service_name" env:"DEBTFREE_OTEL_SERVICE_NAME"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:              "127.0.0.1:8787",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(DataDir(), "debtfree.db"),
		},
		Billing: BillingConfig{
			Mode: BillingLocal,
		},
		General: GeneralConfig{
			Locale: "fr-FR",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "debtfree",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "debtfree")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "debtfree")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "debtfree")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "debtfree")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the XDG dir or an explicit flag
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes cfg to path, creating its directory.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // see LoadFile
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Location resolves General.Timezone; empty means the host zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.General.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	return loc, nil
}

// DatabaseSource returns the driver and source string for store.Open.
func (c Config) DatabaseSource() (driver, source string) {
	driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if driver == "postgres" {
		return driver, c.Database.DSN
	}
	return "sqlite", c.Database.Path
}

// Validate reports settings that make the server unusable.
func (c Config) Validate() error {
	switch c.Billing.Mode {
	case BillingLocal, BillingOpen:
	case BillingRemote:
		if strings.TrimSpace(c.Billing.BaseURL) == "" {
			return fmt.Errorf("billing.base_url is required in remote mode")
		}
	default:
		return fmt.Errorf("unknown billing mode %q", c.Billing.Mode)
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
