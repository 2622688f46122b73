package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8787" || cfg.Billing.Mode != BillingLocal || cfg.Database.Driver != "sqlite" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if Exists() {
		t.Fatal("Exists() = true for empty config dir")
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.Server.ShutdownTimeout = 3 * time.Second
	cfg.Auth.DevUser = "local"
	cfg.General.Timezone = "UTC"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Server.ShutdownTimeout != 3*time.Second || got.Auth.DevUser != "local" || got.General.Timezone != "UTC" {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestLoadRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\naddr = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	file := "[server]\naddr = \"0.0.0.0:9000\"\n\n[billing]\nmode = \"open\"\n"
	if err := os.WriteFile(path, []byte(file), 0o600); err != nil {
		t.Fatal(err)
	}
	dotenv := filepath.Join(dir, ".env")
	if err := os.WriteFile(dotenv, []byte("DEBTFREE_DEV_USER=from-dotenv\nDEBTFREE_THEME=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEBTFREE_THEME", "from-env")
	t.Setenv("DEBTFREE_SHUTDOWN_TIMEOUT", "2s")
	t.Cleanup(func() { _ = os.Unsetenv("DEBTFREE_DEV_USER") })

	cfg, err := Resolve(path, dotenv)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" || cfg.Billing.Mode != BillingOpen {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Auth.DevUser != "from-dotenv" {
		t.Fatalf("dev user = %q, want from-dotenv", cfg.Auth.DevUser)
	}
	if cfg.Appearance.Theme != "from-env" {
		t.Fatalf("theme = %q, environment should beat .env", cfg.Appearance.Theme)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Fatalf("shutdown timeout = %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("unset env var overwrote default: %s", cfg.Server.ReadHeaderTimeout)
	}
}

func TestResolveMissingDotEnv(t *testing.T) {
	dir := t.TempDir()
	if _, err := Resolve(filepath.Join(dir, "none.toml"), filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"remote without url", func(c *Config) { c.Billing.Mode = BillingRemote }, true},
		{"remote with url", func(c *Config) { c.Billing.Mode = BillingRemote; c.Billing.BaseURL = "https://billing" }, false},
		{"unknown mode", func(c *Config) { c.Billing.Mode = "stripe" }, true},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"bad timezone", func(c *Config) { c.General.Timezone = "Mars/Olympus" }, true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestDatabaseSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Path = "/tmp/x.db"
	if d, s := cfg.DatabaseSource(); d != "sqlite" || s != "/tmp/x.db" {
		t.Fatalf("sqlite source = %s %s", d, s)
	}
	cfg.Database.Driver = "Postgres"
	cfg.Database.DSN = "postgres://localhost/debtfree"
	if d, s := cfg.DatabaseSource(); d != "postgres" || s != cfg.Database.DSN {
		t.Fatalf("postgres source = %s %s", d, s)
	}
}
