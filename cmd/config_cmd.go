// Package cmd implements the debtfree CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/debtfree/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", flagConfig)
	if _, err := os.Stat(flagConfig); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:          %s\n", cfg.Server.Addr)
	fmt.Printf("    Shutdown timeout: %s\n", cfg.Server.ShutdownTimeout)
	fmt.Println()

	fmt.Println("  [Database]")
	driver, source := cfg.DatabaseSource()
	fmt.Printf("    Driver: %s\n", driver)
	if driver == "postgres" {
		fmt.Printf("    DSN:    %s\n", maskSecret(source))
	} else {
		fmt.Printf("    Path:   %s\n", source)
	}
	fmt.Println()

	fmt.Println("  [Auth]")
	if cfg.Auth.JWTSecret != "" {
		fmt.Printf("    JWT secret: %s\n", maskSecret(cfg.Auth.JWTSecret))
	} else {
		fmt.Println("    JWT secret: not configured")
	}
	if cfg.Auth.DevUser != "" {
		fmt.Printf("    Dev user:   %s\n", cfg.Auth.DevUser)
	}
	fmt.Println()

	fmt.Println("  [Billing]")
	fmt.Printf("    Mode: %s\n", cfg.Billing.Mode)
	if cfg.Billing.Mode == config.BillingRemote {
		fmt.Printf("    URL:  %s\n", cfg.Billing.BaseURL)
		if cfg.Billing.APIKey != "" {
			fmt.Printf("    Key:  %s\n", maskSecret(cfg.Billing.APIKey))
		}
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Locale:   %s\n", cfg.General.Locale)
	loc, _ := cfg.Location()
	fmt.Printf("    Timezone: %s\n", loc)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	if cfg.Telemetry.Endpoint != "" {
		fmt.Println("  [Telemetry]")
		fmt.Printf("    OTLP endpoint: %s\n", cfg.Telemetry.Endpoint)
		fmt.Printf("    Service name:  %s\n", cfg.Telemetry.ServiceName)
		fmt.Println()
	}

	fmt.Println("  Run `debtfree setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:6] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:2] + "..."
	}
	return "****"
}
