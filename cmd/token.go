package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/debtfree/internal/auth"

	"github.com/spf13/cobra"
)

var flagTokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API (needs auth.jwt_secret)",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not set (DEBTFREE_JWT_SECRET)")
	}
	userID := flagUser
	if userID == "" {
		userID = cfg.Auth.DevUser
	}
	if userID == "" {
		return errors.New("pass --user")
	}

	token, err := auth.Issue(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, userID, flagTokenTTL, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
