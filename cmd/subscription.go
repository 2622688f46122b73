package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/debtfree/internal/config"
	"github.com/theirongolddev/debtfree/internal/entitlement"
	"github.com/theirongolddev/debtfree/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagSubStatus     string
	flagSubGraceUntil string
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Show the subscription state and whether premium tools are unlocked",
	RunE:  runSubscriptionShow,
}

var subscriptionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the subscription state",
	RunE:  runSubscriptionShow,
}

var subscriptionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Write the local subscription mirror (billing.mode = local)",
	Example: `  debtfree subscription set --status active
  debtfree subscription set --status past_due --grace-until 2026-11-01T00:00:00Z`,
	RunE: runSubscriptionSet,
}

func init() {
	subscriptionSetCmd.Flags().StringVar(&flagSubStatus, "status", "", "active, trialing, past_due, canceled, incomplete, or unpaid")
	subscriptionSetCmd.Flags().StringVar(&flagSubGraceUntil, "grace-until", "", "RFC 3339 end of the grace period")
	_ = subscriptionSetCmd.MarkFlagRequired("status")

	subscriptionCmd.AddCommand(subscriptionShowCmd, subscriptionSetCmd)
	rootCmd.AddCommand(subscriptionCmd)
}

func runSubscriptionShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Printf("  User:    %s\n", userID)
	fmt.Printf("  Source:  %s\n", rt.cfg.Billing.Mode)

	snap, err := rt.gate.Source.Lookup(ctx, userID)
	switch {
	case errors.Is(err, entitlement.ErrNoSnapshot):
		fmt.Println("  Status:  none")
	case err != nil:
		fmt.Printf("  Status:  unavailable (%v)\n", err)
	default:
		fmt.Printf("  Status:  %s\n", snap.Status)
		if snap.GraceUntil != nil {
			fmt.Printf("  Grace:   until %s\n", snap.GraceUntil.In(rt.loc).Format(time.RFC3339))
		}
	}

	if rt.gate.Allowed(ctx, userID) {
		fmt.Println("  Access:  unlocked")
	} else {
		fmt.Println("  Access:  locked (budget and debt tools need an active subscription)")
	}
	return nil
}

func runSubscriptionSet(cmd *cobra.Command, _ []string) error {
	status := model.SubscriptionStatus(flagSubStatus)
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", flagSubStatus)
	}
	snap := model.EntitlementSnapshot{Status: status}
	if flagSubGraceUntil != "" {
		t, err := time.Parse(time.RFC3339, flagSubGraceUntil)
		if err != nil {
			return fmt.Errorf("invalid --grace-until: %w", err)
		}
		snap.GraceUntil = &t
	}

	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.cfg.Billing.Mode != config.BillingLocal {
		return fmt.Errorf("billing.mode is %q; the local mirror is only read in %q mode", rt.cfg.Billing.Mode, config.BillingLocal)
	}
	if err := rt.store.PutSubscription(cmd.Context(), userID, snap); err != nil {
		return err
	}
	progressf("  Subscription for %s set to %s\n", userID, status)
	return nil
}
