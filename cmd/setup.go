package cmd

import (
	"fmt"

	"github.com/theirongolddev/debtfree/internal/config"
	"github.com/theirongolddev/debtfree/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Seed from the file only; env overrides must not be written back.
	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		return err
	}

	if _, err := tui.RunSetup(cfg, flagConfig); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfig)
	fmt.Println("  Run `debtfree setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
