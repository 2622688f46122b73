package cmd

import (
	"fmt"

	"github.com/theirongolddev/debtfree/internal/cli"

	"github.com/spf13/cobra"
)

var debtCmd = &cobra.Command{
	Use:     "debt",
	Aliases: []string{"debt-free"},
	Short:   "Project months until debt-free",
	RunE:    runDebtSummary,
}

var debtSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Project months until debt-free",
	RunE:  runDebtSummary,
}

func init() {
	debtCmd.AddCommand(debtSummaryCmd)
	rootCmd.AddCommand(debtCmd)
}

func runDebtSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, userID, err := gatedRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	summary, err := rt.projector.GetDebtSummary(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(cli.RenderDebtSummary(summary))
	return nil
}
