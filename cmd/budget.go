package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/cli"
	"github.com/theirongolddev/debtfree/internal/ledger"
	"github.com/theirongolddev/debtfree/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagBudgetMonth    string
	flagBudgetIncome   float64
	flagBudgetExpenses []string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show the monthly budget",
	RunE:  runBudgetShow,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the monthly budget",
	Example: `  debtfree budget set --income 3000 --expense "Loyer=900" --expense "Crédit auto=400"
  debtfree budget set --month 2026-11 --income 3100`,
	RunE: runBudgetSet,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the monthly budget",
	RunE:  runBudgetShow,
}

var budgetMonthsCmd = &cobra.Command{
	Use:   "months",
	Short: "List months with a saved budget",
	RunE:  runBudgetMonths,
}

func init() {
	budgetCmd.PersistentFlags().StringVarP(&flagBudgetMonth, "month", "m", "", "Month as YYYY-MM (default: current)")
	budgetSetCmd.Flags().Float64Var(&flagBudgetIncome, "income", 0, "Monthly income")
	budgetSetCmd.Flags().StringArrayVarP(&flagBudgetExpenses, "expense", "e", nil, "Expense line as Category=amount (repeatable)")
	_ = budgetSetCmd.MarkFlagRequired("income")

	budgetCmd.AddCommand(budgetShowCmd)
	budgetCmd.AddCommand(budgetSetCmd)
	budgetCmd.AddCommand(budgetMonthsCmd)
	rootCmd.AddCommand(budgetCmd)
}

// gatedRuntime opens the runtime and resolves the user, refusing users
// without an active subscription.
func gatedRuntime(ctx context.Context) (*runtime, string, error) {
	rt, err := openRuntime()
	if err != nil {
		return nil, "", err
	}
	userID, err := rt.userID()
	if err != nil {
		rt.Close()
		return nil, "", err
	}
	if err := rt.gate.Check(ctx, userID); err != nil {
		rt.Close()
		return nil, "", fmt.Errorf("%w (see `debtfree subscription`)", err)
	}
	return rt, userID, nil
}

func checkMonthFlag() error {
	if flagBudgetMonth != "" && !ledger.ValidMonth(flagBudgetMonth) {
		return apperr.Validation(apperr.CodeMonthInvalid, fmt.Sprintf("invalid --month %q: want YYYY-MM", flagBudgetMonth))
	}
	return nil
}

func runBudgetShow(cmd *cobra.Command, _ []string) error {
	if err := checkMonthFlag(); err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, userID, err := gatedRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	b, err := rt.ledger.GetBudget(ctx, userID, flagBudgetMonth)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(cli.RenderBudget(b))
	return nil
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	if err := checkMonthFlag(); err != nil {
		return err
	}
	expenses, err := parseExpenseFlags(flagBudgetExpenses)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, userID, err := gatedRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	b, err := rt.ledger.SaveBudget(ctx, userID, flagBudgetMonth, flagBudgetIncome, expenses)
	if err != nil {
		return err
	}
	progressf("  Saved budget for %s (%d lines)\n", b.Month, len(b.Expenses))
	fmt.Println()
	fmt.Println(cli.RenderBudget(b))
	return nil
}

func runBudgetMonths(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, userID, err := gatedRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	months, err := rt.ledger.Months(ctx, userID)
	if err != nil {
		return err
	}
	if len(months) == 0 {
		fmt.Println("\n  No budgets saved yet.")
		return nil
	}
	for _, m := range months {
		fmt.Printf("  %s\n", m)
	}
	return nil
}

// parseExpenseFlags reads "Category=amount" pairs. The last '=' splits, so
// categories may contain one.
func parseExpenseFlags(values []string) ([]model.ExpenseInput, error) {
	out := make([]model.ExpenseInput, 0, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid --expense %q: want Category=amount", v)
		}
		amount, err := ledger.ParseAmount(v[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid --expense %q: %w", v, err)
		}
		out = append(out, model.ExpenseInput{Category: strings.TrimSpace(v[:i]), Amount: amount})
	}
	return out, nil
}
