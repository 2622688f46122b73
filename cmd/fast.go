package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/debtfree/internal/cli"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/tui"

	"github.com/spf13/cobra"
)

var (
	flagFastTitle       string
	flagFastCategories  []string
	flagFastSpend       float64
	flagFastBudgets     []string
	flagFastIntention   string
	flagFastNotes       string
	flagFastHabit       string
	flagFastReminder    string
	flagFastInteractive bool

	flagDayRespected  bool
	flagDayMissed     bool
	flagDayReflection string
)

var fastCmd = &cobra.Command{
	Use:   "fast",
	Short: "Show the active 30-day financial fast",
	RunE:  runFastShow,
}

var fastShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active 30-day financial fast",
	RunE:  runFastShow,
}

var fastStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a 30-day financial fast",
	Example: `  debtfree fast start --category Restaurants --category Loisirs --spend 300
  debtfree fast start --interactive`,
	RunE: runFastStart,
}

var fastCloseCmd = &cobra.Command{
	Use:   "close [campaign-id]",
	Short: "End a fast (default: the active one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFastClose,
}

var fastDayCmd = &cobra.Command{
	Use:   "day <day-index>",
	Short: "Mark a day respected or missed, or write its reflection",
	Example: `  debtfree fast day 7 --respected
  debtfree fast day 7 --reflection "Cooked at home all week"`,
	Args: cobra.ExactArgs(1),
	RunE: runFastDay,
}

var fastHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every fast, newest first",
	RunE:  runFastHistory,
}

var fastRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Recreate missing day rows for every user's campaigns",
	RunE:  runFastRepair,
}

func init() {
	f := fastStartCmd.Flags()
	f.StringVar(&flagFastTitle, "title", "", "Campaign title (default: "+model.DefaultFastTitle+")")
	f.StringArrayVarP(&flagFastCategories, "category", "c", nil, "Category to fast from (repeatable)")
	f.Float64Var(&flagFastSpend, "spend", 0, "Estimated monthly spend on these categories")
	f.StringArrayVar(&flagFastBudgets, "budget", nil, "Per-category target as Category=amount (repeatable)")
	f.StringVar(&flagFastIntention, "intention", "", "Why you are fasting")
	f.StringVar(&flagFastNotes, "notes", "", "Additional notes")
	f.StringVar(&flagFastHabit, "habit", "", "Habit to build")
	f.StringVar(&flagFastReminder, "reminder", "", "Habit reminder")
	f.BoolVarP(&flagFastInteractive, "interactive", "i", false, "Fill the campaign in a form")

	fastDayCmd.Flags().BoolVar(&flagDayRespected, "respected", false, "Mark the day respected")
	fastDayCmd.Flags().BoolVar(&flagDayMissed, "missed", false, "Mark the day missed")
	fastDayCmd.Flags().StringVar(&flagDayReflection, "reflection", "", "Reflection text (empty clears it)")
	fastDayCmd.MarkFlagsMutuallyExclusive("respected", "missed")

	fastCmd.AddCommand(fastShowCmd, fastStartCmd, fastCloseCmd, fastDayCmd, fastHistoryCmd, fastRepairCmd)
	rootCmd.AddCommand(fastCmd)
}

// userRuntime opens the runtime for commands that need a user but no
// subscription.
func userRuntime() (*runtime, string, error) {
	rt, err := openRuntime()
	if err != nil {
		return nil, "", err
	}
	userID, err := rt.userID()
	if err != nil {
		rt.Close()
		return nil, "", err
	}
	return rt, userID, nil
}

func runFastShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.fasts.GetActiveCampaign(ctx, userID)
	if err != nil {
		return err
	}
	if snap.Fast == nil {
		fmt.Println("\n  No fast in progress.")
		fmt.Println("  Start one with `debtfree fast start --interactive`.")
		return nil
	}
	fmt.Println()
	fmt.Println(cli.RenderFast(snap, rt.now()))
	return nil
}

func runFastStart(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var in model.NewFastInput
	if flagFastInteractive {
		in, err = fastInputFromForm(ctx, rt, userID)
	} else {
		in, err = fastInputFromFlags()
	}
	if err != nil {
		return err
	}

	snap, err := rt.fasts.CreateCampaign(ctx, userID, in)
	if err != nil {
		return err
	}
	progressf("  Started %q, %s to %s\n", snap.Fast.Title,
		cli.FormatDate(snap.Fast.StartDate), cli.FormatDate(snap.Fast.EndDate))
	fmt.Println()
	fmt.Println(cli.RenderFast(snap, rt.now()))
	return nil
}

func fastInputFromFlags() (model.NewFastInput, error) {
	budgets := make(map[string]float64, len(flagFastBudgets))
	for _, b := range flagFastBudgets {
		lines, err := parseExpenseFlags([]string{b})
		if err != nil {
			return model.NewFastInput{}, fmt.Errorf("invalid --budget %q: want Category=amount", b)
		}
		budgets[lines[0].Category] = lines[0].Amount
	}
	return model.NewFastInput{
		Title:                 flagFastTitle,
		Categories:            flagFastCategories,
		Intention:             flagFastIntention,
		AdditionalNotes:       flagFastNotes,
		HabitName:             flagFastHabit,
		HabitReminder:         flagFastReminder,
		CategoryBudgets:       budgets,
		EstimatedMonthlySpend: flagFastSpend,
	}, nil
}

// fastInputFromForm offers the current budget's categories when the
// subscription allows reading it.
func fastInputFromForm(ctx context.Context, rt *runtime, userID string) (model.NewFastInput, error) {
	var suggestions []string
	if rt.gate.Allowed(ctx, userID) {
		if b, err := rt.ledger.GetBudget(ctx, userID, ""); err == nil {
			for _, e := range b.Expenses {
				suggestions = append(suggestions, e.Category)
			}
		}
	}

	vals := tui.FastFormValues{Title: flagFastTitle, Categories: flagFastCategories}
	if flagFastSpend > 0 {
		vals.Spend = strconv.FormatFloat(flagFastSpend, 'f', -1, 64)
	}
	if err := tui.NewFastForm(&vals, suggestions).RunWithContext(ctx); err != nil {
		return model.NewFastInput{}, err
	}
	return vals.Input()
}

func runFastClose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	campaignID, err := campaignArg(ctx, rt, userID, args)
	if err != nil {
		return err
	}
	if err := rt.fasts.CloseCampaign(ctx, userID, campaignID); err != nil {
		return err
	}
	progressf("  Closed fast %s\n", campaignID)
	return nil
}

// campaignArg returns the explicit id or the active campaign's.
func campaignArg(ctx context.Context, rt *runtime, userID string, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	snap, err := rt.fasts.GetActiveCampaign(ctx, userID)
	if err != nil {
		return "", err
	}
	if snap.Fast == nil {
		return "", errors.New("no fast in progress")
	}
	return snap.Fast.ID, nil
}

func runFastDay(cmd *cobra.Command, args []string) error {
	dayIndex, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid day index %q", args[0])
	}

	var upd model.DayUpdate
	switch {
	case flagDayRespected:
		v := true
		upd.Respected = &v
	case flagDayMissed:
		v := false
		upd.Respected = &v
	}
	if cmd.Flags().Changed("reflection") {
		upd.Reflection = &flagDayReflection
	}
	if upd.Respected == nil && upd.Reflection == nil {
		return errors.New("nothing to update: pass --respected, --missed, or --reflection")
	}

	ctx := cmd.Context()
	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	campaignID, err := campaignArg(ctx, rt, userID, nil)
	if err != nil {
		return err
	}
	day, err := rt.fasts.UpdateDay(ctx, userID, campaignID, dayIndex, upd)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(cli.RenderFastDays([]model.FastDay{day}, rt.now()))
	return nil
}

func runFastHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	list, err := rt.fasts.ListCampaigns(ctx, userID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("\n  No fasts yet.")
		return nil
	}
	fmt.Println()
	fmt.Println(cli.RenderHistory(list))
	return nil
}

func runFastRepair(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.fasts.RepairOrphans(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("  Repaired %d campaign(s)\n", n)
	return nil
}
