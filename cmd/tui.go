package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/debtfree/internal/tui"
	"github.com/theirongolddev/debtfree/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive fast tracker",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	rt, userID, err := userRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	profile := termenv.NewOutput(os.Stdout).EnvColorProfile()
	lipgloss.SetColorProfile(profile)
	theme.SetActive(rt.cfg.Appearance.Theme, profile)

	app := tui.NewApp(tui.Services{
		Fasts:   rt.fasts,
		Budgets: rt.ledger,
		Debt:    rt.projector,
		Gate:    rt.gate,
	}, userID, rt.now)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
