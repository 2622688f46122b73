package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/debtfree/internal/config"
	"github.com/theirongolddev/debtfree/internal/fast"
	"github.com/theirongolddev/debtfree/internal/ledger"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the first-run form.
type SetupValues struct {
	Theme       string
	Locale      string
	Timezone    string
	BillingMode string
}

// SetupValuesFrom seeds the form with cfg's current settings.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Theme:       cfg.Appearance.Theme,
		Locale:      cfg.General.Locale,
		Timezone:    cfg.General.Timezone,
		BillingMode: cfg.Billing.Mode,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.Appearance.Theme = v.Theme
	cfg.General.Locale = strings.TrimSpace(v.Locale)
	cfg.General.Timezone = strings.TrimSpace(v.Timezone)
	cfg.Billing.Mode = v.BillingMode
}

// NewSetupForm builds the first-run configuration form.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to debtfree").
				Description("A few settings and you are ready to start your first fast."),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewInput().
				Title("Locale for amounts").
				Placeholder("fr-FR").
				Value(&v.Locale),
			huh.NewInput().
				Title("Time zone").
				Description("IANA name; empty uses the system zone.").
				Placeholder("Europe/Paris").
				Validate(validateTimezone).
				Value(&v.Timezone),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Subscription source").
				Options(
					huh.NewOption("Local mirror (debtfree subscription set)", config.BillingLocal),
					huh.NewOption("Remote billing service", config.BillingRemote),
					huh.NewOption("Open (everything unlocked)", config.BillingOpen),
				).
				Value(&v.BillingMode),
		),
	)
}

func validateTimezone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown time zone %q", s)
	}
	return nil
}

// RunSetup runs the setup form and saves the result to path.
func RunSetup(cfg config.Config, path string) (config.Config, error) {
	vals := SetupValuesFrom(cfg)
	if err := NewSetupForm(&vals).Run(); err != nil {
		return cfg, err
	}
	vals.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := config.SaveFile(path, cfg); err != nil {
		return cfg, fmt.Errorf("saving config: %w", err)
	}
	return cfg, nil
}

// FastFormValues holds the answers of the fast creation form. Spend and
// Budgets stay text until Input parses them.
type FastFormValues struct {
	Title         string
	Categories    []string
	Extra         string // comma separated
	Intention     string
	Notes         string
	HabitName     string
	HabitReminder string
	Spend         string
	Budgets       string // "Restaurants=50, Loisirs=30"
}

// NewFastForm builds the form behind "fast start --interactive". suggestions
// are offered as categories, usually the user's budget lines.
func NewFastForm(v *FastFormValues, suggestions []string) *huh.Form {
	catOpts := make([]huh.Option[string], 0, len(suggestions))
	for _, s := range fast.NormalizeCategories(suggestions) {
		catOpts = append(catOpts, huh.NewOption(s, s))
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder(model.DefaultFastTitle).
			Value(&v.Title),
	}
	if len(catOpts) > 0 {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Categories to fast from").
			Options(catOpts...).
			Value(&v.Categories))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Other categories").
			Description("Comma separated.").
			Value(&v.Extra),
		huh.NewInput().
			Title("Estimated monthly spend on these categories").
			Validate(func(s string) error {
				f, err := ledger.ParseAmount(s)
				if err != nil || f <= 0 {
					return errors.New("enter an amount above zero")
				}
				return nil
			}).
			Value(&v.Spend),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewText().Title("Intention").Value(&v.Intention),
			huh.NewInput().Title("Habit to build").Value(&v.HabitName),
			huh.NewInput().Title("Habit reminder").Value(&v.HabitReminder),
			huh.NewInput().
				Title("Per-category budgets").
				Description("Optional, e.g. Restaurants=50, Loisirs=30").
				Validate(func(s string) error {
					_, err := parseBudgets(s)
					return err
				}).
				Value(&v.Budgets),
			huh.NewText().Title("Notes").Value(&v.Notes),
		),
	)
}

// Input converts the answers into a campaign request.
func (v FastFormValues) Input() (model.NewFastInput, error) {
	categories := append([]string{}, v.Categories...)
	categories = append(categories, strings.Split(v.Extra, ",")...)
	categories = fast.NormalizeCategories(categories)

	spend, err := ledger.ParseAmount(v.Spend)
	if err != nil {
		return model.NewFastInput{}, fmt.Errorf("monthly spend: %w", err)
	}
	budgets, err := parseBudgets(v.Budgets)
	if err != nil {
		return model.NewFastInput{}, err
	}

	return model.NewFastInput{
		Title:                 v.Title,
		Categories:            categories,
		Intention:             v.Intention,
		AdditionalNotes:       v.Notes,
		HabitName:             v.HabitName,
		HabitReminder:         v.HabitReminder,
		CategoryBudgets:       budgets,
		EstimatedMonthlySpend: spend,
	}, nil
}

func parseBudgets(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, amount, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("budget %q: want Category=amount", part)
		}
		f, err := ledger.ParseAmount(amount)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("budget %q: invalid amount", part)
		}
		out[strings.TrimSpace(name)] = f
	}
	return out, nil
}
