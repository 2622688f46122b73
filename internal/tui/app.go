// Package tui provides the interactive Bubble Tea tracker for financial fasts,
// budgets, and the debt-freedom projection.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/fast"
	"github.com/theirongolddev/debtfree/internal/model"
	"github.com/theirongolddev/debtfree/internal/tui/components"
	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FastService reads and updates a user's campaigns.
type FastService interface {
	GetActiveCampaign(ctx context.Context, userID string) (model.FastSnapshot, error)
	ListCampaigns(ctx context.Context, userID string) ([]model.FastSummary, error)
	UpdateDay(ctx context.Context, userID, campaignID string, dayIndex int, upd model.DayUpdate) (model.FastDay, error)
}

// BudgetService reads a monthly budget. An empty month means the current one.
type BudgetService interface {
	GetBudget(ctx context.Context, userID, monthSlug string) (model.Budget, error)
}

// DebtService computes the debt-freedom summary.
type DebtService interface {
	GetDebtSummary(ctx context.Context, userID string) (model.DebtSummary, error)
}

// Gate decides whether the budget and debt views are unlocked.
type Gate interface {
	Check(ctx context.Context, userID string) error
}

// Services are the backends the tracker works through. A nil Gate unlocks
// everything.
type Services struct {
	Fasts   FastService
	Budgets BudgetService
	Debt    DebtService
	Gate    Gate
}

type dataLoadedMsg struct {
	fast    model.FastSnapshot
	history []model.FastSummary
	budget  model.Budget
	summary model.DebtSummary
	locked  bool
	err     error
}

type dayUpdatedMsg struct {
	day model.FastDay
	err error
}

const (
	tabFast = iota
	tabBudget
	tabDebt
	tabHistory
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	requestTimeout   = 10 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	svc    Services
	userID string
	now    func() time.Time

	// Data
	loaded  bool
	fast    model.FastSnapshot
	history []model.FastSummary
	budget  model.Budget
	summary model.DebtSummary
	locked  bool

	// UI state
	width     int
	height    int
	activeTab int
	cursor    int // index into fast.Days
	editing   bool
	status    string
	statusErr bool

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
}

// NewApp creates the tracker for userID. now defaults to time.Now.
func NewApp(svc Services, userID string, now func() time.Time) App {
	if now == nil {
		now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	ti := textinput.New()
	ti.Placeholder = "What did this day teach you?"
	ti.CharLimit = fast.MaxReflectionRunes
	ti.Width = 60

	return App{
		svc:     svc,
		userID:  userID,
		now:     now,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		input:   ti,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.loadCmd())
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case dataLoadedMsg:
		first := !a.loaded
		a.loaded = true
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
			return a, nil
		}
		a.fast = msg.fast
		a.history = msg.history
		a.budget = msg.budget
		a.summary = msg.summary
		a.locked = msg.locked
		if first {
			a.cursor = a.todayCursor()
		}
		if a.cursor >= len(a.fast.Days) {
			a.cursor = max(len(a.fast.Days)-1, 0)
		}
		return a, nil

	case dayUpdatedMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
			return a, nil
		}
		for i := range a.fast.Days {
			if a.fast.Days[i].DayIndex == msg.day.DayIndex {
				a.fast.Days[i] = msg.day
			}
		}
		a.setStatus(fmt.Sprintf("Day %d saved", msg.day.DayIndex), false)
		// Savings depend on respected days; reload the projection.
		return a, a.loadCmd()

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if idx := components.TabAtX(msg.X, a.activeTab); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case tea.KeyMsg:
		if a.editing {
			return a.updateEditor(msg)
		}
		return a.updateKeys(msg)
	}

	if a.editing {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, a.keys.NextTab):
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case key.Matches(msg, a.keys.PrevTab):
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		a.setStatus("Refreshing...", false)
		return a, a.loadCmd()
	}

	if a.activeTab == tabFast && a.fast.Fast != nil {
		switch {
		case key.Matches(msg, a.keys.Up):
			if a.cursor > 0 {
				a.cursor--
			}
			return a, nil
		case key.Matches(msg, a.keys.Down):
			if a.cursor < len(a.fast.Days)-1 {
				a.cursor++
			}
			return a, nil
		case key.Matches(msg, a.keys.Toggle):
			return a.toggleSelected()
		case key.Matches(msg, a.keys.Reflect):
			return a.startEditor()
		}
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) toggleSelected() (tea.Model, tea.Cmd) {
	day, ok := a.selectedDay()
	if !ok {
		return a, nil
	}
	if day.Date.After(a.today()) {
		a.setStatus(fmt.Sprintf("Day %d has not started yet", day.DayIndex), true)
		return a, nil
	}
	respected := !day.Respected
	return a, a.updateDayCmd(day.DayIndex, model.DayUpdate{Respected: &respected})
}

func (a App) startEditor() (tea.Model, tea.Cmd) {
	day, ok := a.selectedDay()
	if !ok {
		return a, nil
	}
	if day.Date.After(a.today()) {
		a.setStatus(fmt.Sprintf("Day %d has not started yet", day.DayIndex), true)
		return a, nil
	}
	a.editing = true
	a.input.SetValue(day.Reflection)
	a.input.CursorEnd()
	return a, a.input.Focus()
}

func (a App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return a, tea.Quit
	case key.Matches(msg, a.keys.Cancel):
		a.editing = false
		a.input.Blur()
		return a, nil
	case key.Matches(msg, a.keys.Save):
		a.editing = false
		a.input.Blur()
		day, ok := a.selectedDay()
		if !ok {
			return a, nil
		}
		text := strings.TrimSpace(a.input.Value())
		return a, a.updateDayCmd(day.DayIndex, model.DayUpdate{Reflection: &text})
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func (a App) selectedDay() (model.FastDay, bool) {
	if a.fast.Fast == nil || a.cursor < 0 || a.cursor >= len(a.fast.Days) {
		return model.FastDay{}, false
	}
	return a.fast.Days[a.cursor], true
}

func (a App) today() time.Time {
	now := a.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// todayCursor points at the latest day that has started.
func (a App) todayCursor() int {
	today := a.today()
	idx := 0
	for i, d := range a.fast.Days {
		if !d.Date.After(today) {
			idx = i
		}
	}
	return idx
}

func (a App) loadCmd() tea.Cmd {
	svc, userID := a.svc, a.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var msg dataLoadedMsg
		var err error
		if msg.fast, err = svc.Fasts.GetActiveCampaign(ctx, userID); err != nil {
			msg.err = err
			return msg
		}
		if msg.history, err = svc.Fasts.ListCampaigns(ctx, userID); err != nil {
			msg.err = err
			return msg
		}

		if svc.Gate != nil {
			if err := svc.Gate.Check(ctx, userID); err != nil {
				if e := apperr.As(err); e.Kind == apperr.KindEntitlementRequired {
					msg.locked = true
					return msg
				}
				msg.err = err
				return msg
			}
		}
		if msg.budget, err = svc.Budgets.GetBudget(ctx, userID, ""); err != nil {
			msg.err = err
			return msg
		}
		if msg.summary, err = svc.Debt.GetDebtSummary(ctx, userID); err != nil {
			msg.err = err
		}
		return msg
	}
}

func (a App) updateDayCmd(dayIndex int, upd model.DayUpdate) tea.Cmd {
	svc, userID, campaignID := a.svc.Fasts, a.userID, a.fast.Fast.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		day, err := svc.UpdateDay(ctx, userID, campaignID, dayIndex, upd)
		return dayUpdatedMsg{day: day, err: err}
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	t := theme.Active
	msg := lipgloss.NewStyle().Foreground(t.Orange).
		Render(fmt.Sprintf("Terminal too narrow: %d columns, need %d", a.width, minTerminalWidth))
	return lipgloss.Place(a.width, max(a.height, 3), lipgloss.Center, lipgloss.Center, msg)
}

func (a App) viewLoading() string {
	t := theme.Active
	msg := a.spinner.View() + " " + lipgloss.NewStyle().Foreground(t.TextMuted).Render("Loading your fast...")
	return lipgloss.Place(a.width, max(a.height, 3), lipgloss.Center, lipgloss.Center, msg)
}

func (a App) viewMain() string {
	cw := a.contentWidth()

	var body string
	switch a.activeTab {
	case tabFast:
		body = a.renderFastTab(cw)
	case tabBudget:
		body = a.renderBudgetTab(cw)
	case tabDebt:
		body = a.renderDebtTab(cw)
	case tabHistory:
		body = a.renderHistoryTab(cw)
	}

	var helpView string
	if a.editing {
		helpView = a.help.View(editorKeys{a.keys})
		body += "\n" + components.ContentCard("Reflection", a.input.View(), cw)
	} else {
		helpView = a.help.View(a.keys)
	}

	header := components.RenderTabBar(a.activeTab, a.width)
	status := components.RenderStatusBar(a.width, helpView, a.status, a.statusErr)

	bodyHeight := a.height - lipgloss.Height(header) - lipgloss.Height(status) - 1
	if bodyHeight > 0 {
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, status)
}
