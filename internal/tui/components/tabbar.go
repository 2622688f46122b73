package components

import (
	"strings"

	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune // shortcut, always the first letter lowercased
}

// Tabs defines all available tabs in display order.
var Tabs = []Tab{
	{Name: "Fast", Key: 'f'},
	{Name: "Budget", Key: 'b'},
	{Name: "Debt", Key: 'd'},
	{Name: "History", Key: 'h'},
}

const tabGap = "  "

func tabLabel(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(tab.Name)
	}
	key := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)
	rest := lipgloss.NewStyle().Foreground(t.TextMuted)
	return dim.Render("[") + key.Render(tab.Name[:1]) + dim.Render("]") + rest.Render(tab.Name[1:])
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx, width int) string {
	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, tabLabel(tab, i == activeIdx))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(" " + strings.Join(parts, tabGap))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

// TabAtX maps a mouse column on the tab bar row to a tab index, or -1.
func TabAtX(x, activeIdx int) int {
	pos := 1
	for i, tab := range Tabs {
		w := lipgloss.Width(tabLabel(tab, i == activeIdx))
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + len(tabGap)
	}
	return -1
}
