package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/debtfree/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7} {
		widths := LayoutRow(100, n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != 100 {
			t.Errorf("LayoutRow(100, %d) sums to %d", n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark", termenv.TrueColor)
	row := MetricCardRow([]Metric{
		{Label: "Income", Value: "3 000 €"},
		{Label: "Margin", Value: "1 700 €", Note: "per month"},
		{Label: "Freedom", Value: "12 months", Color: theme.Active.Green},
	}, 90)

	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestContentCardKeepsTitle(t *testing.T) {
	theme.SetActive("flexoki-dark", termenv.TrueColor)
	card := ContentCard("Expenses", "Loyer  900 €", 40)
	if !strings.Contains(card, "Expenses") || !strings.Contains(card, "Loyer") {
		t.Fatalf("card missing content: %q", card)
	}
	if got := CardInnerWidth(40); got != 36 {
		t.Fatalf("CardInnerWidth(40) = %d, want 36", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	tests := []struct {
		key  rune
		want int
	}{
		{'f', 0},
		{'b', 1},
		{'d', 2},
		{'h', 3},
		{'z', -1},
	}
	for _, tt := range tests {
		if got := TabIdxByKey(tt.key); got != tt.want {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestTabAtX(t *testing.T) {
	// Layout with Fast active: " Fast  [B]udget  [D]ebt  [H]istory"
	tests := []struct {
		x    int
		want int
	}{
		{0, -1},
		{1, 0},
		{4, 0},
		{5, -1},
		{7, 1},
		{14, 1},
		{17, 2},
		{26, 3},
		{80, -1},
	}
	for _, tt := range tests {
		if got := TabAtX(tt.x, 0); got != tt.want {
			t.Errorf("TabAtX(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestColorForRate(t *testing.T) {
	theme.SetActive("flexoki-dark", termenv.TrueColor)
	th := theme.Active
	if got := ColorForRate(1); got != th.Green {
		t.Errorf("full rate = %s, want green", got)
	}
	if got := ColorForRate(0); got != th.Red {
		t.Errorf("zero rate = %s, want red", got)
	}
}

func TestFastProgressBarShowsCount(t *testing.T) {
	theme.SetActive("flexoki-dark", termenv.TrueColor)
	bar := FastProgressBar("Respected", 12, 15, 30, 10, 20)
	if !strings.Contains(bar, "12/30") {
		t.Fatalf("bar missing count: %q", bar)
	}
}
