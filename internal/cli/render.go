package cli

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/debtfree/internal/model"
)

// Palette for plain CLI output (Flexoki Dark).
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorBlue      = lipgloss.Color("#4385BE")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorTextMuted)
	goodStyle   = lipgloss.NewStyle().Foreground(ColorGreen)
	barStyle    = lipgloss.NewStyle().Foreground(ColorBlue)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorOrange)
	ruleStyle   = lipgloss.NewStyle().Foreground(ColorTextDim)
)

// Align is a column alignment.
type Align int

const (
	AlignAuto Align = iota // first column left, the rest right
	AlignLeft
	AlignRight
)

// SeparatorRow, used as a whole row, draws a horizontal rule.
const SeparatorRow = "---"

// Table is a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int   // computed from content when nil
	Align   []Align // per column; AlignAuto when shorter than the column count
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func (t Table) columns() int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > n && !isSeparator(row) {
			n = len(row)
		}
	}
	return n
}

func (t Table) widths(n int) []int {
	w := make([]int, n)
	if t.Widths != nil {
		copy(w, t.Widths)
		return w
	}
	grow := func(cells []string) {
		for i, c := range cells {
			if i < n {
				w[i] = max(w[i], utf8.RuneCountInString(c))
			}
		}
	}
	grow(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			grow(row)
		}
	}
	return w
}

func (t Table) alignOf(col int) Align {
	if col < len(t.Align) && t.Align[col] != AlignAuto {
		return t.Align[col]
	}
	if col == 0 {
		return AlignLeft
	}
	return AlignRight
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == SeparatorRow
}

// pad pads s to width w by rune count; %*s counts bytes and misaligns accents.
func pad(s string, w int, a Align) string {
	gap := strings.Repeat(" ", max(0, w-utf8.RuneCountInString(s)))
	if a == AlignRight {
		return " " + gap + s + " "
	}
	return " " + s + gap + " "
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(ruleStyle.Render(left))
	for i, w := range widths {
		if i > 0 {
			b.WriteString(ruleStyle.Render(mid))
		}
		b.WriteString(ruleStyle.Render(strings.Repeat("─", w+2)))
	}
	b.WriteString(ruleStyle.Render(right))
	b.WriteString("\n")
}

func (t Table) row(b *strings.Builder, widths []int, cells []string, style lipgloss.Style, header bool) {
	sep := ruleStyle.Render("│")
	b.WriteString(sep)
	for i, w := range widths {
		if i > 0 {
			b.WriteString(sep)
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		a := t.alignOf(i)
		if header {
			a = AlignLeft
		}
		b.WriteString(style.Render(pad(cell, w, a)))
	}
	b.WriteString(sep)
	b.WriteString("\n")
}

// RenderTable renders t with rounded borders. A row holding only
// SeparatorRow becomes a rule.
func RenderTable(t Table) string {
	n := t.columns()
	if n == 0 {
		return ""
	}
	widths := t.widths(n)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	rule(&b, widths, "╭", "┬", "╮")
	if len(t.Headers) > 0 {
		t.row(&b, widths, t.Headers, headerStyle, true)
		rule(&b, widths, "├", "┼", "┤")
	}
	for _, cells := range t.Rows {
		if isSeparator(cells) {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}
		t.row(&b, widths, cells, valueStyle, false)
	}
	rule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

// RenderProgressBar renders "[████░░░░] current/total".
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(width, max(0, current*width/total))
	bar := goodStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("[%s] %s/%s", bar, FormatNumber(int64(current)), FormatNumber(int64(total)))
}

// RenderDayStrip renders one glyph per fast day: respected, missed, or upcoming.
func RenderDayStrip(days []model.FastDay, today time.Time) string {
	var b strings.Builder
	for _, d := range days {
		switch {
		case d.Date.After(today):
			b.WriteString(ruleStyle.Render("·"))
		case d.Respected:
			b.WriteString(goodStyle.Render("●"))
		default:
			b.WriteString(warnStyle.Render("○"))
		}
	}
	return b.String()
}

// RenderHorizontalBar renders value as a bar scaled against maxValue.
func RenderHorizontalBar(value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := min(maxWidth, int(value/maxValue*float64(maxWidth)))
	return barStyle.Render(strings.Repeat("█", n))
}
