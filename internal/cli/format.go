// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theirongolddev/debtfree/internal/model"
)

// Locale is the BCP 47 tag used for money formatting.
var Locale = "fr-FR"

func printer() *message.Printer {
	tag, err := language.Parse(Locale)
	if err != nil {
		tag = language.French
	}
	return message.NewPrinter(tag)
}

// FormatMoney formats an amount with two decimals and locale digit grouping.
func FormatMoney(amount float64) string {
	return printer().Sprintf("%.2f", amount)
}

// FormatMonths renders a months-to-freedom figure.
func FormatMonths(months int) string {
	switch {
	case months >= model.UnreachableMonths:
		return "not reachable"
	case months == 1:
		return "1 month"
	default:
		return strconv.Itoa(months) + " months"
	}
}

// FormatDuration renders whole seconds as "1h 2m", "2m" or "45s".
func FormatDuration(secs int64) string {
	d := time.Duration(max(secs, 0)) * time.Second
	hours, mins := int(d.Hours()), int(d.Minutes())%60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// FormatNumber groups digits for the active locale.
func FormatNumber(n int64) string {
	return printer().Sprintf("%d", n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return "???"
	}
	return time.Weekday(weekday).String()[:3]
}
