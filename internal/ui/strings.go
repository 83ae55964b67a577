package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// formatBound renders an optional bound, "none" when unset.
func formatBound(v *int) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *v)
}

// currencySymbol returns the display prefix for a vs currency code.
func currencySymbol(code string) string {
	switch strings.ToLower(code) {
	case "usd":
		return "$"
	case "eur":
		return "€"
	case "gbp":
		return "£"
	case "jpy":
		return "¥"
	default:
		return strings.ToUpper(code) + " "
	}
}

// formatPrice renders a price with thousands separators. Sub-dollar prices
// keep more precision.
func formatPrice(v float64, currency string) string {
	digits := 2
	if math.Abs(v) < 1 {
		digits = 6
	}
	return currencySymbol(currency) + humanize.CommafWithDigits(v, digits)
}

// formatCompact renders large amounts as 1.23T / 45.6B / 789M.
func formatCompact(v float64, currency string) string {
	abs := math.Abs(v)
	var out string
	switch {
	case abs >= 1e12:
		out = fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		out = fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		out = fmt.Sprintf("%.2fM", v/1e6)
	default:
		out = humanize.CommafWithDigits(v, 0)
	}
	return currencySymbol(currency) + out
}

// formatPercent renders a signed percentage change.
func formatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
