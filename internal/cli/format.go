package cli

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every money amount.
const CurrencySymbol = "$"

// FormatCurrency formats an amount with thousands separators and two
// decimal places, rounding half away from zero.
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	str := d.Abs().StringFixed(2)

	parts := strings.SplitN(str, ".", 2)
	result := CurrencySymbol + formatThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// formatThousands groups an integer string by three digits.
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatCurrency(pnl)
	if decimal.NewFromFloat(pnl).Round(2).IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatR formats an R multiple, e.g. "+2R" or "-0.5R".
func FormatR(r float64) string {
	d := decimal.NewFromFloat(r).Round(2)
	if d.IsPositive() {
		return "+" + d.String() + "R"
	}
	return d.String() + "R"
}

// TruncateString truncates a string to maxLen terminal columns with ellipsis.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	w := runewidth.StringWidth(s)
	if w >= length {
		return s
	}
	return s + strings.Repeat(" ", length-w)
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	w := runewidth.StringWidth(s)
	if w >= length {
		return s
	}
	return strings.Repeat(" ", length-w) + s
}

// Center centers a string.
func Center(s string, length int) string {
	w := runewidth.StringWidth(s)
	if w >= length {
		return s
	}
	padding := length - w
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// Bar renders value/max as a horizontal bar of at most width cells.
func Bar(value, max float64, width int) string {
	if max <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(value / max * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}
