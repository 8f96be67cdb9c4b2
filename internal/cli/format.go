// Package cli provides the command-line interface for tradelens.
package cli

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FormatUSD formats an amount as US currency with thousands grouping.
func FormatUSD(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	str := amount.Abs().StringFixed(2)

	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// FormatUSDWhole formats an amount as US currency rounded to whole dollars,
// used where space is tight (calendar cells, chart axes).
func FormatUSDWhole(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	str := amount.Abs().StringFixed(0)

	result := "$" + groupThousands(str)
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPnL formats P&L with an explicit sign for gains.
func FormatPnL(pnl decimal.Decimal) string {
	formatted := FormatUSD(pnl)
	if pnl.IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatQuantity formats a share quantity in its shortest exact form.
func FormatQuantity(qty decimal.Decimal) string {
	return qty.String()
}

// FormatPrice formats a fill price, keeping extra precision for sub-$10
// instruments.
func FormatPrice(price decimal.Decimal) string {
	if price.Abs().LessThan(decimal.NewFromInt(10)) {
		return price.StringFixed(4)
	}
	return price.StringFixed(2)
}

// FormatDate formats a date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatMonthDay formats a short date for chart labels.
func FormatMonthDay(t time.Time) string {
	return t.UTC().Format("01/02")
}

// FormatTime formats a clock time in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format("15:04:05")
}

// FormatDateTime formats a datetime in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(" ", length-len(s)) + s
}

// Center centers a string. Width is measured in runes since calendar cells
// hold bullet and box-drawing glyphs.
func Center(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	padding := length - n
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// barLength scales value against max into a bar of at most width cells.
func barLength(value, max decimal.Decimal, width int) int {
	if max.IsZero() {
		return 0
	}
	n := int(value.Abs().Div(max.Abs()).Mul(decimal.NewFromInt(int64(width))).IntPart())
	if n > width {
		n = width
	}
	return n
}
