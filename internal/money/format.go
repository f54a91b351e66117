package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	groupSeparator    = "\u202f"
	currencySeparator = "\u00a0"
)

// FormatEuro renders an amount the way fr-FR invoices show it, e.g. "1 234,50 €".
func FormatEuro(value float64) string {
	rounded := decimal.NewFromFloat(Round2(value))
	negative := rounded.IsNegative()
	fixed := rounded.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString(groupThousands(intPart))
	b.WriteString(",")
	b.WriteString(fracPart)
	b.WriteString(currencySeparator)
	b.WriteString("€")
	return b.String()
}

// FormatSigned renders "+ 12,00 €" or "- 12,00 €" from the absolute amount.
func FormatSigned(value float64, sign string) string {
	if value < 0 {
		value = -value
	}
	return sign + " " + FormatEuro(value)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
