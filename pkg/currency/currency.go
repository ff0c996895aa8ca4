// Package currency parses and renders the roster's monetary text at the
// presentation boundary. Amounts stay exact decimals between parse and
// format, so round-tripping never changes the numeric value.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EuroSymbol prefixes every formatted amount.
const EuroSymbol = "€"

// Parse reads an amount that may carry a currency symbol and either comma or
// dot separators. With both separators present, dots group thousands and the
// comma marks decimals ("1.234,56"); a lone comma marks decimals ("1234,56").
func Parse(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, EuroSymbol, "")
	s = strings.ReplaceAll(s, " ", "")

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// Format renders a decimal as "€ #.###,##": dot-grouped thousands, comma
// decimals, always two decimal places.
func Format(value decimal.Decimal) string {
	fixed := value.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	grouped := groupThousands(parts[0])

	out := EuroSymbol + " " + grouped + "," + parts[1]
	if negative {
		out = EuroSymbol + " -" + grouped + "," + parts[1]
	}
	return out
}

// Reformat converts source amount text to display form. Blank input renders
// blank; unparseable input is passed through unchanged rather than dropped,
// so dirty source cells stay visible in the report.
func Reformat(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	value, ok := Parse(raw)
	if !ok {
		return raw
	}
	return Format(value)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
