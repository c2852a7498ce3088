// Package format turns aggregation output into presentation-ready
// strings: grouped-digit currency, max labels and the statistics panel.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyUnit is the trailing currency symbol.
const CurrencyUnit = "Kč"

// Currency renders an amount with a space as the thousands separator
// and the trailing currency unit, e.g. 1234567 -> "1 234 567 Kč".
// Non-integer inputs are rounded to the nearest integer (half away
// from zero) before grouping; the sign is prefixed and grouping is
// applied to the magnitude.
func Currency(value decimal.Decimal) string {
	rounded := value.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	b.WriteByte(' ')
	b.WriteString(CurrencyUnit)
	return b.String()
}

// Label renders a statistics entry as "<formatted_value> (<key>)",
// e.g. "12 000 Kč (Rent)".
func Label(value decimal.Decimal, key string) string {
	return Currency(value) + " (" + key + ")"
}
