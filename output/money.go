package output

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "₹"

// FormatMoney renders amount with two decimals, thousands separators and the currency
// symbol in front, e.g. "-₹1,234.50".
func FormatMoney(amount decimal.Decimal, currency string) string {
	text := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(text, ".")

	var b strings.Builder
	if amount.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(currency)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
