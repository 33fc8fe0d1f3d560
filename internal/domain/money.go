package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupiah renders an amount as whole Rupiah with dot grouping, e.g. "Rp 45.000".
func FormatRupiah(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	digits := rounded.StringFixed(0)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}
