// Package core holds the budget domain: month keys, ledgers, line items
// and the aggregation rules applied to them.
//
// Amounts are float64 throughout. Reported values are rounded on the exact
// binary value with ties to even, so 2.675 (stored as 2.67499...) becomes
// 2.67 and an exact 0.125 becomes 0.12.
package core

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places, ties to even.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// FormatAmount renders v with exactly two decimals, e.g. "1234.50".
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(Round2(v)).StringFixed(2)
}

// Percent returns part/whole as a percentage rounded to two decimals. The
// caller guarantees whole is non-zero.
func Percent(part, whole float64) float64 {
	return Round2(part / whole * 100)
}
