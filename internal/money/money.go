// Package money holds the currency conventions shared by the ledger engine:
// exact decimal arithmetic, two-decimal formatting and the one-cent tolerance
// used wherever two computed totals are compared.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance is the largest difference still treated as rounding noise.
var Tolerance = decimal.New(1, -2)

// WithinTolerance reports whether d is strictly closer to zero than one cent.
func WithinTolerance(d decimal.Decimal) bool {
	return d.Abs().LessThan(Tolerance)
}

// Negligible reports whether d is at most one cent. Rows this small are noise
// in rankings and breakdowns.
func Negligible(d decimal.Decimal) bool {
	return d.LessThanOrEqual(Tolerance)
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ParseAmount parses a currency string. Both the plain form ("1234.56") and
// the pt-BR form ("R$ 1.234,56") are accepted.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimSpace(s), "R$")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Format renders d with exactly two decimals using a dot separator.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatBR renders d in the pt-BR convention: thousands grouped with dots and
// a decimal comma ("-1.234,56").
func FormatBR(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
