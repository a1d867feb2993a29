package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountInput is a signed amount being typed digit by digit. The sign and the
// digits are kept apart so that a lone "-" typed before any digit is not lost
// when the field is rebuilt from its value.
type AmountInput struct {
	Negative bool
	Digits   string // cents, no leading zeros
}

// ParseAmountInput reads raw keyboard input. A leading "-" sets the sign;
// every other non-digit is ignored and the digits are read as cents.
func ParseAmountInput(raw string) AmountInput {
	trimmed := strings.TrimSpace(raw)
	in := AmountInput{Negative: strings.HasPrefix(trimmed, "-")}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	in.Digits = strings.TrimLeft(digits.String(), "0")
	return in
}

// AmountInputFrom rebuilds an input from a stored amount.
func AmountInputFrom(d decimal.Decimal) AmountInput {
	cents := d.Abs().Shift(2).Truncate(0)
	in := AmountInput{Negative: d.IsNegative()}
	if !cents.IsZero() {
		in.Digits = cents.String()
	}
	return in
}

// Pending reports whether only the sign has been typed so far.
func (in AmountInput) Pending() bool {
	return in.Negative && in.Digits == ""
}

// Value is the decimal amount typed so far; a pending sign is zero.
func (in AmountInput) Value() decimal.Decimal {
	if in.Digits == "" {
		return decimal.Zero
	}
	cents, err := decimal.NewFromString(in.Digits)
	if err != nil {
		return decimal.Zero
	}
	v := cents.Shift(-2)
	if in.Negative {
		v = v.Neg()
	}
	return v
}

// String renders the input for display, keeping a pending "-".
func (in AmountInput) String() string {
	if in.Digits == "" {
		if in.Negative {
			return "-"
		}
		return ""
	}
	return FormatBR(in.Value())
}
