package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports a malformed input field. It is the one fatal
// per-row failure: the caller must abort the run without writing output.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// ParseAmount parses a spending amount as an arbitrary-precision decimal.
// The value must be a valid decimal strictly greater than zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	amount, err := decimal.NewFromString(trimmed)
	if err != nil || amount.Sign() <= 0 {
		return decimal.Decimal{}, &ValidationError{Field: "amount", Value: value}
	}
	return amount, nil
}

// RoundUSD quantizes a USD amount to exactly two fractional digits using
// half-up rounding (midpoints away from zero).
func RoundUSD(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
