package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in the smallest currency unit (cents). Every stored
// and computed monetary value in the system is integer cents; decimal
// strings exist only at the API boundary.
type Money int64

// ErrInvalidAmount indicates a non-positive or malformed monetary input.
var ErrInvalidAmount = errors.New("invalid amount")

// MoneyFromDecimalString parses a user-entered decimal amount ("1250",
// "1,250.50", "KES 1250.50") into cents. Sub-cent digits round half up.
// Negative amounts are rejected.
func MoneyFromDecimalString(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	for _, prefix := range []string{"KES", "kes", "Ksh", "ksh", "KSh"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	if s == "" {
		return 0, fmt.Errorf("empty amount: %w", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, ErrInvalidAmount)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %s: %w", d, ErrInvalidAmount)
	}
	cents := d.Shift(2).Round(0)
	return Money(cents.IntPart()), nil
}

// DecimalString renders cents as a decimal string with two fractional
// digits, e.g. 208850 -> "2088.50". Display formatting only; the cents
// value remains the source of truth.
func (m Money) DecimalString() string {
	return decimal.New(int64(m), -2).StringFixed(2)
}

// ApplyPercent returns percent% of m, rounded half up to the nearest
// cent. The rounding happens once, on the exact rational value: integer
// math only, no intermediate floats. Negative cents or a percent outside
// 0..100 is rejected.
func (m Money) ApplyPercent(percent int) (Money, error) {
	if m < 0 {
		return 0, fmt.Errorf("negative cents %d: %w", m, ErrInvalidAmount)
	}
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("percent %d out of range: %w", percent, ErrInvalidAmount)
	}
	return (m*Money(percent) + 50) / 100, nil
}

// SumMoney adds amounts exactly.
func SumMoney(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// UnmarshalJSON accepts either integer cents (2088) or a decimal string
// ("20.88"), so API clients and operator-typed form values both work.
func (m *Money) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := MoneyFromDecimalString(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	var cents int64
	if err := json.Unmarshal(data, &cents); err != nil {
		return err
	}
	*m = Money(cents)
	return nil
}

// MarshalJSON always emits integer cents.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(m))
}
