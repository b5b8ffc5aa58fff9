package domain

import "github.com/shopspring/decimal"

// Money is a fixed-point currency amount. Amounts cross persistence and wire
// boundaries as 2-decimal strings, never as binary floats, so totals do not
// drift under round-tripping.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// MoneyFromDecimal wraps a decimal amount.
func MoneyFromDecimal(d decimal.Decimal) Money { return Money{d: d} }

// ParseMoney parses a decimal string such as "49.99".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d: d}, nil
}

// MustMoney parses a decimal string and panics on malformed input.
// Intended for constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + other.
func (m Money) Add(other Money) Money { return Money{d: m.d.Add(other.d)} }

// MulInt returns m × n, used for quantity × unit price.
func (m Money) MulInt(n int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(n))).Round(2)}
}

// Equal reports numeric equality ("49.9" == "49.90").
func (m Money) Equal(other Money) bool { return m.d.Equal(other.d) }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// String renders the amount with exactly two decimal places.
func (m Money) String() string { return m.d.StringFixed(2) }

// MarshalJSON renders the amount as a 2-decimal JSON string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.d = d
	return nil
}
