// Package money defines the fixed-point amount type used for every monetary
// value in the settlement engine. Amounts are integer minor units (cents);
// no floating point is used anywhere in fee or settlement arithmetic.
package money

import "errors"

// Common errors
var (
	ErrNegativeAmount      = errors.New("amount must not be negative")
	ErrUnsupportedCurrency = errors.New("currency is not supported")
)

// CurrencyUSD is the only currency the platform settles in.
const CurrencyUSD = "USD"

// Amount is a monetary value in cents. Valid amounts are non-negative;
// construct them with New so the invariant holds.
type Amount int64

// New creates an Amount from a cent value, rejecting negative input
func New(cents int64) (Amount, error) {
	if cents < 0 {
		return 0, ErrNegativeAmount
	}
	return Amount(cents), nil
}

// Cents returns the raw minor-unit value
func (a Amount) Cents() int64 {
	return int64(a)
}

// IsZero reports whether the amount is exactly zero
func (a Amount) IsZero() bool {
	return a == 0
}

// Add returns the sum of two amounts
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Min returns the smaller of two amounts
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// ValidateCurrency checks the requested currency against the single supported
// value. The platform is USD-only; anything else is a configuration error.
func ValidateCurrency(code string) error {
	if code != CurrencyUSD {
		return ErrUnsupportedCurrency
	}
	return nil
}
