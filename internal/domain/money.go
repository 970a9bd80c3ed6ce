package domain

import (
	"errors"
	"fmt"
)

// Money represents a monetary value with currency.
// Amount is stored in smallest currency unit (cents) to avoid floating
// point issues in expense accounting.
type Money struct {
	amount   int64
	currency string
}

var (
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrNegativeMoney     = errors.New("money amount cannot be negative")
	ErrInvalidMultiplier = errors.New("multiplier must not be negative")
	ErrAmountOverflow    = errors.New("money amount overflows")
)

// NewMoney creates a new Money value object; amount is in cents
func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeMoney
	}
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}

	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// ZeroMoney creates a zero money value
func ZeroMoney(currency string) Money {
	return Money{
		amount:   0,
		currency: currency,
	}
}

// Amount returns the amount in smallest currency unit (cents)
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the ISO 4217 currency code
func (m Money) Currency() string {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// Add adds two money values (must have same currency)
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}

	return Money{
		amount:   m.amount + other.amount,
		currency: m.currency,
	}, nil
}

// Multiply multiplies the amount by a quantity
func (m Money) Multiply(qty int) (Money, error) {
	if qty < 0 {
		return Money{}, ErrInvalidMultiplier
	}

	total := m.amount * int64(qty)
	if qty > 0 && total/int64(qty) != m.amount {
		return Money{}, ErrAmountOverflow
	}

	return Money{
		amount:   total,
		currency: m.currency,
	}, nil
}

// String returns a string representation of the money
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.amount/100, m.amount%100, m.currency)
}
