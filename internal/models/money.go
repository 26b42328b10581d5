package models

import (
	"errors"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the only currency valuations are produced in.
const DefaultCurrency = "USD"

// ErrNonFiniteAmount is returned when a monetary amount is NaN or infinite.
var ErrNonFiniteAmount = errors.New("amount must be a finite number")

// Money is an immutable monetary amount in a single currency.
//
// The zero value is a zero amount with no currency; it takes the currency of
// whatever it is added to, so it can seed a sum.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney returns amount in currency. An empty currency means DefaultCurrency.
func NewMoney(amount decimal.Decimal, currency string) Money {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// USD is a shortcut for NewMoney(amount, DefaultCurrency).
func USD(amount decimal.Decimal) Money { return NewMoney(amount, DefaultCurrency) }

// MoneyFromFloat converts a float amount, rejecting NaN and infinities.
func MoneyFromFloat(amount float64, currency string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, ErrNonFiniteAmount
	}
	return NewMoney(decimal.NewFromFloat(amount), currency), nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the ISO code, DefaultCurrency for the zero value.
func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) Neg() Money       { return Money{amount: m.amount.Neg(), currency: m.currency} }

func (m Money) Equal(n Money) bool {
	return m.amount.Equal(n.amount) && m.Currency() == n.Currency()
}

func (m Money) GreaterThan(n Money) bool { return m.amount.GreaterThan(n.amount) }

// Add panics when both operands carry different currencies.
func (m Money) Add(n Money) Money { return Money{amount: m.amount.Add(n.amount), currency: sameCurrency(m, n)} }

// Sub panics when both operands carry different currencies.
func (m Money) Sub(n Money) Money { return Money{amount: m.amount.Sub(n.amount), currency: sameCurrency(m, n)} }

func sameCurrency(a, b Money) string {
	if a.currency == "" {
		return b.currency
	}
	if b.currency == "" {
		return a.currency
	}
	if a.currency != b.currency {
		panic("currency mismatch: " + a.currency + " != " + b.currency)
	}
	return a.currency
}

// String formats the amount with the currency symbol and minor units, e.g. "$1,950.00".
func (m Money) String() string {
	cur := money.New(0, m.Currency()).Currency()
	minor := m.amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
