package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTicker is returned when a ticker symbol is empty.
	ErrInvalidTicker = errors.New("invalid ticker")
	// ErrNegativePrice is returned when a price below zero is constructed.
	ErrNegativePrice = errors.New("price must not be negative")
)

// Number lists the literal types the shorthand constructors accept.
type Number interface {
	float32 | float64 | int | int32 | int64 | decimal.Decimal
}

func newDecimal[T Number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Price is a non-negative unit price in DefaultCurrency.
type Price struct {
	value decimal.Decimal
}

// NewPrice validates value and returns the Price.
func NewPrice(value decimal.Decimal) (Price, error) {
	if value.IsNegative() {
		return Price{}, fmt.Errorf("%w: %s", ErrNegativePrice, value)
	}
	return Price{value: value}, nil
}

// P builds a Price from a literal. It panics on a negative value.
func P[T Number](value T) Price {
	p, err := NewPrice(newDecimal(value))
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Value() decimal.Decimal { return p.value }
func (p Price) IsZero() bool           { return p.value.IsZero() }
func (p Price) Equal(o Price) bool     { return p.value.Equal(o.value) }
func (p Price) String() string         { return p.value.String() }

// Times returns the value of q units at this price.
func (p Price) Times(q Quantity) Money { return USD(p.value.Mul(q.value)) }

// Quantity is a held amount of an instrument. Fractional and negative
// (short) quantities are legal.
type Quantity struct {
	value decimal.Decimal
}

func NewQuantity(value decimal.Decimal) Quantity { return Quantity{value: value} }

// Q builds a Quantity from a literal.
func Q[T Number](value T) Quantity { return Quantity{value: newDecimal(value)} }

func (q Quantity) Value() decimal.Decimal { return q.value }
func (q Quantity) IsZero() bool           { return q.value.IsZero() }
func (q Quantity) IsPositive() bool       { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool       { return q.value.IsNegative() }
func (q Quantity) Equal(o Quantity) bool  { return q.value.Equal(o.value) }
func (q Quantity) String() string         { return q.value.String() }

// Ticker is the canonical display symbol of an instrument.
type Ticker struct {
	symbol string
}

// NewTicker trims symbol and fails with ErrInvalidTicker when nothing is left.
func NewTicker(symbol string) (Ticker, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Ticker{}, ErrInvalidTicker
	}
	return Ticker{symbol: symbol}, nil
}

func (t Ticker) Symbol() string { return t.symbol }
func (t Ticker) String() string { return t.symbol }
