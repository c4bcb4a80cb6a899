package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPrice is the inclusive upper bound for an item price.
var MaxPrice = decimal.NewFromInt(10000)

// MaxPriceScale is the most digits a price may carry after the decimal point.
// With MaxPrice that keeps every price within the 34 significant digits of a
// BSON Decimal128.
const MaxPriceScale = 28

// Price is a value object holding a decimal amount in (0, MaxPrice] with at
// most MaxPriceScale fractional digits.
type Price struct {
	amount decimal.Decimal
}

// NewPrice constructs a valid Price or returns an error if the amount is out of range.
func NewPrice(amount decimal.Decimal) (Price, error) {
	if !amount.IsPositive() {
		return Price{}, fmt.Errorf("price must be greater than 0")
	}
	if amount.GreaterThan(MaxPrice) {
		return Price{}, fmt.Errorf("price must not exceed %s", MaxPrice)
	}
	if !amount.Equal(amount.Truncate(MaxPriceScale)) {
		return Price{}, fmt.Errorf("price must have at most %d decimal places", MaxPriceScale)
	}
	return Price{amount: amount}, nil
}

// MustPrice is like NewPrice but panics on an invalid amount. Intended for
// fixtures and constants.
func MustPrice(amount string) Price {
	p, err := NewPrice(decimal.RequireFromString(amount))
	if err != nil {
		panic(err)
	}
	return p
}

// Decimal returns the underlying amount.
func (p Price) Decimal() decimal.Decimal {
	return p.amount
}

// IsZero reports whether the price was never set.
func (p Price) IsZero() bool {
	return p.amount.IsZero()
}

// Equal reports whether two prices hold the same amount regardless of scale.
func (p Price) Equal(other Price) bool {
	return p.amount.Equal(other.amount)
}

// String returns the amount in plain decimal notation.
func (p Price) String() string {
	return p.amount.String()
}

// RestorePrice rebuilds a Price from persisted state without range checks.
// Prices are validated when they enter the system, not when they are read back.
func RestorePrice(amount decimal.Decimal) Price {
	return Price{amount: amount}
}
