// Package pricing computes the order summary price breakdown.
//
// Amounts are exact decimals; rounding to cents happens only when a
// Breakdown is formatted for display.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Fixed charges. There is no currency or locale parameterization.
var (
	ShippingCost = decimal.RequireFromString("19.99")
	TaxRate      = decimal.RequireFromString("0.10")
	Insurance    = decimal.RequireFromString("12.00")
)

const displayPlaces = 2

// ErrInvalidPrice is returned when the item price is empty or not a number.
var ErrInvalidPrice = errors.New("item price is not a number")

// Breakdown is the full-precision price breakdown of one order.
type Breakdown struct {
	ItemPrice decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Insurance decimal.Decimal
	Total     decimal.Decimal
}

// Compute derives the breakdown from the shipping section's item price.
// Unparseable input is an error, never a zero price.
func Compute(price string) (Breakdown, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return Breakdown{}, fmt.Errorf("%w: %q", ErrInvalidPrice, price)
	}
	tax := p.Mul(TaxRate)
	return Breakdown{
		ItemPrice: p,
		Shipping:  ShippingCost,
		Tax:       tax,
		Insurance: Insurance,
		Total:     p.Add(ShippingCost).Add(tax).Add(Insurance),
	}, nil
}

// Formatted is a Breakdown rounded to cents for display.
type Formatted struct {
	ItemPrice string `json:"item_price"`
	Shipping  string `json:"shipping"`
	Tax       string `json:"tax"`
	Insurance string `json:"insurance"`
	Total     string `json:"total"`
}

// Format rounds every amount to two places, half away from zero.
func (b Breakdown) Format() Formatted {
	return Formatted{
		ItemPrice: Money(b.ItemPrice),
		Shipping:  Money(b.Shipping),
		Tax:       Money(b.Tax),
		Insurance: Money(b.Insurance),
		Total:     Money(b.Total),
	}
}

// Money renders an amount as "$12.34".
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(displayPlaces)
}
