package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units (euro cents). All stored and
// wire amounts use this type; decimal arithmetic is only used transiently
// where a division or rate multiplication is involved.
type Cents int64

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a euro-denominated decimal to Cents, rounding
// half away from zero to the nearest cent.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Decimal returns the amount as a euro-denominated decimal (two places).
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount as a plain euro string, e.g. "119.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Parse converts a euro string like "119.00" to Cents. It rejects values
// with sub-cent precision.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	scaled := d.Mul(hundred)
	if !scaled.Equal(scaled.Floor()) {
		return 0, fmt.Errorf("amount %q has sub-cent precision", s)
	}
	return Cents(scaled.IntPart()), nil
}
