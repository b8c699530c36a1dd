package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var centsPerDollar = decimal.NewFromInt(100)

// Price is a monetary amount in integer minor currency units (cents).
// Storing cents instead of a float keeps equality exact across repeated
// serialization cycles.
type Price int64

// PriceFromDollars converts a dollar amount into cents, rounding half away
// from zero via decimal arithmetic so 6.7 becomes exactly 670.
func PriceFromDollars(amount float64) Price {
	cents := decimal.NewFromFloat(amount).Mul(centsPerDollar).Round(0)
	return Price(cents.IntPart())
}

// Decimal returns the price as a dollar-denominated decimal.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -2)
}

// MarshalJSON emits the price as a plain decimal number, e.g. 6.7.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal().String()), nil
}

// UnmarshalJSON accepts any JSON number and rounds it to cents.
func (p *Price) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return errors.Wrapf(err, "parse price %q", data)
	}
	*p = Price(d.Mul(centsPerDollar).Round(0).IntPart())
	return nil
}
