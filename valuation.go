package dge

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Valuation is the recovery value assigned to goods.
type Valuation struct {
	Percent    Percent `json:"percent"`    // valuation percent applied
	Price      Money   `json:"price"`      // valued price, full precision
	Overridden bool    `json:"overridden"` // true if Percent was explicitly supplied
}

// ValuedPrice returns original * p / 100.
func ValuedPrice(original Money, p Percent) Money {
	return original.Percent(p)
}

// Valuate computes the valued price of goods in the given category.
//
// If override is not nil it is used instead of the category default, even
// when it is equal to it.
func (t *CategoryTable) Valuate(category Category, original Money, override *Percent) (Valuation, error) {
	if !original.IsPositive() {
		return Valuation{}, fmt.Errorf("%w: original price %s must be greater than 0", ErrInvalidPrice, original.Decimal())
	}
	p, err := t.Default(category)
	if err != nil {
		return Valuation{}, err
	}
	v := Valuation{Percent: p}
	if override != nil {
		if err := checkValuationPercent(*override); err != nil {
			return Valuation{}, err
		}
		v.Percent, v.Overridden = *override, true
	}
	v.Price = ValuedPrice(original, v.Percent)
	return v, nil
}

func checkValuationPercent(p Percent) error {
	if !p.within(decimal.Zero, hundred) {
		return fmt.Errorf("%w: %s, want (0,100]", ErrInvalidPercent, p)
	}
	return nil
}
