package dge

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage, 50 means 50%.
type Percent struct {
	value decimal.Decimal
}

// P returns a Percent.
func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

// ParsePercent parses a decimal string, an optional trailing "%" is accepted.
func ParsePercent(s string) (Percent, error) {
	if n := len(s); n > 0 && s[n-1] == '%' {
		s = s[:n-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	return Percent{value: d}, nil
}

func (p Percent) Decimal() decimal.Decimal          { return p.value }
func (p Percent) Equal(q Percent) bool              { return p.value.Equal(q.value) }
func (p Percent) LessThan(q Percent) bool           { return p.value.LessThan(q.value) }
func (p Percent) LessThanOrEqual(q Percent) bool    { return p.value.LessThanOrEqual(q.value) }
func (p Percent) GreaterThan(q Percent) bool        { return p.value.GreaterThan(q.value) }
func (p Percent) GreaterThanOrEqual(q Percent) bool { return p.value.GreaterThanOrEqual(q.value) }
func (p Percent) IsPositive() bool                  { return p.value.IsPositive() }
func (p Percent) IsZero() bool                      { return p.value.IsZero() }
func (p Percent) Add(q Percent) Percent             { return Percent{value: p.value.Add(q.value)} }

// within reports whether p is in the half open interval (lo, hi].
func (p Percent) within(lo, hi decimal.Decimal) bool {
	return p.value.GreaterThan(lo) && p.value.LessThanOrEqual(hi)
}

func (p Percent) String() string {
	return p.value.StringFixed(2) + "%"
}

// MarshalJSON writes the percent as a plain JSON number.
func (p Percent) MarshalJSON() ([]byte, error) {
	return p.value.MarshalJSON()
}

// UnmarshalJSON reads a JSON number or a numeric string.
func (p *Percent) UnmarshalJSON(data []byte) error {
	v, err := decodeScalar(data)
	if err != nil {
		return err
	}
	d, err := toDecimal(v)
	if err != nil {
		return err
	}
	*p = Percent{value: d}
	return nil
}

// UnmarshalText lets text based formats (flags, YAML) hold plain numbers.
func (p *Percent) UnmarshalText(text []byte) error {
	q, err := ParsePercent(string(text))
	if err != nil {
		return err
	}
	*p = q
	return nil
}
