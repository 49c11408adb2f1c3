package dge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Category classifies goods. Each category carries a default valuation percent.
type Category string

// All is the category (and port) wildcard used by filters.
const All = "All"

// CategoryRate associates a category with its default valuation percent.
type CategoryRate struct {
	Category Category
	Percent  Percent
}

// CategoryTable is the ordered table of known categories.
type CategoryTable struct {
	order   []Category
	percent map[Category]Percent
}

// NewCategoryTable creates a table from rates, in that order.
// Every percent must lie in (0,100] and names must be unique and not empty.
func NewCategoryTable(rates ...CategoryRate) (*CategoryTable, error) {
	t := &CategoryTable{percent: make(map[Category]Percent, len(rates))}
	for _, r := range rates {
		name := Category(strings.TrimSpace(string(r.Category)))
		if name == "" || name == All {
			return nil, fmt.Errorf("%w: %q is not a valid category name", ErrInvalidCategory, r.Category)
		}
		if _, exists := t.percent[name]; exists {
			return nil, fmt.Errorf("%w: %q is defined twice", ErrInvalidCategory, name)
		}
		if !r.Percent.within(decimal.Zero, hundred) {
			return nil, fmt.Errorf("%w: %s for category %q, want (0,100]", ErrInvalidPercent, r.Percent, name)
		}
		t.order = append(t.order, name)
		t.percent[name] = r.Percent
	}
	if len(t.order) == 0 {
		return nil, fmt.Errorf("%w: empty category table", ErrInvalidCategory)
	}
	return t, nil
}

// DefaultCategories returns the built-in category table.
func DefaultCategories() *CategoryTable {
	t, err := NewCategoryTable(
		CategoryRate{"Electronics", P(50)},
		CategoryRate{"Automobile", P(55)},
		CategoryRate{"Textiles", P(40)},
		CategoryRate{"Furniture", P(60)},
		CategoryRate{"Machinery", P(45)},
		CategoryRate{"Plastic Goods", P(35)},
		CategoryRate{"Chemicals", P(30)},
		CategoryRate{"Food & Beverage", P(25)},
		CategoryRate{"Metals", P(50)},
		CategoryRate{"Paper", P(30)},
		CategoryRate{"Pharmaceuticals", P(70)},
		CategoryRate{"Cosmetics", P(45)},
		CategoryRate{"Toys", P(35)},
		CategoryRate{"Books", P(25)},
		CategoryRate{"Jewelry", P(80)},
		CategoryRate{"Sports Equipment", P(40)},
		CategoryRate{"Home Appliances", P(55)},
		CategoryRate{"Construction Materials", P(35)},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Categories returns the categories in table order.
func (t *CategoryTable) Categories() []Category {
	return append([]Category(nil), t.order...)
}

// Sorted returns the categories in alphabetical order.
func (t *CategoryTable) Sorted() []Category {
	cats := t.Categories()
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Has reports whether c is a known category.
func (t *CategoryTable) Has(c Category) bool {
	_, ok := t.percent[c]
	return ok
}

// Default returns the default valuation percent of c.
func (t *CategoryTable) Default(c Category) (Percent, error) {
	p, ok := t.percent[c]
	if !ok {
		return Percent{}, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
	}
	return p, nil
}

// Lookup finds a category by name, ignoring case.
func (t *CategoryTable) Lookup(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range t.order {
		if strings.EqualFold(string(c), name) {
			return c, true
		}
	}
	return "", false
}

// PortOptions lists the usual ports of rejection. Any other port is accepted.
var PortOptions = []string{
	"Mumbai", "Chennai", "Kolkata", "Kandla", "Cochin", "Visakhapatnam",
	"Paradip", "Tuticorin", "Mangalore", "Jawaharlal Nehru Port",
}
