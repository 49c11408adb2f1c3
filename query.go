package dge

import (
	"fmt"
	"strings"
)

// Predicate selects records.
type Predicate func(*Record) bool

// Select returns the records matching all predicates, in their original order.
func Select(records []*Record, preds ...Predicate) []*Record {
	selected := make([]*Record, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		selected = append(selected, r)
	}
	return selected
}

// SCFFilter filters records on whether they request supply chain finance.
type SCFFilter string

const (
	AnySCF     SCFFilter = ""
	WithSCF    SCFFilter = "Yes"
	WithoutSCF SCFFilter = "No"
)

// ParseSCFFilter parses "yes", "no", "all" or "".
func ParseSCFFilter(s string) (SCFFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return AnySCF, nil
	case "yes", "y", "true":
		return WithSCF, nil
	case "no", "n", "false":
		return WithoutSCF, nil
	}
	return AnySCF, fmt.Errorf("invalid SCF filter %q, want yes, no or all", s)
}

// Query is a set of optional criteria. The zero Query matches every record.
//
// Category and Port match exactly; "" and "All" mean no filter. The numeric
// criteria only match records carrying an SCF request.
type Query struct {
	Category        Category
	Port            string
	SCF             SCFFilter
	MinSCFAmount    *Money
	MaxInterestRate *Percent
	MaxDurationDays *int
}

func isAll(s string) bool { return s == "" || s == All }

// Predicates returns one predicate per active criterion.
func (q Query) Predicates() []Predicate {
	var preds []Predicate
	if !isAll(string(q.Category)) {
		preds = append(preds, func(r *Record) bool { return r.Category == q.Category })
	}
	if !isAll(q.Port) {
		preds = append(preds, func(r *Record) bool { return r.Port == q.Port })
	}
	switch q.SCF {
	case WithSCF:
		preds = append(preds, (*Record).NeedsSCF)
	case WithoutSCF:
		preds = append(preds, func(r *Record) bool { return !r.NeedsSCF() })
	}
	if q.MinSCFAmount != nil {
		floor := *q.MinSCFAmount
		preds = append(preds, func(r *Record) bool {
			s, ok := r.SCF()
			return ok && s.Requested().GreaterThanOrEqual(floor)
		})
	}
	if q.MaxInterestRate != nil {
		ceiling := *q.MaxInterestRate
		preds = append(preds, func(r *Record) bool {
			s, ok := r.SCF()
			return ok && s.InterestRate().LessThanOrEqual(ceiling)
		})
	}
	if q.MaxDurationDays != nil {
		days := *q.MaxDurationDays
		preds = append(preds, func(r *Record) bool {
			s, ok := r.SCF()
			return ok && s.DurationDays() <= days
		})
	}
	return preds
}

// Apply returns the records matching q.
func (q Query) Apply(records []*Record) []*Record {
	return Select(records, q.Predicates()...)
}

// Search returns the records whose item name, port or category contains term,
// ignoring case. An empty term matches everything.
func Search(records []*Record, term string) []*Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return Select(records)
	}
	return Select(records, func(r *Record) bool {
		return strings.Contains(strings.ToLower(r.ItemName), term) ||
			strings.Contains(strings.ToLower(r.Port), term) ||
			strings.Contains(strings.ToLower(string(r.Category)), term)
	})
}

// IsOpportunity reports whether the record is open to financiers: it requests
// a positive SCF amount.
func IsOpportunity(r *Record) bool {
	s, ok := r.SCF()
	return ok && s.Requested().IsPositive()
}

// Opportunities returns the records open to financiers.
func Opportunities(records []*Record) []*Record {
	return Select(records, IsOpportunity)
}
