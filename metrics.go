package dge

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Metrics summarizes a collection of records.
type Metrics struct {
	Count       int   `json:"count"`
	TotalValued Money `json:"total_valued"`
	SCFRequests int   `json:"scf_requests"` // records requesting SCF, whatever the amount
	Pending     int   `json:"pending"`
	UniquePorts int   `json:"unique_ports"`

	// SCF is nil when no record is an opportunity.
	SCF *SCFMetrics `json:"scf"`
}

// SCFMetrics summarizes the finance opportunities.
type SCFMetrics struct {
	Opportunities    int              `json:"opportunities"`
	TotalRequested   Money            `json:"total_requested"`
	MeanInterestRate Percent          `json:"mean_interest_rate"`
	MinInterestRate  Percent          `json:"min_interest_rate"`
	MaxInterestRate  Percent          `json:"max_interest_rate"`
	MeanDurationDays decimal.Decimal  `json:"mean_duration_days"`
	TotalInterest    Money            `json:"total_interest"`
	ByCategory       []CategoryAmount `json:"by_category"`  // sorted by category
	ByRiskTier       []RiskTierAmount `json:"by_risk_tier"` // Low to High, empty tiers omitted
}

// CategoryAmount is the SCF amount requested for a category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Amount   Money    `json:"amount"`
}

// RiskTierAmount is the SCF amount requested in a risk tier.
type RiskTierAmount struct {
	Tier   RiskTier `json:"tier"`
	Count  int      `json:"count"`
	Amount Money    `json:"amount"`
}

// NewMetrics computes the metrics of records. It returns nil if records is
// empty.
func NewMetrics(records []*Record) *Metrics {
	if len(records) == 0 {
		return nil
	}
	m := &Metrics{Count: len(records), TotalValued: USDollars(0)}
	ports := make(map[string]bool)
	for _, r := range records {
		m.TotalValued = m.TotalValued.Add(r.ValuedPrice())
		ports[r.Port] = true
		if r.NeedsSCF() {
			m.SCFRequests++
		}
		if r.Status == Pending {
			m.Pending++
		}
	}
	m.UniquePorts = len(ports)
	m.SCF = newSCFMetrics(Opportunities(records))
	return m
}

func newSCFMetrics(opportunities []*Record) *SCFMetrics {
	if len(opportunities) == 0 {
		return nil
	}
	m := &SCFMetrics{
		Opportunities:  len(opportunities),
		TotalRequested: USDollars(0),
		TotalInterest:  USDollars(0),
	}
	byCategory := make(map[Category]*CategoryAmount)
	byTier := make(map[RiskTier]*RiskTierAmount)
	var rates, days decimal.Decimal
	for i, r := range opportunities {
		s, _ := r.SCF()
		m.TotalRequested = m.TotalRequested.Add(s.Requested())
		m.TotalInterest = m.TotalInterest.Add(s.TotalInterest())
		rates = rates.Add(s.InterestRate().Decimal())
		days = days.Add(decimal.NewFromInt(int64(s.DurationDays())))
		if i == 0 || s.InterestRate().LessThan(m.MinInterestRate) {
			m.MinInterestRate = s.InterestRate()
		}
		if i == 0 || s.InterestRate().GreaterThan(m.MaxInterestRate) {
			m.MaxInterestRate = s.InterestRate()
		}

		c, ok := byCategory[r.Category]
		if !ok {
			c = &CategoryAmount{Category: r.Category, Amount: USDollars(0)}
			byCategory[r.Category] = c
		}
		c.Count++
		c.Amount = c.Amount.Add(s.Requested())

		t, ok := byTier[s.RiskTier()]
		if !ok {
			t = &RiskTierAmount{Tier: s.RiskTier(), Amount: USDollars(0)}
			byTier[s.RiskTier()] = t
		}
		t.Count++
		t.Amount = t.Amount.Add(s.Requested())
	}
	n := decimal.NewFromInt(int64(len(opportunities)))
	m.MeanInterestRate = Percent{value: rates.Div(n)}
	m.MeanDurationDays = days.Div(n)

	for _, c := range byCategory {
		m.ByCategory = append(m.ByCategory, *c)
	}
	sort.Slice(m.ByCategory, func(i, j int) bool { return m.ByCategory[i].Category < m.ByCategory[j].Category })
	for _, tier := range []RiskTier{LowRisk, MediumRisk, HighRisk} {
		if t, ok := byTier[tier]; ok {
			m.ByRiskTier = append(m.ByRiskTier, *t)
		}
	}
	return m
}
