package dge

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SCF limits.
const (
	SCFCapPercent   = 60  // max share of the valued price that can be financed
	MaxInterestRate = 50  // percent
	MinDurationDays = 1   // days
	MaxDurationDays = 180 // days
	daysPerYear     = 365 // actual/365
)

// Risk tier thresholds, in percent.
var (
	mediumRiskRate = decimal.NewFromInt(15)
	highRiskRate   = decimal.NewFromInt(25)
)

// RiskTier is a coarse bucket derived from the interest rate.
type RiskTier int

const (
	LowRisk RiskTier = iota
	MediumRisk
	HighRisk
)

func (r RiskTier) String() string {
	switch r {
	case LowRisk:
		return "Low"
	case MediumRisk:
		return "Medium"
	case HighRisk:
		return "High"
	default:
		return "Unknown"
	}
}

// MarshalText writes the tier name.
func (r RiskTier) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText parses the tier name.
func (r *RiskTier) UnmarshalText(text []byte) error {
	t, err := ParseRiskTier(string(text))
	if err != nil {
		return err
	}
	*r = t
	return nil
}

// ParseRiskTier parses "Low", "Medium" or "High", ignoring case.
func ParseRiskTier(s string) (RiskTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LowRisk, nil
	case "medium":
		return MediumRisk, nil
	case "high":
		return HighRisk, nil
	default:
		return 0, fmt.Errorf("unknown risk tier: %q", s)
	}
}

// RiskTierOf returns the risk tier of an interest rate:
// below 15% is Low, below 25% is Medium, High otherwise.
func RiskTierOf(rate Percent) RiskTier {
	switch {
	case rate.value.LessThan(mediumRiskRate):
		return LowRisk
	case rate.value.LessThan(highRiskRate):
		return MediumRisk
	default:
		return HighRisk
	}
}

// MaxSCF returns the largest amount that can be financed against valued.
func MaxSCF(valued Money) Money {
	return valued.Percent(P(SCFCapPercent))
}

// SCFDetails is a supply chain finance request.
//
// Only the three inputs are stored, all other figures are computed from them.
type SCFDetails struct {
	requested Money
	rate      Percent
	days      int
}

// ComputeSCFTerms validates a financing request against valuedPrice and
// returns its terms.
//
// The requested amount is never truncated: an amount above the cap is an
// ErrScfCapExceeded error.
func ComputeSCFTerms(valuedPrice, requested Money, rate Percent, days int) (SCFDetails, error) {
	if requested.IsNegative() {
		return SCFDetails{}, fmt.Errorf("%w: requested %s must not be negative", ErrScfCapExceeded, requested.Decimal())
	}
	if limit := MaxSCF(valuedPrice); requested.GreaterThan(limit) {
		return SCFDetails{}, fmt.Errorf("%w: requested %s, max %s (%d%% of %s)", ErrScfCapExceeded, requested.Decimal(), limit.Decimal(), SCFCapPercent, valuedPrice.Decimal())
	}
	s := SCFDetails{requested: requested, rate: rate, days: days}
	if err := s.checkTerms(); err != nil {
		return SCFDetails{}, err
	}
	return s, nil
}

func (s SCFDetails) checkTerms() error {
	if !s.rate.within(decimal.Zero, decimal.NewFromInt(MaxInterestRate)) {
		return fmt.Errorf("%w: interest rate %s, want (0,%d]", ErrInvalidScfTerm, s.rate, MaxInterestRate)
	}
	if s.days < MinDurationDays || s.days > MaxDurationDays {
		return fmt.Errorf("%w: duration %d days, want [%d,%d]", ErrInvalidScfTerm, s.days, MinDurationDays, MaxDurationDays)
	}
	return nil
}

func (s SCFDetails) Requested() Money      { return s.requested }
func (s SCFDetails) InterestRate() Percent { return s.rate }
func (s SCFDetails) DurationDays() int     { return s.days }
func (s SCFDetails) RiskTier() RiskTier    { return RiskTierOf(s.rate) }

// TotalInterest returns requested * rate/100 * days/365, simple interest.
func (s SCFDetails) TotalInterest() Money {
	num := s.requested.value.Mul(s.rate.value).Mul(decimal.NewFromInt(int64(s.days)))
	return Money{value: num.Div(decimal.NewFromInt(100 * daysPerYear)), cur: s.requested.cur}
}

// TotalRepayment returns requested + interest.
func (s SCFDetails) TotalRepayment() Money {
	return s.requested.Add(s.TotalInterest())
}
