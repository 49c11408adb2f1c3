package dge

import (
	"errors"
	"testing"
)

func TestRiskTierOf(t *testing.T) {
	testCases := []struct {
		rate Percent
		want RiskTier
	}{
		{P(0.5), LowRisk},
		{P(14.99), LowRisk},
		{P(15), MediumRisk},
		{P(24.99), MediumRisk},
		{P(25), HighRisk},
		{P(50), HighRisk},
	}
	for _, tc := range testCases {
		if got := RiskTierOf(tc.rate); got != tc.want {
			t.Errorf("RiskTierOf(%v) = %v, want %v", tc.rate, got, tc.want)
		}
	}
}

func TestParseRiskTier(t *testing.T) {
	for _, tier := range []RiskTier{LowRisk, MediumRisk, HighRisk} {
		got, err := ParseRiskTier(tier.String())
		if err != nil || got != tier {
			t.Errorf("ParseRiskTier(%q) = %v, %v", tier, got, err)
		}
	}
	if _, err := ParseRiskTier("extreme"); err == nil {
		t.Error("ParseRiskTier(extreme) expected an error")
	}
}

func TestComputeSCFTerms(t *testing.T) {
	valued := USDollars(1000)
	testCases := []struct {
		name      string
		requested Money
		rate      Percent
		days      int
		wantErr   error
	}{
		{"typical", USDollars(300), P(12), 30, nil},
		{"at the cap", USDollars(600), P(12), 30, nil},
		{"zero amount", USDollars(0), P(12), 30, nil},
		{"above the cap", USDollars(601), P(12), 30, ErrScfCapExceeded},
		{"just above the cap", USDollars(600.01), P(12), 30, ErrScfCapExceeded},
		{"negative amount", USDollars(-1), P(12), 30, ErrScfCapExceeded},
		{"zero rate", USDollars(300), P(0), 30, ErrInvalidScfTerm},
		{"max rate", USDollars(300), P(50), 30, nil},
		{"rate above max", USDollars(300), P(50.5), 30, ErrInvalidScfTerm},
		{"one day", USDollars(300), P(12), 1, nil},
		{"zero days", USDollars(300), P(12), 0, ErrInvalidScfTerm},
		{"max days", USDollars(300), P(12), 180, nil},
		{"too many days", USDollars(300), P(12), 181, ErrInvalidScfTerm},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ComputeSCFTerms(valued, tc.requested, tc.rate, tc.days)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ComputeSCFTerms() error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil {
				return
			}
			if !s.Requested().Equal(tc.requested) {
				t.Errorf("Requested() = %v, want %v (never truncated)", s.Requested(), tc.requested)
			}
		})
	}
}

func TestSCFInterest(t *testing.T) {
	s, err := ComputeSCFTerms(USDollars(1000), USDollars(300), P(12), 30)
	if err != nil {
		t.Fatalf("ComputeSCFTerms() unexpected error: %v", err)
	}
	if got, want := s.TotalInterest().Round(), "2.96"; got != want {
		t.Errorf("TotalInterest() = %s, want %s", got, want)
	}
	if got, want := s.TotalRepayment().Round(), "302.96"; got != want {
		t.Errorf("TotalRepayment() = %s, want %s", got, want)
	}
	if got, want := s.RiskTier(), LowRisk; got != want {
		t.Errorf("RiskTier() = %v, want %v", got, want)
	}
	// full precision is kept until display
	if got, want := s.TotalInterest().Decimal().String(), "2.9589041095890411"; got != want {
		t.Errorf("TotalInterest() = %s, want %s", got, want)
	}
}

func TestSCFInterestIsMonotonic(t *testing.T) {
	base, err := ComputeSCFTerms(USDollars(1000), USDollars(300), P(12), 30)
	if err != nil {
		t.Fatal(err)
	}
	variants := []struct {
		name      string
		requested Money
		rate      Percent
		days      int
	}{
		{"more money", USDollars(301), P(12), 30},
		{"higher rate", USDollars(300), P(12.5), 30},
		{"longer", USDollars(300), P(12), 31},
	}
	for _, v := range variants {
		s, err := ComputeSCFTerms(USDollars(1000), v.requested, v.rate, v.days)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", v.name, err)
		}
		if !s.TotalInterest().GreaterThan(base.TotalInterest()) {
			t.Errorf("%s: interest %v not greater than %v", v.name, s.TotalInterest(), base.TotalInterest())
		}
		if !s.TotalRepayment().Equal(s.Requested().Add(s.TotalInterest())) {
			t.Errorf("%s: repayment %v != requested + interest", v.name, s.TotalRepayment())
		}
	}
}

func TestMaxSCF(t *testing.T) {
	if got, want := MaxSCF(USDollars(500)), USDollars(300); !got.Equal(want) {
		t.Errorf("MaxSCF(500) = %v, want %v", got, want)
	}
}
