package dge

import (
	"reflect"
	"testing"
)

// testRecords returns a small collection:
//
//	#0 Electronics Mumbai  SCF 300 @12% 30d
//	#1 Textiles    Chennai no SCF
//	#2 Jewelry     Mumbai  SCF 1000 @30% 90d
//	#3 Electronics Kandla  SCF 0 @20% 10d
func testRecords(t *testing.T) []*Record {
	t.Helper()
	mk := func(cat Category, price float64, port string) *Record {
		r := newTestRecord(t, cat, price)
		r.Port = port
		return r
	}
	rs := []*Record{
		mk("Electronics", 1000, "Mumbai"),
		mk("Textiles", 200, "Chennai"),
		mk("Jewelry", 5000, "Mumbai"),
		mk("Electronics", 400, "Kandla"),
	}
	rs[1].ItemName = "Cotton rolls"
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(rs[0].RequestSCF(USDollars(300), P(12), 30))
	must(rs[2].RequestSCF(USDollars(1000), P(30), 90))
	must(rs[3].RequestSCF(USDollars(0), P(20), 10))
	return rs
}

func indexes(all, selected []*Record) []int {
	var idx []int
	for _, s := range selected {
		for i, r := range all {
			if r == s {
				idx = append(idx, i)
			}
		}
	}
	return idx
}

func TestQueryApply(t *testing.T) {
	rs := testRecords(t)
	amount := USDollars(300)
	rate := P(20)
	days := 30
	testCases := []struct {
		name  string
		query Query
		want  []int
	}{
		{"zero query", Query{}, []int{0, 1, 2, 3}},
		{"all wildcards", Query{Category: All, Port: All}, []int{0, 1, 2, 3}},
		{"category", Query{Category: "Electronics"}, []int{0, 3}},
		{"port", Query{Port: "Mumbai"}, []int{0, 2}},
		{"category and port", Query{Category: "Electronics", Port: "Mumbai"}, []int{0}},
		{"with SCF", Query{SCF: WithSCF}, []int{0, 2, 3}},
		{"without SCF", Query{SCF: WithoutSCF}, []int{1}},
		{"min amount", Query{MinSCFAmount: &amount}, []int{0, 2}},
		{"max rate", Query{MaxInterestRate: &rate}, []int{0, 3}},
		{"max duration", Query{MaxDurationDays: &days}, []int{0, 3}},
		{"no match", Query{Port: "Atlantis"}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.query.Apply(rs)
			if idx := indexes(rs, got); !reflect.DeepEqual(idx, tc.want) {
				t.Errorf("Apply() = %v, want %v", idx, tc.want)
			}
			// applying a query twice is the same as once
			if again := tc.query.Apply(got); !reflect.DeepEqual(again, got) {
				t.Errorf("Apply() is not idempotent: %v then %v", indexes(rs, got), indexes(rs, again))
			}
		})
	}
}

func TestSearch(t *testing.T) {
	rs := testRecords(t)
	testCases := []struct {
		term string
		want []int
	}{
		{"", []int{0, 1, 2, 3}},
		{"  ", []int{0, 1, 2, 3}},
		{"laptop", []int{0, 2, 3}},
		{"COTTON", []int{1}},
		{"mum", []int{0, 2}},
		{"jewel", []int{2}},
		{"zzz", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.term, func(t *testing.T) {
			if idx := indexes(rs, Search(rs, tc.term)); !reflect.DeepEqual(idx, tc.want) {
				t.Errorf("Search(%q) = %v, want %v", tc.term, idx, tc.want)
			}
		})
	}
}

func TestOpportunities(t *testing.T) {
	rs := testRecords(t)
	if idx := indexes(rs, Opportunities(rs)); !reflect.DeepEqual(idx, []int{0, 2}) {
		t.Errorf("Opportunities() = %v, want [0 2]", idx)
	}
	if got := Opportunities(nil); len(got) != 0 {
		t.Errorf("Opportunities(nil) = %v, want empty", got)
	}
}

func TestParseSCFFilter(t *testing.T) {
	testCases := map[string]SCFFilter{"": AnySCF, "All": AnySCF, "yes": WithSCF, "No": WithoutSCF}
	for in, want := range testCases {
		got, err := ParseSCFFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseSCFFilter(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseSCFFilter("maybe"); err == nil {
		t.Error("ParseSCFFilter(maybe) expected an error")
	}
}
