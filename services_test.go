package dge

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultService(t *testing.T) {
	valued := USDollars(500)
	testCases := []struct {
		kind     ServiceKind
		wantCost Money
	}{
		{InspectionService, USDollars(100)},
		{CertificationService, USDollars(0)},
		{BuyerSwapService, USDollars(0)},
		{WarehousingService, USDollars(100)},
		{PackagingService, USDollars(50)},
		{TruckingService, USDollars(200)},
		{InsuranceService, USDollars(10)},
		{LegalService, USDollars(0)},
	}
	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			svc, err := DefaultService(tc.kind, valued)
			if err != nil {
				t.Fatalf("DefaultService() unexpected error: %v", err)
			}
			if svc.Kind() != tc.kind {
				t.Errorf("Kind() = %q, want %q", svc.Kind(), tc.kind)
			}
			if err := svc.Validate(); err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
			if !svc.Cost().Equal(tc.wantCost) {
				t.Errorf("Cost() = %v, want %v", svc.Cost(), tc.wantCost)
			}
		})
	}
	if _, err := DefaultService("Teleportation", valued); !errors.Is(err, ErrInvalidService) {
		t.Errorf("DefaultService(Teleportation) error = %v, want %v", err, ErrInvalidService)
	}
}

func TestInsuranceIsFrozen(t *testing.T) {
	ins := NewInsurance("Comprehensive", USDollars(500))
	if !ins.CoverageAmount.Equal(USDollars(500)) || !ins.Premium.Equal(USDollars(10)) {
		t.Fatalf("NewInsurance() = %v / %v, want 500 / 10", ins.CoverageAmount, ins.Premium)
	}

	r := newTestRecord(t, "Electronics", 1000)
	var s Services
	if err := s.Select(ins); err != nil {
		t.Fatal(err)
	}
	r.Services = s
	if err := r.Reprice(USDollars(2000), P(50)); err != nil {
		t.Fatal(err)
	}
	got, _ := r.Services.Get(InsuranceService)
	if !got.(*Insurance).CoverageAmount.Equal(USDollars(500)) {
		t.Errorf("coverage followed the revaluation: %v", got.(*Insurance).CoverageAmount)
	}
}

func TestServicesSelect(t *testing.T) {
	var s Services
	if s.Len() != 0 || s.Kinds() != nil {
		t.Fatalf("zero Services is not empty")
	}

	invalid := []Service{
		&Inspection{Type: "Sniffing"},
		&Warehousing{DurationDays: 0, CostPerDay: USDollars(10)},
		&Packaging{Type: "Box", PackagingCost: USDollars(-1)},
		&LegalDocumentation{Documents: []DocumentType{"Napkin"}, Compliance: "Compliant"},
		nil,
	}
	for _, svc := range invalid {
		if err := s.Select(svc); !errors.Is(err, ErrInvalidService) {
			t.Errorf("Select(%#v) error = %v, want %v", svc, err, ErrInvalidService)
		}
	}
	if s.Len() != 0 {
		t.Errorf("invalid services were selected: %v", s.Kinds())
	}

	s.Select(&Trucking{Pickup: "Mumbai", TransportCost: USDollars(200)})
	s.Select(&Inspection{Type: "Visual", EstimatedCost: USDollars(100)})
	s.Select(&Trucking{Pickup: "Chennai", TransportCost: USDollars(300)}) // replaces
	if got, want := s.Kinds(), []ServiceKind{InspectionService, TruckingService}; !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
	if got, want := s.TotalCost(), USDollars(400); !got.Equal(want) {
		t.Errorf("TotalCost() = %v, want %v", got, want)
	}
	s.Deselect(InspectionService)
	if _, ok := s.Get(InspectionService); ok {
		t.Error("Deselect() did not remove the service")
	}
}

func TestServicesMarshalJSON(t *testing.T) {
	var s Services
	s.Select(&Packaging{Type: "Crate", SpecialHandling: true, PackagingCost: USDollars(75)})
	s.Select(&LegalDocumentation{Compliance: "Compliant"})
	got, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() unexpected error: %v", err)
	}
	want := `{"Packaging":{"Package Type":"Crate","Special Handling":true,"Packaging Cost":75},` +
		`"Legal Documentation":{"Document Type":[],"Legal Compliance":"Compliant"}}`
	if string(got) != want {
		t.Errorf("MarshalJSON() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseServiceKind(t *testing.T) {
	got, err := ParseServiceKind("buyer swap discovery")
	if err != nil || got != BuyerSwapService {
		t.Errorf("ParseServiceKind() = %q, %v", got, err)
	}
	if _, err := ParseServiceKind("Catering"); err == nil {
		t.Error("ParseServiceKind(Catering) expected an error")
	}
}
