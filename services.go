package dge

import (
	"fmt"
	"slices"
	"strings"
)

// ServiceKind identifies an ancillary logistics or compliance service.
type ServiceKind string

const (
	InspectionService    ServiceKind = "Inspection"
	CertificationService ServiceKind = "Certification Verification"
	BuyerSwapService     ServiceKind = "Buyer Swap Discovery"
	WarehousingService   ServiceKind = "Warehousing"
	PackagingService     ServiceKind = "Packaging"
	TruckingService      ServiceKind = "Trucking"
	InsuranceService     ServiceKind = "Insurance"
	LegalService         ServiceKind = "Legal Documentation"
)

// ServiceKinds lists every service kind in canonical order.
var ServiceKinds = []ServiceKind{
	InspectionService,
	CertificationService,
	BuyerSwapService,
	WarehousingService,
	PackagingService,
	TruckingService,
	InsuranceService,
	LegalService,
}

// ParseServiceKind parses a service kind label, ignoring case.
func ParseServiceKind(s string) (ServiceKind, error) {
	return parseChoice(s, ServiceKinds)
}

// Service is one of the ancillary service variants: *Inspection,
// *CertificationVerification, *BuyerSwapDiscovery, *Warehousing, *Packaging,
// *Trucking, *Insurance or *LegalDocumentation.
type Service interface {
	Kind() ServiceKind
	// Validate checks the service's fields.
	Validate() error
	// Cost is the amount charged for the service, zero if unknown.
	Cost() Money
	// encode writes the service's labeled fields; it also seals the interface.
	encode(w *jsonObjectWriter)
}

// Choices of the service fields.
type (
	InspectionType     string
	VerificationStatus string
	PackageType        string
	InsuranceType      string
	DocumentType       string
	ComplianceStatus   string
)

var (
	InspectionTypes      = []InspectionType{"Visual", "Technical", "Quality", "Compliance"}
	VerificationStatuses = []VerificationStatus{"Pending", "Verified", "Failed"}
	PackageTypes         = []PackageType{"Box", "Crate", "Pallet", "Custom"}
	InsuranceTypes       = []InsuranceType{"Transit", "Storage", "Comprehensive"}
	DocumentTypes        = []DocumentType{"Bill of Lading", "Commercial Invoice", "Packing List", "Certificate of Origin"}
	ComplianceStatuses   = []ComplianceStatus{"Compliant", "Non-Compliant", "Under Review"}
)

// parseChoice returns the element of choices equal to s, ignoring case.
func parseChoice[T ~string](s string, choices []T) (T, error) {
	s = strings.TrimSpace(s)
	for _, c := range choices {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown value %q, want one of %v", s, choices)
}

func checkChoice[T ~string](field string, v T, choices []T) error {
	if !slices.Contains(choices, v) {
		return fmt.Errorf("%w: %s %q, want one of %v", ErrInvalidService, field, v, choices)
	}
	return nil
}

func checkAmount(field string, m Money) error {
	if m.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidService, field, m.Decimal())
	}
	return nil
}

// Inspection of the goods by an inspector.
type Inspection struct {
	InspectorID   string
	Type          InspectionType
	Notes         string
	EstimatedCost Money
}

func (*Inspection) Kind() ServiceKind { return InspectionService }
func (s *Inspection) Cost() Money     { return s.EstimatedCost }
func (s *Inspection) Validate() error {
	if err := checkChoice("inspection type", s.Type, InspectionTypes); err != nil {
		return err
	}
	return checkAmount("estimated cost", s.EstimatedCost)
}
func (s *Inspection) encode(w *jsonObjectWriter) {
	w.Append("Inspector ID", s.InspectorID).
		Append("Inspection Type", s.Type).
		Append("Inspection Notes", s.Notes).
		Append("Estimated Cost", s.EstimatedCost)
}

// CertificationVerification checks the goods' certificates (ISO, BIS, ...).
type CertificationVerification struct {
	CertificationType string
	Authority         string
	Status            VerificationStatus
}

func (*CertificationVerification) Kind() ServiceKind { return CertificationService }
func (*CertificationVerification) Cost() Money       { return USDollars(0) }
func (s *CertificationVerification) Validate() error {
	return checkChoice("verification status", s.Status, VerificationStatuses)
}
func (s *CertificationVerification) encode(w *jsonObjectWriter) {
	w.Append("Certification Type", s.CertificationType).
		Append("Certification Authority", s.Authority).
		Append("Verified", s.Status)
}

// BuyerSwapDiscovery records an alternative buyer for the goods.
type BuyerSwapDiscovery struct {
	AlternativeBuyer string
	ContactInfo      string
	NegotiatedPrice  Money
}

func (*BuyerSwapDiscovery) Kind() ServiceKind { return BuyerSwapService }
func (*BuyerSwapDiscovery) Cost() Money       { return USDollars(0) }
func (s *BuyerSwapDiscovery) Validate() error {
	return checkAmount("negotiated price", s.NegotiatedPrice)
}
func (s *BuyerSwapDiscovery) encode(w *jsonObjectWriter) {
	w.Append("Alternative Buyer", s.AlternativeBuyer).
		Append("Contact Info", s.ContactInfo).
		Append("Negotiated Price", s.NegotiatedPrice)
}

// Warehousing stores the goods for a number of days.
type Warehousing struct {
	Location     string
	DurationDays int
	CostPerDay   Money
}

func (*Warehousing) Kind() ServiceKind { return WarehousingService }
func (s *Warehousing) Cost() Money     { return s.CostPerDay.MulInt(s.DurationDays) }
func (s *Warehousing) Validate() error {
	if s.DurationDays < 1 {
		return fmt.Errorf("%w: storage duration must be at least 1 day, got %d", ErrInvalidService, s.DurationDays)
	}
	return checkAmount("storage cost per day", s.CostPerDay)
}
func (s *Warehousing) encode(w *jsonObjectWriter) {
	w.Append("Warehouse Location", s.Location).
		Append("Storage Duration (days)", s.DurationDays).
		Append("Storage Cost per Day", s.CostPerDay)
}

// Packaging repacks the goods.
type Packaging struct {
	Type            PackageType
	SpecialHandling bool
	PackagingCost   Money
}

func (*Packaging) Kind() ServiceKind { return PackagingService }
func (s *Packaging) Cost() Money     { return s.PackagingCost }
func (s *Packaging) Validate() error {
	if err := checkChoice("package type", s.Type, PackageTypes); err != nil {
		return err
	}
	return checkAmount("packaging cost", s.PackagingCost)
}
func (s *Packaging) encode(w *jsonObjectWriter) {
	w.Append("Package Type", s.Type).
		Append("Special Handling", s.SpecialHandling).
		Append("Packaging Cost", s.PackagingCost)
}

// Trucking moves the goods by road.
type Trucking struct {
	Pickup        string
	Drop          string
	Transporter   string
	TransportCost Money
}

func (*Trucking) Kind() ServiceKind { return TruckingService }
func (s *Trucking) Cost() Money     { return s.TransportCost }
func (s *Trucking) Validate() error {
	return checkAmount("transport cost", s.TransportCost)
}
func (s *Trucking) encode(w *jsonObjectWriter) {
	w.Append("Pickup Location", s.Pickup).
		Append("Drop Location", s.Drop).
		Append("Transporter", s.Transporter).
		Append("Transport Cost", s.TransportCost)
}

// Insurance covers the goods.
type Insurance struct {
	Type           InsuranceType
	CoverageAmount Money
	Premium        Money
}

// insurancePremiumPercent is the default premium as a share of the valued price.
const insurancePremiumPercent = 2

// NewInsurance returns an insurance covering valuedPrice with the default
// premium. Both amounts are frozen: they do not follow later revaluations.
func NewInsurance(t InsuranceType, valuedPrice Money) *Insurance {
	return &Insurance{
		Type:           t,
		CoverageAmount: valuedPrice,
		Premium:        valuedPrice.Percent(P(insurancePremiumPercent)),
	}
}

func (*Insurance) Kind() ServiceKind { return InsuranceService }
func (s *Insurance) Cost() Money     { return s.Premium }
func (s *Insurance) Validate() error {
	if err := checkChoice("insurance type", s.Type, InsuranceTypes); err != nil {
		return err
	}
	if err := checkAmount("coverage amount", s.CoverageAmount); err != nil {
		return err
	}
	return checkAmount("premium", s.Premium)
}
func (s *Insurance) encode(w *jsonObjectWriter) {
	w.Append("Insurance Type", s.Type).
		Append("Coverage Amount", s.CoverageAmount).
		Append("Premium", s.Premium)
}

// LegalDocumentation tracks the shipping documents and their compliance.
type LegalDocumentation struct {
	Documents  []DocumentType
	Compliance ComplianceStatus
}

func (*LegalDocumentation) Kind() ServiceKind { return LegalService }
func (*LegalDocumentation) Cost() Money       { return USDollars(0) }
func (s *LegalDocumentation) Validate() error {
	for _, d := range s.Documents {
		if err := checkChoice("document type", d, DocumentTypes); err != nil {
			return err
		}
	}
	return checkChoice("legal compliance", s.Compliance, ComplianceStatuses)
}
func (s *LegalDocumentation) encode(w *jsonObjectWriter) {
	docs := s.Documents
	if docs == nil {
		docs = []DocumentType{}
	}
	w.Append("Document Type", docs).
		Append("Legal Compliance", s.Compliance)
}

// DefaultService returns the service of the given kind filled with default
// values. valuedPrice is used for the price dependent defaults.
func DefaultService(kind ServiceKind, valuedPrice Money) (Service, error) {
	switch kind {
	case InspectionService:
		return &Inspection{Type: "Visual", EstimatedCost: USDollars(100)}, nil
	case CertificationService:
		return &CertificationVerification{Status: "Pending"}, nil
	case BuyerSwapService:
		return &BuyerSwapDiscovery{NegotiatedPrice: USDollars(0)}, nil
	case WarehousingService:
		return &Warehousing{DurationDays: 10, CostPerDay: USDollars(10)}, nil
	case PackagingService:
		return &Packaging{Type: "Box", PackagingCost: USDollars(50)}, nil
	case TruckingService:
		return &Trucking{TransportCost: USDollars(200)}, nil
	case InsuranceService:
		return NewInsurance("Transit", valuedPrice), nil
	case LegalService:
		return &LegalDocumentation{Compliance: "Under Review"}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidService, kind)
	}
}

// Services holds at most one service per kind.
// The zero value is empty and ready to use.
type Services struct {
	byKind map[ServiceKind]Service
}

// Select validates svc and adds it, replacing any service of the same kind.
func (s *Services) Select(svc Service) error {
	if svc == nil {
		return fmt.Errorf("%w: nil service", ErrInvalidService)
	}
	if err := svc.Validate(); err != nil {
		return fmt.Errorf("%s: %w", svc.Kind(), err)
	}
	if s.byKind == nil {
		s.byKind = make(map[ServiceKind]Service)
	}
	s.byKind[svc.Kind()] = svc
	return nil
}

// Deselect removes the service of that kind, if any.
func (s *Services) Deselect(kind ServiceKind) {
	delete(s.byKind, kind)
}

// Get returns the service of that kind.
func (s *Services) Get(kind ServiceKind) (Service, bool) {
	svc, ok := s.byKind[kind]
	return svc, ok
}

// Len returns the number of selected services.
func (s *Services) Len() int { return len(s.byKind) }

// Kinds returns the selected kinds in canonical order.
func (s *Services) Kinds() []ServiceKind {
	var kinds []ServiceKind
	for _, k := range ServiceKinds {
		if _, ok := s.byKind[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// TotalCost sums the cost of all selected services.
func (s *Services) TotalCost() Money {
	total := USDollars(0)
	for _, svc := range s.byKind {
		total = total.Add(svc.Cost())
	}
	return total
}

// MarshalJSON writes the services as an object keyed by kind label.
func (s Services) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, k := range s.Kinds() {
		var sw jsonObjectWriter
		s.byKind[k].encode(&sw)
		raw, err := sw.MarshalJSON()
		w.Raw(string(k), raw, err)
	}
	return w.MarshalJSON()
}
