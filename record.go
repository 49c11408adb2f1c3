package dge

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/etnz/dge/date"
)

// Status is the processing status of a record.
type Status string

const (
	Pending  Status = "Pending"
	Approved Status = "Approved"
	Financed Status = "Financed"
	Closed   Status = "Closed"
)

// Statuses lists all statuses.
var Statuses = []Status{Pending, Approved, Financed, Closed}

// ParseStatus parses a status, ignoring case.
func ParseStatus(s string) (Status, error) { return parseChoice(s, Statuses) }

// Urgency of the disposal of the goods.
type Urgency string

const (
	LowUrgency      Urgency = "Low"
	MediumUrgency   Urgency = "Medium"
	HighUrgency     Urgency = "High"
	CriticalUrgency Urgency = "Critical"
)

// Urgencies lists all urgency levels.
var Urgencies = []Urgency{LowUrgency, MediumUrgency, HighUrgency, CriticalUrgency}

// ParseUrgency parses an urgency level, ignoring case.
func ParseUrgency(s string) (Urgency, error) { return parseChoice(s, Urgencies) }

// Intake is the draft of a new record, as filled by an intake form.
type Intake struct {
	ItemName      string
	HSCode        string
	Quantity      int
	Port          string
	Reason        string
	Category      Category
	RejectionDate date.Date // zero means the intake day
	Urgency       Urgency   // empty means Low
	OriginalPrice Money
	Override      *Percent // nil means the category default
	Attachment    string   // reference to an externally stored file
}

// Record is one rejected or damaged shipment line item.
type Record struct {
	ID            string
	ItemName      string
	HSCode        string
	Quantity      int
	Port          string
	Reason        string
	Category      Category
	RejectionDate date.Date
	Urgency       Urgency
	Attachment    string
	Services      Services
	Status        Status
	CreatedAt     time.Time

	originalPrice    Money
	valuationPercent Percent
	scf              *SCFDetails
}

// NewRecord validates the intake, values the goods and returns a new Pending
// record created at now.
func NewRecord(t *CategoryTable, in Intake, now time.Time) (*Record, error) {
	var problems []string
	if strings.TrimSpace(in.ItemName) == "" {
		problems = append(problems, "item name is required")
	}
	if strings.TrimSpace(in.Port) == "" {
		problems = append(problems, "port of rejection is required")
	}
	if in.Quantity < 1 {
		problems = append(problems, fmt.Sprintf("quantity must be at least 1, got %d", in.Quantity))
	}
	if in.Urgency == "" {
		in.Urgency = LowUrgency
	} else if _, err := parseChoice(string(in.Urgency), Urgencies); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, "; "))
	}

	v, err := t.Valuate(in.Category, in.OriginalPrice, in.Override)
	if err != nil {
		return nil, err
	}

	id, err := NewID()
	if err != nil {
		return nil, err
	}
	rejected := in.RejectionDate
	if rejected.IsZero() {
		rejected = date.Of(now)
	}
	return &Record{
		ID:               id,
		ItemName:         strings.TrimSpace(in.ItemName),
		HSCode:           strings.TrimSpace(in.HSCode),
		Quantity:         in.Quantity,
		Port:             strings.TrimSpace(in.Port),
		Reason:           in.Reason,
		Category:         in.Category,
		RejectionDate:    rejected,
		Urgency:          in.Urgency,
		Attachment:       in.Attachment,
		Status:           Pending,
		CreatedAt:        now,
		originalPrice:    in.OriginalPrice,
		valuationPercent: v.Percent,
	}, nil
}

func (r *Record) OriginalPrice() Money      { return r.originalPrice }
func (r *Record) ValuationPercent() Percent { return r.valuationPercent }

// ValuedPrice returns the recovery value: original price * valuation percent / 100.
func (r *Record) ValuedPrice() Money { return ValuedPrice(r.originalPrice, r.valuationPercent) }

// Reprice changes the original price and the valuation percent.
//
// It fails if the new valued price would make the current SCF request exceed
// its cap. Services keep the amounts they were created with.
func (r *Record) Reprice(original Money, percent Percent) error {
	if !original.IsPositive() {
		return fmt.Errorf("%w: original price %s must be greater than 0", ErrInvalidPrice, original.Decimal())
	}
	if err := checkValuationPercent(percent); err != nil {
		return err
	}
	if r.scf != nil {
		if _, err := ComputeSCFTerms(ValuedPrice(original, percent), r.scf.requested, r.scf.rate, r.scf.days); err != nil {
			return err
		}
	}
	r.originalPrice, r.valuationPercent = original, percent
	return nil
}

// NeedsSCF reports whether supply chain finance was requested.
func (r *Record) NeedsSCF() bool { return r.scf != nil }

// SCF returns the finance request, if any.
func (r *Record) SCF() (SCFDetails, bool) {
	if r.scf == nil {
		return SCFDetails{}, false
	}
	return *r.scf, true
}

// RequestSCF attaches a finance request computed against the record's valued
// price, replacing any previous one.
func (r *Record) RequestSCF(requested Money, rate Percent, days int) error {
	s, err := ComputeSCFTerms(r.ValuedPrice(), requested, rate, days)
	if err != nil {
		return err
	}
	r.scf = &s
	return nil
}

// CancelSCF removes the finance request.
func (r *Record) CancelSCF() { r.scf = nil }

// SelectService adds the default service of that kind, priced against the
// current valued price.
func (r *Record) SelectService(kind ServiceKind) (Service, error) {
	svc, err := DefaultService(kind, r.ValuedPrice())
	if err != nil {
		return nil, err
	}
	return svc, r.Services.Select(svc)
}

// clone returns a copy of r that can be modified without affecting r.
// Services themselves are shared.
func (r *Record) clone() *Record {
	c := *r
	if r.scf != nil {
		scf := *r.scf
		c.scf = &scf
	}
	c.Services = Services{}
	if r.Services.byKind != nil {
		c.Services.byKind = maps.Clone(r.Services.byKind)
	}
	return &c
}
