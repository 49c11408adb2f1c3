package dge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/dge/date"
)

// This file contains the persisted form of the record collection: a single
// JSON array of objects using human readable labels, e.g.
//
//	{"ID": "DGE-...", "Item Name": "Laptops", "Port": "Mumbai", ...,
//	 "Needs SCF": true, "SCF Details": {"Requested": 300, ...}}
//
// Derived values (valued price, SCF totals and risk) are written for the
// convenience of readers, they are always recomputed when decoding.

// Record labels.
const (
	attrID               = "ID"
	attrItemName         = "Item Name"
	attrHSCode           = "HS Code"
	attrQuantity         = "Quantity"
	attrPort             = "Port"
	attrReason           = "Reason"
	attrCategory         = "Category"
	attrRejectionDate    = "Rejection Date"
	attrUrgency          = "Urgency"
	attrOriginalPrice    = "Original Price"
	attrValuationPercent = "Valuation %"
	attrValuedPrice      = "Valued Price"
	attrFile             = "File"
	attrServices         = "Ancillary Services"
	attrNeedsSCF         = "Needs SCF"
	attrSCFDetails       = "SCF Details"
	attrStatus           = "Status"
	attrCreatedAt        = "Created At"
)

// SCF details labels.
const (
	attrRequested      = "Requested"
	attrInterestRate   = "Interest Rate (%)"
	attrDuration       = "Duration (days)"
	attrTotalInterest  = "Total Interest"
	attrTotalRepayment = "Total Repayment"
	attrRiskScore      = "Risk Score"
)

var createdAtFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// MarshalJSON writes the SCF request with its derived figures.
func (s SCFDetails) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append(attrRequested, s.requested).
		Append(attrInterestRate, s.rate).
		Append(attrDuration, s.days).
		Append(attrTotalInterest, s.TotalInterest()).
		Append(attrTotalRepayment, s.TotalRepayment()).
		Append(attrRiskScore, s.RiskTier().String())
	return w.MarshalJSON()
}

// MarshalJSON writes the record in its persisted form.
func (r *Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append(attrID, r.ID).
		Append(attrItemName, r.ItemName).
		Append(attrHSCode, r.HSCode).
		Append(attrQuantity, r.Quantity).
		Append(attrPort, r.Port).
		Append(attrReason, r.Reason).
		Append(attrCategory, r.Category).
		Append(attrRejectionDate, r.RejectionDate).
		Append(attrUrgency, r.Urgency).
		Append(attrOriginalPrice, r.originalPrice).
		Append(attrValuationPercent, r.valuationPercent).
		Append(attrValuedPrice, r.ValuedPrice()).
		Optional(attrFile, r.Attachment)

	services, err := r.Services.MarshalJSON()
	w.Raw(attrServices, services, err)

	w.Append(attrNeedsSCF, r.NeedsSCF())
	if r.scf != nil {
		scf, err := r.scf.MarshalJSON()
		w.Raw(attrSCFDetails, scf, err)
	}
	w.Append(attrStatus, r.Status)
	if !r.CreatedAt.IsZero() {
		w.Append(attrCreatedAt, r.CreatedAt.Format(time.RFC3339Nano))
	}
	return w.MarshalJSON()
}

// EncodeRecords writes the records as an indented JSON array.
func EncodeRecords(w io.Writer, records []*Record) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		raw, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("cannot encode record %q: %w", r.ID, err)
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("cannot indent records: %w", err)
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// LoadIssue describes a problem found in a persisted record.
type LoadIssue struct {
	Index   int    // position of the record in the persisted array
	ID      string // record ID if known
	Dropped bool   // true if the record was skipped
	Err     error
}

func (i LoadIssue) Error() string {
	action := "normalized"
	if i.Dropped {
		action = "skipped"
	}
	return fmt.Sprintf("record #%d %s %s: %v", i.Index, i.ID, action, i.Err)
}

func (i LoadIssue) Unwrap() error { return i.Err }

// DecodeRecords reads a persisted record collection.
//
// It fails only if r does not hold a JSON array. Records that are not objects,
// lack an item name, a port or a positive original price, or carry an invalid
// valuation are skipped. An SCF request that cannot be restored is cleared.
// A missing ID is derived from the record's position and content, so that
// reading the same file twice yields the same IDs. Missing optional fields get
// their default values. Every skipped record and every normalization is
// reported as a LoadIssue.
func DecodeRecords(r io.Reader, categories *CategoryTable) ([]*Record, []LoadIssue, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil // an empty file is an empty collection
		}
		return nil, nil, fmt.Errorf("cannot parse record collection: %w", err)
	}

	records := make([]*Record, 0, len(raws))
	var issues []LoadIssue
	for i, raw := range raws {
		d := recordDecoder{index: i, categories: categories}
		rec, err := d.decode(raw)
		if err != nil {
			issues = append(issues, LoadIssue{Index: i, ID: d.id, Dropped: true, Err: err})
			continue
		}
		issues = append(issues, d.issues...)
		records = append(records, rec)
	}
	return records, issues, nil
}

// recordDecoder decodes a single loosely typed record.
type recordDecoder struct {
	index      int
	categories *CategoryTable
	obj        any
	id         string
	issues     []LoadIssue
}

// get returns the value at the given path of labels, if present and not null.
func (d *recordDecoder) get(labels ...string) (any, bool) {
	var path strings.Builder
	path.WriteString("$")
	for _, l := range labels {
		fmt.Fprintf(&path, "[%q]", l)
	}
	v, err := jsonpath.Get(path.String(), d.obj)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func (d *recordDecoder) note(err error) {
	d.issues = append(d.issues, LoadIssue{Index: d.index, ID: d.id, Err: err})
}

func (d *recordDecoder) str(labels ...string) (string, error) {
	v, _ := d.get(labels...)
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%q: %w", strings.Join(labels, "."), err)
	}
	return strings.TrimSpace(s), nil
}

func (d *recordDecoder) decode(raw json.RawMessage) (*Record, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidRecord)
	}
	d.obj = v

	r := &Record{Status: Pending, Urgency: LowUrgency, Quantity: 1}
	if r.ID, err = d.str(attrID); err != nil {
		return nil, err
	}
	d.id = r.ID
	if r.ItemName, err = d.str(attrItemName); err != nil {
		return nil, err
	}
	if r.ItemName == "" {
		return nil, fmt.Errorf("%w: missing %q", ErrInvalidRecord, attrItemName)
	}
	if r.Port, err = d.str(attrPort); err != nil {
		return nil, err
	}
	if r.Port == "" {
		return nil, fmt.Errorf("%w: missing %q", ErrInvalidRecord, attrPort)
	}
	if r.ID == "" {
		r.ID = derivedID(d.index, raw)
		d.id = r.ID
		d.note(fmt.Errorf("missing %q, using %s", attrID, r.ID))
	}

	if r.HSCode, err = d.str(attrHSCode); err != nil {
		return nil, err
	}
	if r.Reason, err = d.str(attrReason); err != nil {
		return nil, err
	}
	if r.Attachment, err = d.str(attrFile); err != nil {
		return nil, err
	}
	category, err := d.str(attrCategory)
	if err != nil {
		return nil, err
	}
	r.Category = Category(category)

	if q, ok := d.get(attrQuantity); ok {
		if r.Quantity, err = toInt(q); err != nil {
			return nil, fmt.Errorf("%q: %w", attrQuantity, err)
		}
		if r.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidRecord, r.Quantity)
		}
	}

	if s, err := d.str(attrRejectionDate); err != nil {
		return nil, err
	} else if s != "" {
		if r.RejectionDate, err = date.Parse(s); err != nil {
			return nil, fmt.Errorf("%q: %w", attrRejectionDate, err)
		}
	}

	if s, err := d.str(attrUrgency); err != nil {
		return nil, err
	} else if s != "" {
		if r.Urgency, err = ParseUrgency(s); err != nil {
			r.Urgency = LowUrgency
			d.note(fmt.Errorf("%q: %w, using %s", attrUrgency, err, LowUrgency))
		}
	}

	if s, err := d.str(attrStatus); err != nil {
		return nil, err
	} else if s != "" {
		if r.Status, err = ParseStatus(s); err != nil {
			r.Status = Pending
			d.note(fmt.Errorf("%q: %w, using %s", attrStatus, err, Pending))
		}
	}

	if s, err := d.str(attrCreatedAt); err != nil {
		return nil, err
	} else if s != "" {
		r.CreatedAt = parseCreatedAt(s)
		if r.CreatedAt.IsZero() {
			d.note(fmt.Errorf("%q: invalid timestamp %q", attrCreatedAt, s))
		}
	}

	if err := d.decodeValuation(r); err != nil {
		return nil, err
	}
	d.decodeSCF(r)
	d.decodeServices(r)
	return r, nil
}

func parseCreatedAt(s string) time.Time {
	for _, layout := range createdAtFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d *recordDecoder) decodeValuation(r *Record) error {
	v, ok := d.get(attrOriginalPrice)
	if !ok {
		return fmt.Errorf("%w: missing %q", ErrInvalidPrice, attrOriginalPrice)
	}
	price, err := toDecimal(v)
	if err != nil {
		return fmt.Errorf("%q: %w", attrOriginalPrice, err)
	}
	r.originalPrice = Money{value: price, cur: USD}
	if !r.originalPrice.IsPositive() {
		return fmt.Errorf("%w: original price %s must be greater than 0", ErrInvalidPrice, price)
	}

	if v, ok := d.get(attrValuationPercent); ok {
		p, err := toDecimal(v)
		if err != nil {
			return fmt.Errorf("%q: %w", attrValuationPercent, err)
		}
		r.valuationPercent = Percent{value: p}
		return checkValuationPercent(r.valuationPercent)
	}
	if d.categories == nil {
		return fmt.Errorf("%w: missing %q", ErrInvalidPercent, attrValuationPercent)
	}
	p, err := d.categories.Default(r.Category)
	if err != nil {
		return fmt.Errorf("missing %q: %w", attrValuationPercent, err)
	}
	r.valuationPercent = p
	d.note(fmt.Errorf("missing %q, using %s default %s", attrValuationPercent, r.Category, p))
	return nil
}

// decodeSCF restores the SCF request. A request that cannot be restored is
// dropped with an issue, the record itself is kept.
func (d *recordDecoder) decodeSCF(r *Record) {
	var needs bool
	if v, ok := d.get(attrNeedsSCF); ok {
		var err error
		if needs, err = toBool(v); err != nil {
			d.note(fmt.Errorf("%q: %w, SCF request ignored", attrNeedsSCF, err))
			return
		}
	}
	if !needs {
		return
	}
	if err := d.requestSCF(r); err != nil {
		d.note(fmt.Errorf("SCF request ignored: %w", err))
	}
}

func (d *recordDecoder) requestSCF(r *Record) error {
	v, ok := d.get(attrSCFDetails, attrRequested)
	if !ok {
		return fmt.Errorf("%q is set without %q", attrNeedsSCF, attrSCFDetails)
	}
	requested, err := toDecimal(v)
	if err != nil {
		return fmt.Errorf("%q: %w", attrRequested, err)
	}
	var rate Percent
	if v, ok := d.get(attrSCFDetails, attrInterestRate); ok {
		if rate.value, err = toDecimal(v); err != nil {
			return fmt.Errorf("%q: %w", attrInterestRate, err)
		}
	}
	var days int
	if v, ok := d.get(attrSCFDetails, attrDuration); ok {
		if days, err = toInt(v); err != nil {
			return fmt.Errorf("%q: %w", attrDuration, err)
		}
	}
	return r.RequestSCF(Money{value: requested, cur: USD}, rate, days)
}

func (d *recordDecoder) decodeServices(r *Record) {
	v, ok := d.get(attrServices)
	if !ok {
		return
	}
	services, ok := v.(map[string]any)
	if !ok {
		d.note(fmt.Errorf("%q is not an object, ignored", attrServices))
		return
	}
	labels := make([]string, 0, len(services))
	for label := range services {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		kind, err := ParseServiceKind(label)
		if err != nil {
			d.note(fmt.Errorf("%w: %q dropped: %v", ErrInvalidService, label, err))
			continue
		}
		svc, err := d.decodeService(label, kind)
		if err == nil {
			err = r.Services.Select(svc)
		}
		if err != nil {
			d.note(fmt.Errorf("%q dropped: %w", label, err))
		}
	}
}

// serviceFields reads the fields of one service object.
type serviceFields struct {
	d     *recordDecoder
	label string
	err   error
}

func (f *serviceFields) value(field string) (any, bool) {
	return f.d.get(attrServices, f.label, field)
}

func (f *serviceFields) str(field string) string {
	if f.err != nil {
		return ""
	}
	s, err := f.d.str(attrServices, f.label, field)
	f.err = err
	return s
}

func (f *serviceFields) money(field string) Money {
	v, ok := f.value(field)
	if !ok || f.err != nil {
		return USDollars(0)
	}
	d, err := toDecimal(v)
	if err != nil {
		f.err = fmt.Errorf("%q: %w", field, err)
	}
	return Money{value: d, cur: USD}
}

func (f *serviceFields) integer(field string) int {
	v, ok := f.value(field)
	if !ok || f.err != nil {
		return 0
	}
	i, err := toInt(v)
	if err != nil {
		f.err = fmt.Errorf("%q: %w", field, err)
	}
	return i
}

func (f *serviceFields) boolean(field string) bool {
	v, _ := f.value(field)
	if f.err != nil {
		return false
	}
	b, err := toBool(v)
	if err != nil {
		f.err = fmt.Errorf("%q: %w", field, err)
	}
	return b
}

func (f *serviceFields) strings(field string) []string {
	v, ok := f.value(field)
	if !ok || f.err != nil {
		return nil
	}
	switch t := v.(type) {
	case []any:
		list := make([]string, 0, len(t))
		for _, e := range t {
			s, err := toString(e)
			if err != nil {
				f.err = fmt.Errorf("%q: %w", field, err)
				return nil
			}
			list = append(list, s)
		}
		return list
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	default:
		f.err = fmt.Errorf("%q: expected a list, got %T", field, v)
		return nil
	}
}

func (d *recordDecoder) decodeService(label string, kind ServiceKind) (Service, error) {
	f := &serviceFields{d: d, label: label}
	var svc Service
	switch kind {
	case InspectionService:
		svc = &Inspection{
			InspectorID:   f.str("Inspector ID"),
			Type:          InspectionType(f.str("Inspection Type")),
			Notes:         f.str("Inspection Notes"),
			EstimatedCost: f.money("Estimated Cost"),
		}
	case CertificationService:
		svc = &CertificationVerification{
			CertificationType: f.str("Certification Type"),
			Authority:         f.str("Certification Authority"),
			Status:            VerificationStatus(f.str("Verified")),
		}
	case BuyerSwapService:
		svc = &BuyerSwapDiscovery{
			AlternativeBuyer: f.str("Alternative Buyer"),
			ContactInfo:      f.str("Contact Info"),
			NegotiatedPrice:  f.money("Negotiated Price"),
		}
	case WarehousingService:
		svc = &Warehousing{
			Location:     f.str("Warehouse Location"),
			DurationDays: f.integer("Storage Duration (days)"),
			CostPerDay:   f.money("Storage Cost per Day"),
		}
	case PackagingService:
		svc = &Packaging{
			Type:            PackageType(f.str("Package Type")),
			SpecialHandling: f.boolean("Special Handling"),
			PackagingCost:   f.money("Packaging Cost"),
		}
	case TruckingService:
		svc = &Trucking{
			Pickup:        f.str("Pickup Location"),
			Drop:          f.str("Drop Location"),
			Transporter:   f.str("Transporter"),
			TransportCost: f.money("Transport Cost"),
		}
	case InsuranceService:
		svc = &Insurance{
			Type:           InsuranceType(f.str("Insurance Type")),
			CoverageAmount: f.money("Coverage Amount"),
			Premium:        f.money("Premium"),
		}
	case LegalService:
		var docs []DocumentType
		for _, s := range f.strings("Document Type") {
			docs = append(docs, DocumentType(s))
		}
		svc = &LegalDocumentation{
			Documents:  docs,
			Compliance: ComplianceStatus(f.str("Legal Compliance")),
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return svc, nil
}
