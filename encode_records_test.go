package dge

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestEncodeRecords(t *testing.T) {
	r := newTestRecord(t, "Food & Beverage", 1000)
	r.ID = "DGE-1"
	if err := r.RequestSCF(USDollars(100), P(12), 30); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := EncodeRecords(&buf, []*Record{r}); err != nil {
		t.Fatalf("EncodeRecords() unexpected error: %v", err)
	}
	got := buf.String()

	// fields are written in a fixed order
	order := []string{
		`"ID"`, `"Item Name"`, `"HS Code"`, `"Quantity"`, `"Port"`, `"Reason"`, `"Category"`,
		`"Rejection Date"`, `"Urgency"`, `"Original Price"`, `"Valuation %"`, `"Valued Price"`,
		`"Ancillary Services"`, `"Needs SCF"`, `"SCF Details"`, `"Status"`, `"Created At"`,
	}
	last := -1
	for _, key := range order {
		i := strings.Index(got, key)
		if i < 0 {
			t.Fatalf("missing %s in\n%s", key, got)
		}
		if i < last {
			t.Errorf("%s is out of order in\n%s", key, got)
		}
		last = i
	}
	for _, want := range []string{
		`  {` + "\n" + `    "ID": "DGE-1",`,
		`"Category": "Food & Beverage"`,
		`"Valued Price": 250`,
		`"Needs SCF": true`,
		`"Risk Score": "Low"`,
		`"Created At": "2025-03-14T09:30:00Z"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("EncodeRecords() does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, `"File"`) {
		t.Errorf("empty attachment was written:\n%s", got)
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeRecords(&buf, nil); err != nil {
		t.Fatalf("EncodeRecords() unexpected error: %v", err)
	}
	if got, want := buf.String(), "[]\n"; got != want {
		t.Errorf("EncodeRecords() = %q, want %q", got, want)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	r := newTestRecord(t, "Electronics", 1234.56)
	r.HSCode = "8471.30"
	r.Attachment = "uploads/photo.jpg"
	r.Urgency = CriticalUrgency
	r.Status = Financed
	r.CreatedAt = time.Date(2025, time.March, 14, 9, 30, 0, 123456789, time.UTC)
	if err := r.RequestSCF(USDollars(300.5), P(18.25), 45); err != nil {
		t.Fatal(err)
	}
	for _, k := range ServiceKinds {
		if _, err := r.SelectService(k); err != nil {
			t.Fatal(err)
		}
	}
	r.Services.Select(&LegalDocumentation{Documents: []DocumentType{"Bill of Lading", "Packing List"}, Compliance: "Compliant"})

	var buf bytes.Buffer
	if err := EncodeRecords(&buf, []*Record{r}); err != nil {
		t.Fatalf("EncodeRecords() unexpected error: %v", err)
	}
	records, issues, err := DecodeRecords(&buf, DefaultCategories())
	if err != nil {
		t.Fatalf("DecodeRecords() unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("DecodeRecords() issues: %v", issues)
	}
	if len(records) != 1 {
		t.Fatalf("DecodeRecords() returned %d records, want 1", len(records))
	}
	got := records[0]

	if got.ID != r.ID || got.ItemName != r.ItemName || got.HSCode != r.HSCode || got.Port != r.Port ||
		got.Category != r.Category || got.Urgency != r.Urgency || got.Status != r.Status ||
		got.Attachment != r.Attachment || got.Quantity != r.Quantity || got.RejectionDate != r.RejectionDate {
		t.Errorf("decoded record = %+v, want %+v", got, r)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, r.CreatedAt)
	}
	if !got.OriginalPrice().Equal(r.OriginalPrice()) || !got.ValuationPercent().Equal(r.ValuationPercent()) {
		t.Errorf("valuation = %v at %v, want %v at %v", got.OriginalPrice(), got.ValuationPercent(), r.OriginalPrice(), r.ValuationPercent())
	}
	gs, _ := got.SCF()
	ws, _ := r.SCF()
	if !gs.Requested().Equal(ws.Requested()) || !gs.InterestRate().Equal(ws.InterestRate()) || gs.DurationDays() != ws.DurationDays() {
		t.Errorf("SCF = %+v, want %+v", gs, ws)
	}
	if got.Services.Len() != len(ServiceKinds) {
		t.Errorf("Services.Len() = %d, want %d", got.Services.Len(), len(ServiceKinds))
	}

	// encoding the decoded record gives the same bytes
	var a, b bytes.Buffer
	EncodeRecords(&a, []*Record{r})
	EncodeRecords(&b, records)
	if a.String() != b.String() {
		t.Errorf("re-encoded records differ:\n%s\n%s", a.String(), b.String())
	}
}

func TestDecodeRecordsInvalidContainer(t *testing.T) {
	for _, in := range []string{`{"ID": "x"}`, `[{"ID": `, `not json`} {
		if _, _, err := DecodeRecords(strings.NewReader(in), DefaultCategories()); err == nil {
			t.Errorf("DecodeRecords(%q) expected an error", in)
		}
	}
	records, _, err := DecodeRecords(strings.NewReader(""), DefaultCategories())
	if err != nil || len(records) != 0 {
		t.Errorf("DecodeRecords(\"\") = %v, %v, want an empty collection", records, err)
	}
}

func TestDecodeRecordsSkipsMalformed(t *testing.T) {
	in := `[
		{"ID": "DGE-ok", "Item Name": "Laptops", "Port": "Mumbai", "Category": "Electronics", "Original Price": 1000, "Valuation %": 50},
		"not an object",
		42,
		{"ID": "DGE-noname", "Port": "Mumbai", "Original Price": 1000, "Valuation %": 50},
		{"ID": "DGE-noport", "Item Name": "Laptops", "Original Price": 1000, "Valuation %": 50},
		{"ID": "DGE-noprice", "Item Name": "Laptops", "Port": "Mumbai", "Valuation %": 50},
		{"ID": "DGE-zeroprice", "Item Name": "Laptops", "Port": "Mumbai", "Original Price": 0, "Valuation %": 50},
		{"ID": "DGE-badpercent", "Item Name": "Laptops", "Port": "Mumbai", "Original Price": 1000, "Valuation %": 150},
		{"ID": "DGE-overcap", "Item Name": "Laptops", "Port": "Mumbai", "Original Price": 1000, "Valuation %": 50,
		 "Needs SCF": true, "SCF Details": {"Requested": 301, "Interest Rate (%)": 12, "Duration (days)": 30}},
		{"ID": "DGE-badterm", "Item Name": "Laptops", "Port": "Mumbai", "Original Price": 1000, "Valuation %": 50,
		 "Needs SCF": true, "SCF Details": {"Requested": 100, "Interest Rate (%)": 12, "Duration (days)": 365}},
		{"ID": "DGE-unknowncategory", "Item Name": "Laptops", "Port": "Mumbai", "Category": "Spaceships", "Original Price": 1000}
	]`
	records, issues, err := DecodeRecords(strings.NewReader(in), DefaultCategories())
	if err != nil {
		t.Fatalf("DecodeRecords() unexpected error: %v", err)
	}
	var kept []string
	for _, r := range records {
		kept = append(kept, r.ID)
		if r.NeedsSCF() {
			t.Errorf("%s kept an invalid SCF request", r.ID)
		}
	}
	if want := []string{"DGE-ok", "DGE-overcap", "DGE-badterm"}; !reflect.DeepEqual(kept, want) {
		t.Fatalf("DecodeRecords() kept %v, want %v", kept, want)
	}
	dropped := 0
	for _, issue := range issues {
		if issue.Dropped {
			dropped++
		}
	}
	if dropped != 8 {
		t.Errorf("dropped %d records, want 8: %v", dropped, issues)
	}
	var issue LoadIssue
	if !errors.As(error(issues[0]), &issue) || issue.Index != 1 {
		t.Errorf("first issue = %v, want record #1", issues[0])
	}
}

func TestDecodeRecordsDefaults(t *testing.T) {
	in := `[{"Item Name": " Cotton rolls ", "Port": "Chennai", "Category": "Textiles", "Original Price": "200",
		"Needs SCF": "yes", "Status": "Lost", "Urgency": "Whenever", "Quantity": 3.0,
		"Ancillary Services": {"Catering": {}, "packaging": {"Package Type": "Pallet", "Special Handling": "1", "Packaging Cost": 12}}}]`
	records, issues, err := DecodeRecords(strings.NewReader(in), DefaultCategories())
	if err != nil {
		t.Fatalf("DecodeRecords() unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("DecodeRecords() returned %d records, want 1 (issues %v)", len(records), issues)
	}
	r := records[0]
	if !strings.HasPrefix(r.ID, "DGE-") {
		t.Errorf("ID = %q, want a generated ID", r.ID)
	}
	if r.ItemName != "Cotton rolls" {
		t.Errorf("ItemName = %q, want trimmed", r.ItemName)
	}
	if !r.ValuationPercent().Equal(P(40)) {
		t.Errorf("ValuationPercent() = %v, want the Textiles default", r.ValuationPercent())
	}
	if r.Status != Pending || r.Urgency != LowUrgency || r.Quantity != 3 {
		t.Errorf("Status, Urgency, Quantity = %q, %q, %d", r.Status, r.Urgency, r.Quantity)
	}
	if r.NeedsSCF() {
		t.Error("NeedsSCF() without details must be normalized to false")
	}
	svc, ok := r.Services.Get(PackagingService)
	if !ok || !svc.(*Packaging).SpecialHandling {
		t.Errorf("Packaging = %#v, want special handling", svc)
	}
	if r.Services.Len() != 1 {
		t.Errorf("unknown service kept: %v", r.Services.Kinds())
	}
	for _, issue := range issues {
		if issue.Dropped {
			t.Errorf("unexpected dropped record: %v", issue)
		}
	}
	if len(issues) < 5 {
		t.Errorf("got %d issues, want one per normalization: %v", len(issues), issues)
	}
}

func TestDecodeRecordsBooleans(t *testing.T) {
	for _, needs := range []string{`true`, `"true"`, `1`, `"1"`, `"yes"`} {
		in := `[{"ID": "DGE-1", "Item Name": "Laptops", "Port": "Mumbai", "Category": "Electronics",
			"Original Price": 1000, "Valuation %": 50, "Needs SCF": ` + needs + `,
			"SCF Details": {"Requested": 300, "Interest Rate (%)": 12, "Duration (days)": 30}}]`
		records, _, err := DecodeRecords(strings.NewReader(in), DefaultCategories())
		if err != nil || len(records) != 1 {
			t.Fatalf("Needs SCF %s: DecodeRecords() = %d records, %v", needs, len(records), err)
		}
		if !records[0].NeedsSCF() {
			t.Errorf("Needs SCF %s: NeedsSCF() = false", needs)
		}
	}
}

func TestDecodeRecordsRecomputesDerived(t *testing.T) {
	in := `[{"ID": "DGE-1", "Item Name": "Laptops", "Port": "Mumbai", "Category": "Electronics",
		"Original Price": 1000, "Valuation %": 50, "Valued Price": 999999, "Needs SCF": true,
		"SCF Details": {"Requested": 300, "Interest Rate (%)": 12, "Duration (days)": 30,
		"Total Interest": 1, "Total Repayment": 1, "Risk Score": "High"}}]`
	records, _, err := DecodeRecords(strings.NewReader(in), DefaultCategories())
	if err != nil || len(records) != 1 {
		t.Fatalf("DecodeRecords() = %d records, %v", len(records), err)
	}
	r := records[0]
	if !r.ValuedPrice().Equal(USDollars(500)) {
		t.Errorf("ValuedPrice() = %v, want 500", r.ValuedPrice())
	}
	s, _ := r.SCF()
	if s.TotalInterest().Round() != "2.96" || s.RiskTier() != LowRisk {
		t.Errorf("SCF = %v %v, want recomputed figures", s.TotalInterest(), s.RiskTier())
	}
}

func TestSCFDetailsMarshalJSON(t *testing.T) {
	s, err := ComputeSCFTerms(USDollars(1000), USDollars(300), P(12), 30)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	want := `{"Requested":300,"Interest Rate (%)":12,"Duration (days)":30,"Total Interest":2.9589041095890411,"Total Repayment":302.9589041095890411,"Risk Score":"Low"}`
	if string(raw) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", raw, want)
	}
}

func TestDecodeRecordsKeepsRecordWithInvalidSCF(t *testing.T) {
	testCases := []struct {
		name    string
		details string
	}{
		{"rate above the maximum", `{"Requested": 100, "Interest Rate (%)": 60, "Duration (days)": 30}`},
		{"missing rate", `{"Requested": 100, "Duration (days)": 30}`},
		{"missing duration", `{"Requested": 100, "Interest Rate (%)": 12}`},
		{"over the cap", `{"Requested": 501, "Interest Rate (%)": 12, "Duration (days)": 30}`},
		{"not a number", `{"Requested": "a lot", "Interest Rate (%)": 12, "Duration (days)": 30}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := `[{"ID": "DGE-legacy", "Item Name": "Steel coils", "Port": "Chennai", "Category": "Metals",
				"Original Price": 1000, "Valuation %": 50, "Needs SCF": true, "SCF Details": ` + tc.details + `}]`
			records, issues, err := DecodeRecords(strings.NewReader(in), DefaultCategories())
			if err != nil {
				t.Fatalf("DecodeRecords() unexpected error: %v", err)
			}
			if len(records) != 1 || records[0].ID != "DGE-legacy" {
				t.Fatalf("DecodeRecords() = %d records, want DGE-legacy (issues %v)", len(records), issues)
			}
			if records[0].NeedsSCF() {
				t.Error("NeedsSCF() = true, want the request cleared")
			}
			if len(issues) != 1 || issues[0].Dropped {
				t.Errorf("issues = %v, want one normalization", issues)
			}
		})
	}
}

func TestDecodeRecordsDerivesStableIDs(t *testing.T) {
	in := `[
		{"Item Name": "Laptops", "Port": "Mumbai", "Category": "Electronics", "Original Price": 1000},
		{"Item Name": "Laptops", "Port": "Mumbai", "Category": "Electronics", "Original Price": 1000}
	]`
	ids := func() []string {
		records, _, err := DecodeRecords(strings.NewReader(in), DefaultCategories())
		if err != nil || len(records) != 2 {
			t.Fatalf("DecodeRecords() = %d records, %v", len(records), err)
		}
		return []string{records[0].ID, records[1].ID}
	}
	first, second := ids(), ids()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("IDs changed between loads: %v then %v", first, second)
	}
	if first[0] == first[1] {
		t.Errorf("identical records got the same ID %s", first[0])
	}
	for _, id := range first {
		if !strings.HasPrefix(id, "DGE-") {
			t.Errorf("ID = %q, want the DGE- prefix", id)
		}
	}
}

func TestDecodeRecordsServiceIssuesOrder(t *testing.T) {
	in := `[{"ID": "DGE-1", "Item Name": "Laptops", "Port": "Mumbai", "Category": "Electronics",
		"Original Price": 1000, "Valuation %": 50,
		"Ancillary Services": {"Zeppelin": {}, "Catering": {}, "Moving": {}, "Baking": {}, "Lodging": {}}}]`
	want := ""
	for i := 0; i < 10; i++ {
		_, issues, err := DecodeRecords(strings.NewReader(in), DefaultCategories())
		if err != nil {
			t.Fatalf("DecodeRecords() unexpected error: %v", err)
		}
		var got []string
		for _, issue := range issues {
			got = append(got, issue.Error())
		}
		if i == 0 {
			want = strings.Join(got, "\n")
			if !strings.Contains(got[0], "Baking") || !strings.Contains(got[len(got)-1], "Zeppelin") {
				t.Fatalf("issues are not sorted by service: %v", got)
			}
			continue
		}
		if strings.Join(got, "\n") != want {
			t.Fatalf("issues order changed between loads:\n%s\nthen\n%s", want, strings.Join(got, "\n"))
		}
	}
}
