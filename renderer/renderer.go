// Package renderer turns records, metrics and quotes into markdown reports.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/etnz/dge"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"cell": cell,
	"days": func(d decimal.Decimal) string { return d.StringFixed(1) },
}

var tmpl = template.Must(template.New("").Funcs(funcs).ParseFS(templates, "templates/*.md"))

// cell escapes a value for use in a markdown table cell.
func cell(v any) string {
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// renderTemplate executes one of the embedded templates.
func renderTemplate(name string, data any) string {
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}

// recordView exposes a record to the templates.
type recordView struct {
	*dge.Record
	Finance     *dge.SCFDetails
	ServiceList []serviceView
}

type serviceView struct {
	Kind   dge.ServiceKind
	Fields [][2]string
	Cost   dge.Money
}

func newRecordView(r *dge.Record) recordView {
	v := recordView{Record: r}
	if s, ok := r.SCF(); ok {
		v.Finance = &s
	}
	for _, k := range r.Services.Kinds() {
		svc, _ := r.Services.Get(k)
		v.ServiceList = append(v.ServiceList, serviceView{Kind: k, Fields: serviceFields(svc), Cost: svc.Cost()})
	}
	return v
}

func newRecordViews(records []*dge.Record) []recordView {
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, newRecordView(r))
	}
	return views
}

func serviceFields(svc dge.Service) [][2]string {
	orDash := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	}
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	switch s := svc.(type) {
	case *dge.Inspection:
		return [][2]string{
			{"Inspector", orDash(s.InspectorID)},
			{"Type", string(s.Type)},
			{"Notes", orDash(s.Notes)},
		}
	case *dge.CertificationVerification:
		return [][2]string{
			{"Certification", orDash(s.CertificationType)},
			{"Authority", orDash(s.Authority)},
			{"Status", string(s.Status)},
		}
	case *dge.BuyerSwapDiscovery:
		return [][2]string{
			{"Alternative buyer", orDash(s.AlternativeBuyer)},
			{"Contact", orDash(s.ContactInfo)},
			{"Negotiated price", s.NegotiatedPrice.String()},
		}
	case *dge.Warehousing:
		return [][2]string{
			{"Location", orDash(s.Location)},
			{"Duration", fmt.Sprintf("%d days at %s/day", s.DurationDays, s.CostPerDay)},
		}
	case *dge.Packaging:
		return [][2]string{
			{"Package", string(s.Type)},
			{"Special handling", yesNo(s.SpecialHandling)},
		}
	case *dge.Trucking:
		return [][2]string{
			{"From", orDash(s.Pickup)},
			{"To", orDash(s.Drop)},
			{"Transporter", orDash(s.Transporter)},
		}
	case *dge.Insurance:
		return [][2]string{
			{"Type", string(s.Type)},
			{"Coverage", s.CoverageAmount.String()},
		}
	case *dge.LegalDocumentation:
		docs := make([]string, 0, len(s.Documents))
		for _, d := range s.Documents {
			docs = append(docs, string(d))
		}
		return [][2]string{
			{"Documents", orDash(strings.Join(docs, ", "))},
			{"Compliance", string(s.Compliance)},
		}
	}
	return nil
}

// RecordsMarkdown renders a table of records.
func RecordsMarkdown(records []*dge.Record) string {
	return renderTemplate("records.md", newRecordViews(records))
}

// RecordMarkdown renders all the details of a record.
func RecordMarkdown(r *dge.Record) string {
	return renderTemplate("record.md", newRecordView(r))
}

// OpportunitiesMarkdown renders one card per SCF opportunity. Records that
// are not opportunities are ignored.
func OpportunitiesMarkdown(records []*dge.Record) string {
	return renderTemplate("opportunities.md", newRecordViews(dge.Opportunities(records)))
}

// MetricsMarkdown renders the metrics, m may be nil.
func MetricsMarkdown(m *dge.Metrics) string {
	return renderTemplate("metrics.md", m)
}

// QuoteMarkdown renders a quote.
func QuoteMarkdown(q dge.Quote) string {
	return renderTemplate("quote.md", q)
}

// CategoriesMarkdown renders the category table and the port options.
func CategoriesMarkdown(t *dge.CategoryTable, ports []string) string {
	type row struct {
		Category dge.Category
		Percent  dge.Percent
	}
	data := struct {
		Categories []row
		Ports      []string
	}{Ports: ports}
	for _, c := range t.Categories() {
		p, _ := t.Default(c)
		data.Categories = append(data.Categories, row{c, p})
	}
	return renderTemplate("categories.md", data)
}

var html = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := html.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("could not convert markdown: %w", err)
	}
	return buf.String(), nil
}
