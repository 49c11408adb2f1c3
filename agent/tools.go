package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/dge"
	"github.com/etnz/dge/renderer"
	"google.golang.org/genai"
)

// Tool is a function the model can call.
type Tool struct {
	Declaration *genai.FunctionDeclaration
	Call        func(ctx context.Context, args map[string]any) (string, error)
}

// Toolbox is the set of functions offered to a model.
type Toolbox []Tool

// Declarations returns the declaration of every tool.
func (tb Toolbox) Declarations() []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(tb))
	for _, t := range tb {
		result = append(result, t.Declaration)
	}
	return result
}

// Call performs a function call. Errors are reported to the model in the
// response, never returned.
func (tb Toolbox) Call(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: call.ID, Name: call.Name}
	for _, t := range tb {
		if t.Declaration.Name != call.Name {
			continue
		}
		out, err := t.Call(ctx, call.Args)
		if err != nil {
			resp.Response = map[string]any{"error": err.Error()}
		} else {
			resp.Response = map[string]any{"output": out}
		}
		return resp
	}
	resp.Response = map[string]any{"error": fmt.Sprintf("unknown function %s", call.Name)}
	return resp
}

// RecordSource returns the current records.
type RecordSource func() []*dge.Record

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

func numberArg(args map[string]any, name string) (float64, bool) {
	switch v := args[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// RecordTools returns the tools reading the records: searching, metrics and
// quotes.
func RecordTools(records RecordSource, categories *dge.CategoryTable) Toolbox {
	str := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeString, Description: desc} }
	num := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeNumber, Description: desc} }

	return Toolbox{
		{
			Declaration: &genai.FunctionDeclaration{
				Name:        "search_records",
				Description: "Lists the recorded goods as a markdown table. All parameters are optional filters.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category": str("Exact goods category."),
						"port":     str("Exact port of rejection."),
						"text":     str("Text to find in the item name, port or category."),
						"scf":      str("'yes' for records requesting finance, 'no' for the others."),
					},
				},
			},
			Call: func(ctx context.Context, args map[string]any) (string, error) {
				filter, err := dge.ParseSCFFilter(stringArg(args, "scf"))
				if err != nil {
					return "", err
				}
				q := dge.Query{
					Category: dge.Category(stringArg(args, "category")),
					Port:     stringArg(args, "port"),
					SCF:      filter,
				}
				return renderer.RecordsMarkdown(dge.Search(q.Apply(records()), stringArg(args, "text"))), nil
			},
		},
		{
			Declaration: &genai.FunctionDeclaration{
				Name:        "get_metrics",
				Description: "Returns the metrics of all recorded goods and of the finance opportunities, as markdown.",
			},
			Call: func(ctx context.Context, args map[string]any) (string, error) {
				return renderer.MetricsMarkdown(dge.NewMetrics(records())), nil
			},
		},
		{
			Declaration: &genai.FunctionDeclaration{
				Name:        "quote",
				Description: "Values goods and computes the terms of a supply chain finance request, without recording anything.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category":       str("Goods category, one of: " + joinCategories(categories)),
						"original_price": num("Original price in USD."),
						"requested":      num("Requested finance amount in USD, optional."),
						"interest_rate":  num("Annual interest rate in percent, required with requested."),
						"duration_days":  num("Duration in days, required with requested."),
					},
					Required: []string{"category", "original_price"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) (string, error) {
				category, ok := categories.Lookup(stringArg(args, "category"))
				if !ok {
					return "", fmt.Errorf("%w: %q", dge.ErrInvalidCategory, stringArg(args, "category"))
				}
				price, _ := numberArg(args, "original_price")
				var req *dge.SCFRequest
				if requested, ok := numberArg(args, "requested"); ok {
					rate, _ := numberArg(args, "interest_rate")
					days, _ := numberArg(args, "duration_days")
					req = &dge.SCFRequest{Requested: dge.USDollars(requested), InterestRate: dge.P(rate), DurationDays: int(days)}
				}
				q, err := categories.Quote(category, dge.USDollars(price), nil, req)
				if err != nil {
					return "", err
				}
				return renderer.QuoteMarkdown(q), nil
			},
		},
	}
}

func joinCategories(t *dge.CategoryTable) string {
	var names []string
	for _, c := range t.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
