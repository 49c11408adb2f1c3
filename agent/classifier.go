package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/dge"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrNoSuggestion is returned when the model gives no usable answer.
var ErrNoSuggestion = errors.New("no classification suggestion")

// Generator generates content. *genai.Models implements it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Suggestion is the classification proposed for goods.
type Suggestion struct {
	Category dge.Category
	HSCode   string
	Reason   string
}

// Classifier suggests the category and the HS code of goods from their
// description.
type Classifier struct {
	gen        Generator
	model      string
	categories *dge.CategoryTable
	log        *zap.Logger
}

// NewClassifier returns a classifier choosing among the table's categories.
func NewClassifier(gen Generator, model string, categories *dge.CategoryTable, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{gen: gen, model: model, categories: categories, log: log}
}

func (c *Classifier) config() *genai.GenerateContentConfig {
	var names []string
	for _, cat := range c.categories.Categories() {
		names = append(names, string(cat))
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
		You classify goods rejected at a port or damaged in transit.
		Given a description, choose the goods category among the allowed ones and
		the most likely Harmonized System code (HS code, e.g. "8471.30").
		Explain your choice in one sentence.
		`}}},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {Type: genai.TypeString, Enum: names},
				"hs_code":  {Type: genai.TypeString},
				"reason":   {Type: genai.TypeString},
			},
			Required: []string{"category", "hs_code"},
		},
	}
}

// Classify asks the model for a suggestion. The suggested category is always
// one of the table's categories.
func (c *Classifier) Classify(ctx context.Context, description string) (Suggestion, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Suggestion{}, fmt.Errorf("%w: empty description", ErrNoSuggestion)
	}
	resp, err := c.gen.GenerateContent(ctx, c.model, genai.Text(description), c.config())
	if err != nil {
		return Suggestion{}, fmt.Errorf("classification request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Suggestion{}, ErrNoSuggestion
	}

	var answer struct {
		Category string `json:"category"`
		HSCode   string `json:"hs_code"`
		Reason   string `json:"reason"`
	}
	raw := text(resp.Candidates[0].Content)
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		c.log.Warn("invalid classification answer", zap.String("answer", raw), zap.Error(err))
		return Suggestion{}, fmt.Errorf("%w: invalid answer: %v", ErrNoSuggestion, err)
	}
	category, ok := c.categories.Lookup(answer.Category)
	if !ok {
		return Suggestion{}, fmt.Errorf("%w: unknown category %q", ErrNoSuggestion, answer.Category)
	}
	s := Suggestion{Category: category, HSCode: strings.TrimSpace(answer.HSCode), Reason: strings.TrimSpace(answer.Reason)}
	c.log.Debug("classified", zap.String("description", description), zap.String("category", string(s.Category)), zap.String("hs_code", s.HSCode))
	return s, nil
}
