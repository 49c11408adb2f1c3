// Package agent implements the AI assistants of the exchange: a classifier
// suggesting the category and HS code of goods, and a clerk answering
// questions about the records.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/dge"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w     io.Writer
	r     *bufio.Reader
	Clerk *Expert
}

// New creates a new Agent answering questions about the records.
//
// w receives the agent's output (e.g., os.Stdout), r the user input
// (e.g., os.Stdin).
func New(w io.Writer, r io.Reader, model string, records RecordSource, categories *dge.CategoryTable, log *zap.Logger) *Agent {
	return &Agent{
		w:     w,
		r:     bufio.NewReader(r),
		Clerk: NewClerk(model, records, categories, log),
	}
}

// NewClerk creates the expert answering questions about the records.
func NewClerk(model string, records RecordSource, categories *dge.CategoryTable, log *zap.Logger) *Expert {
	return &Expert{
		Name:      "Clerk",
		ModelName: model,
		Log:       log,
		Tools:     RecordTools(records, categories),
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the clerk of a damaged goods exchange. Goods rejected at a port or
			damaged in transit are recorded, valued for resale, and their owners can
			request supply chain finance (SCF) against that value.

			Use the tools to look at the records before answering. Never invent records
			or figures. Amounts are in US dollars. Answer in short markdown.
		`}}},
		},
	}
}

const prompt = "assist> "

// Run starts the interactive session. The prompts are asked first, then the
// user is asked until "bye" or the end of the input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Clerk.chat == nil {
		if err := a.Clerk.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to dge assist. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		content, err := a.Clerk.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, text(content))
	}
}
