package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/dge/agent"
	"github.com/etnz/dge/logger"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type classifyCmd struct{}

func (*classifyCmd) Name() string     { return "classify" }
func (*classifyCmd) Synopsis() string { return "suggest the category and HS code of goods" }
func (*classifyCmd) Usage() string {
	return `dge classify <description>

  Asks the AI assistant for the category and the HS code of goods described
  in plain words.
`
}

func (*classifyCmd) SetFlags(_ *flag.FlagSet) {}

func (c *classifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	description := strings.Join(f.Args(), " ")
	if strings.TrimSpace(description) == "" {
		fmt.Fprintln(os.Stderr, "Error: missing description")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	classifier := agent.NewClassifier(client.Models, a.cfg.Assist.Model, a.categories, logger.Named(a.log, "classifier"))
	s, err := classifier.Classify(ctx, description)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Suggestion\n\n- Category: %s\n- HS code: %s\n", s.Category, s.HSCode)
	if s.Reason != "" {
		fmt.Fprintf(&b, "\n%s\n", s.Reason)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
