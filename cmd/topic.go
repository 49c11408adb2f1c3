package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dge/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	all bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `dge topic [<topic>...]

  Shows the documentation of the topics, "dge topic" lists them.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Show every topic")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if c.all {
		var err error
		if topics, err = docs.GetAllTopics(); err != nil {
			fmt.Fprintf(os.Stderr, "Error listing topics: %v\n", err)
			return subcommands.ExitFailure
		}
		topics = append([]string{docs.Readme}, topics...)
	}

	doc, err := docs.GetTopics(topics...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading doc: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(doc)

	return subcommands.ExitSuccess
}
