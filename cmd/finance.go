package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dge"
	"github.com/etnz/dge/renderer"
	"github.com/google/subcommands"
)

type opportunitiesCmd struct {
	queryFlags
}

func (*opportunitiesCmd) Name() string     { return "opportunities" }
func (*opportunitiesCmd) Synopsis() string { return "list the finance opportunities" }
func (*opportunitiesCmd) Usage() string {
	return `dge opportunities [-category <category>] [-port <port>] [-min-amount <amount>] [-max-rate <rate>] [-max-days <days>]

  Lists the records requesting a positive finance amount, as seen by
  financiers.
`
}

func (c *opportunitiesCmd) SetFlags(f *flag.FlagSet) { c.queryFlags.register(f) }

func (c *opportunitiesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := c.selectRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.OpportunitiesMarkdown(records))
	return subcommands.ExitSuccess
}

type metricsCmd struct {
	queryFlags
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "summarize the records and the finance opportunities" }
func (*metricsCmd) Usage() string {
	return `dge metrics [-category <category>] [-port <port>] [-scf yes|no]

  Summarizes the records matching the filters: counts, total valued price
  and the finance opportunities by category and risk tier.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) { c.queryFlags.register(f) }

func (c *metricsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := c.selectRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.MetricsMarkdown(dge.NewMetrics(records)))
	return subcommands.ExitSuccess
}

type categoriesCmd struct{}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list the goods categories and the usual ports" }
func (*categoriesCmd) Usage() string {
	return `dge categories

  Lists the goods categories with their default valuation percent, and the
  usual ports of rejection.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {}

func (c *categoriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CategoriesMarkdown(a.categories, a.cfg.PortOptions()))
	return subcommands.ExitSuccess
}
