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

// quoteCmd values goods without recording them.
type quoteCmd struct {
	category string
	price    string
	percent  string
	scf      scfFlags
}

func (*quoteCmd) Name() string { return "quote" }
func (*quoteCmd) Synopsis() string {
	return "value goods and compute finance terms without recording them"
}
func (*quoteCmd) Usage() string {
	return `dge quote -category <category> -price <amount> [-percent <percent>] [-scf-amount <amount> -scf-rate <rate> -scf-days <days>]

  Computes the valued price of goods, the maximum finance and, if requested,
  the finance terms. Nothing is recorded.

Usage Examples:
$ dge quote -category Electronics -price 1000 -scf-amount 300 -scf-rate 12 -scf-days 30
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Goods category")
	f.StringVar(&c.price, "price", "", "Original price in USD")
	f.StringVar(&c.percent, "percent", "", "Valuation percent. Defaults to the category default.")
	c.scf.register(f)
}

func (c *quoteCmd) quote(categories *dge.CategoryTable) (dge.Quote, error) {
	category := dge.Category(c.category)
	if cat, ok := categories.Lookup(c.category); ok {
		category = cat
	}
	price, err := dge.ParseMoney(c.price, dge.USD)
	if err != nil {
		return dge.Quote{}, err
	}
	var override *dge.Percent
	if c.percent != "" {
		p, err := dge.ParsePercent(c.percent)
		if err != nil {
			return dge.Quote{}, err
		}
		override = &p
	}
	req, err := c.scf.request()
	if err != nil {
		return dge.Quote{}, err
	}
	return categories.Quote(category, price, override, req)
}

func (c *quoteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	q, err := c.quote(a.categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.QuoteMarkdown(q))
	return subcommands.ExitSuccess
}
