package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/dge"
	"github.com/etnz/dge/renderer"
	"github.com/google/subcommands"
)

// queryFlags are the record filters shared by the listing commands.
type queryFlags struct {
	category  string
	port      string
	scf       string
	minAmount string
	maxRate   string
	maxDays   string
}

func (q *queryFlags) register(f *flag.FlagSet) {
	f.StringVar(&q.category, "category", "", "Only records of this category")
	f.StringVar(&q.port, "port", "", "Only records rejected at this port")
	f.StringVar(&q.scf, "scf", "", "Only records requesting finance (yes), or not (no)")
	f.StringVar(&q.minAmount, "min-amount", "", "Only finance requests of at least this amount")
	f.StringVar(&q.maxRate, "max-rate", "", "Only finance requests with at most this interest rate")
	f.StringVar(&q.maxDays, "max-days", "", "Only finance requests lasting at most this number of days")
}

func (q *queryFlags) query(categories *dge.CategoryTable) (dge.Query, error) {
	query := dge.Query{Category: dge.Category(q.category), Port: q.port}
	if cat, ok := categories.Lookup(q.category); ok {
		query.Category = cat
	}
	var err error
	if query.SCF, err = dge.ParseSCFFilter(q.scf); err != nil {
		return query, err
	}
	if q.minAmount != "" {
		m, err := dge.ParseMoney(q.minAmount, dge.USD)
		if err != nil {
			return query, err
		}
		query.MinSCFAmount = &m
	}
	if q.maxRate != "" {
		p, err := dge.ParsePercent(q.maxRate)
		if err != nil {
			return query, err
		}
		query.MaxInterestRate = &p
	}
	if q.maxDays != "" {
		d, err := strconv.Atoi(q.maxDays)
		if err != nil {
			return query, fmt.Errorf("invalid duration %q: %w", q.maxDays, err)
		}
		query.MaxDurationDays = &d
	}
	return query, nil
}

// selectRecords loads the records matching the query flags.
func (q *queryFlags) selectRecords() ([]*dge.Record, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	query, err := q.query(a.categories)
	if err != nil {
		return nil, err
	}
	store, err := a.openStore(false)
	if err != nil {
		return nil, err
	}
	return query.Apply(store.Records()), nil
}

type listCmd struct {
	queryFlags
	search string
	json   bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the recorded goods" }
func (*listCmd) Usage() string {
	return `dge list [-category <category>] [-port <port>] [-scf yes|no] [-q <term>] [-json]

  Lists the records matching all the filters, in intake order.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	c.queryFlags.register(f)
	f.StringVar(&c.search, "q", "", "Only records whose item name, port or category contains this term")
	f.BoolVar(&c.json, "json", false, "Print the records in their persisted JSON form")
}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := c.selectRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	records = dge.Search(records, c.search)

	if c.json {
		if err := dge.EncodeRecords(stdout, records); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding records: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RecordsMarkdown(records))
	return subcommands.ExitSuccess
}
