package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/dge"
	"github.com/etnz/dge/date"
	"github.com/etnz/dge/renderer"
	"github.com/google/subcommands"
)

// intakeCmd records new damaged goods.
type intakeCmd struct {
	name     string
	hsCode   string
	quantity int
	port     string
	reason   string
	category string
	rejected string
	urgency  string
	price    string
	percent  string
	file     string
	services string
	scf      scfFlags
}

func (*intakeCmd) Name() string     { return "intake" }
func (*intakeCmd) Synopsis() string { return "record rejected or damaged goods" }
func (*intakeCmd) Usage() string {
	return `dge intake -name <item> -category <category> -price <amount> -port <port> [options]

  Records goods rejected at a port or damaged in transit. The goods are valued
  with the category default valuation percent unless -percent is given.

  Supply chain finance can be requested with -scf-amount, -scf-rate and
  -scf-days. The amount cannot exceed 60% of the valued price.

Usage Examples:
$ dge intake -name "Laptops" -qty 10 -category Electronics -price 1000 -port Mumbai
$ dge intake -name "Laptops" -category Electronics -price 1000 -port Mumbai -services Inspection,Insurance -scf-amount 300 -scf-rate 12 -scf-days 30
`
}

func (c *intakeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Item name")
	f.StringVar(&c.hsCode, "hs", "", "Harmonized System code")
	f.IntVar(&c.quantity, "qty", 1, "Quantity")
	f.StringVar(&c.port, "port", "", "Port of rejection")
	f.StringVar(&c.reason, "reason", "", "Reason of rejection or damage")
	f.StringVar(&c.category, "category", "", "Goods category")
	f.StringVar(&c.rejected, "date", "", "Rejection date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.urgency, "urgency", string(dge.LowUrgency), "Urgency (Low, Medium, High, Critical)")
	f.StringVar(&c.price, "price", "", "Original price in USD")
	f.StringVar(&c.percent, "percent", "", "Valuation percent. Defaults to the category default.")
	f.StringVar(&c.file, "file", "", "Reference of an attached document")
	f.StringVar(&c.services, "services", "", "Comma separated ancillary services")
	c.scf.register(f)
}

func (c *intakeCmd) intake(categories *dge.CategoryTable, now time.Time) (dge.Intake, error) {
	in := dge.Intake{
		ItemName:   c.name,
		HSCode:     c.hsCode,
		Quantity:   c.quantity,
		Port:       c.port,
		Reason:     c.reason,
		Category:   dge.Category(c.category),
		Attachment: c.file,
	}
	if cat, ok := categories.Lookup(c.category); ok {
		in.Category = cat
	}
	var err error
	if in.Urgency, err = dge.ParseUrgency(c.urgency); err != nil {
		return in, fmt.Errorf("invalid urgency: %w", err)
	}
	if c.rejected != "" {
		if in.RejectionDate, err = date.Parse(c.rejected); err != nil {
			return in, err
		}
	}
	if in.OriginalPrice, err = dge.ParseMoney(c.price, dge.USD); err != nil {
		return in, fmt.Errorf("invalid price %q: %w", c.price, err)
	}
	if c.percent != "" {
		p, err := dge.ParsePercent(c.percent)
		if err != nil {
			return in, err
		}
		in.Override = &p
	}
	return in, nil
}

func (c *intakeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "Error: no arguments expected")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	now := time.Now()
	in, err := c.intake(a.categories, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	req, err := c.scf.request()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	r, err := dge.NewRecord(a.categories, in, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, name := range splitList(c.services) {
		kind, err := dge.ParseServiceKind(name)
		if err == nil {
			_, err = r.SelectService(kind)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error selecting service %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
	}
	if req != nil {
		if err := r.RequestSCF(req.Requested, req.InterestRate, req.DurationDays); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	store, err := a.openStore(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.Append(r); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving record: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RecordMarkdown(r))
	return subcommands.ExitSuccess
}

// scfFlags are the flags of a finance request.
type scfFlags struct {
	amount string
	rate   string
	days   int
}

func (s *scfFlags) register(f *flag.FlagSet) {
	f.StringVar(&s.amount, "scf-amount", "", "Requested supply chain finance, in USD")
	f.StringVar(&s.rate, "scf-rate", "", "Annual interest rate of the finance, in percent")
	f.IntVar(&s.days, "scf-days", 30, "Duration of the finance, in days (1-180)")
}

// request returns the finance request, or nil if no amount was given.
func (s *scfFlags) request() (*dge.SCFRequest, error) {
	if s.amount == "" {
		return nil, nil
	}
	amount, err := dge.ParseMoney(s.amount, dge.USD)
	if err != nil {
		return nil, fmt.Errorf("invalid SCF amount %q: %w", s.amount, err)
	}
	if s.rate == "" {
		return nil, fmt.Errorf("missing SCF interest rate (-scf-rate)")
	}
	rate, err := dge.ParsePercent(s.rate)
	if err != nil {
		return nil, err
	}
	return &dge.SCFRequest{Requested: amount, InterestRate: rate, DurationDays: s.days}, nil
}
