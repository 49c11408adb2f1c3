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

// editCmd changes the valuation, the finance request or the services of a
// record.
type editCmd struct {
	price   string
	percent string
	scf     scfFlags
	noSCF   bool
	add     string
	remove  string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change the valuation, finance or services of a record" }
func (*editCmd) Usage() string {
	return `dge edit <id> [-price <amount>] [-percent <percent>] [-scf-amount <amount> -scf-rate <rate> -scf-days <days> | -no-scf] [-add <services>] [-remove <services>]

  Changes a record. All changes are applied, or none if one of them fails.
  Repricing keeps the finance request, and fails if the request would exceed
  the new cap.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.price, "price", "", "New original price")
	f.StringVar(&c.percent, "percent", "", "New valuation percent")
	c.scf.register(f)
	f.BoolVar(&c.noSCF, "no-scf", false, "Cancel the finance request")
	f.StringVar(&c.add, "add", "", "Comma separated services to add")
	f.StringVar(&c.remove, "remove", "", "Comma separated services to remove")
}

// apply makes the requested changes to r.
func (c *editCmd) apply(r *dge.Record) error {
	req, err := c.scf.request()
	if err != nil {
		return err
	}
	if req != nil && c.noSCF {
		return fmt.Errorf("-no-scf and -scf-amount are exclusive")
	}
	// a replaced request is not checked against the new price
	if c.noSCF || req != nil {
		r.CancelSCF()
	}

	if c.price != "" || c.percent != "" {
		price, percent := r.OriginalPrice(), r.ValuationPercent()
		if c.price != "" {
			if price, err = dge.ParseMoney(c.price, dge.USD); err != nil {
				return err
			}
		}
		if c.percent != "" {
			if percent, err = dge.ParsePercent(c.percent); err != nil {
				return err
			}
		}
		if err := r.Reprice(price, percent); err != nil {
			return err
		}
	}

	if req != nil {
		if err := r.RequestSCF(req.Requested, req.InterestRate, req.DurationDays); err != nil {
			return err
		}
	}

	for _, name := range splitList(c.remove) {
		kind, err := dge.ParseServiceKind(name)
		if err != nil {
			return err
		}
		r.Services.Deselect(kind)
	}
	for _, name := range splitList(c.add) {
		kind, err := dge.ParseServiceKind(name)
		if err != nil {
			return err
		}
		if _, err := r.SelectService(kind); err != nil {
			return err
		}
	}
	return nil
}

func (c *editCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one record ID")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := a.openStore(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		return subcommands.ExitFailure
	}
	r, err := findRecord(store, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.Update(r.ID, c.apply); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating record %s: %v\n", r.ID, err)
		return subcommands.ExitFailure
	}
	r, _ = store.Get(r.ID)
	printMarkdown(renderer.RecordMarkdown(r))
	return subcommands.ExitSuccess
}
