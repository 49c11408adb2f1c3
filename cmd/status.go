package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dge"
	"github.com/google/subcommands"
)

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "change the status of a record" }
func (*statusCmd) Usage() string {
	return `dge status <id> <status>

  Changes the status of a record: Pending, Approved, Financed or Closed.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {}

func (c *statusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expected a record ID and a status")
		return subcommands.ExitUsageError
	}
	status, err := dge.ParseStatus(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid status: %v\n", err)
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
	if err := store.SetStatus(r.ID, status); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating record %s: %v\n", r.ID, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%s is now %s\n", r.ID, status)
	return subcommands.ExitSuccess
}
