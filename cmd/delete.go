package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete records" }
func (*deleteCmd) Usage() string {
	return `dge delete <id>...

  Deletes the records. The file is saved after each deletion.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {}

func (c *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing record ID")
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
	for _, ref := range f.Args() {
		r, err := findRecord(store, ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := store.Delete(r.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting record %s: %v\n", r.ID, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Deleted %s (%s)\n", r.ID, r.ItemName)
	}
	return subcommands.ExitSuccess
}
