package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dge"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	dryRun bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the records file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `dge fmt [-n]

  Validates and formats the records file. This command reads all records,
  reports the malformed ones, recomputes the derived amounts and writes them
  back in canonical form. Malformed records that cannot be repaired are
  dropped.

Usage Examples:
# Prints the problems and the formatted records without writing them.
$ dge fmt -n

`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.dryRun, "n", false, "Print the formatted records instead of writing them")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	data, err := os.ReadFile(a.cfg.DataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not read records: %v\n", err)
		return subcommands.ExitFailure
	}
	records, issues, err := dge.DecodeRecords(bytes.NewReader(data), a.categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", issue)
	}

	if p.dryRun {
		if err := dge.EncodeRecords(stdout, records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	// the store drops duplicated IDs and writes atomically.
	store, err := a.openStore(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Records file '%s' has been formatted: %d records, %d issues.\n", a.cfg.DataFile, store.Len(), len(issues))
	return subcommands.ExitSuccess
}
