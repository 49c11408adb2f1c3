// Package cmd implements the CLI application of the damaged goods exchange.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/dge"
	"github.com/etnz/dge/config"
	"github.com/etnz/dge/logger"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&intakeCmd{}, "records")
	c.Register(&listCmd{}, "records")
	c.Register(&showCmd{}, "records")
	c.Register(&editCmd{}, "records")
	c.Register(&statusCmd{}, "records")
	c.Register(&deleteCmd{}, "records")
	c.Register(&fmtCmd{}, "records")

	c.Register(&quoteCmd{}, "finance")
	c.Register(&opportunitiesCmd{}, "finance")
	c.Register(&metricsCmd{}, "finance")
	c.Register(&categoriesCmd{}, "finance")

	c.Register(&publishCmd{}, "reports")
	c.Register(&serveCmd{}, "reports")

	c.Register(&classifyCmd{}, "assistant")
	c.Register(&assistCmd{}, "assistant")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the YAML configuration file")
	dataFile   = flag.String("data", "", "Path to the records file. Overrides the configuration.")
	verbose    = flag.Bool("v", false, "Log debug messages")
)

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// app is what every command needs: the configuration, a logger and the
// category table.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	categories *dge.CategoryTable
}

// newApp loads the configuration and applies the global flags.
func newApp() (*app, error) {
	path := *configFile
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	categories, err := cfg.CategoryTable()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, categories: categories}, nil
}

// openStore opens the records file.
//
// A file that cannot be read at all is only a warning for commands that do
// not write: they see an empty store. Writing would replace the file.
func (a *app) openStore(writable bool) (*dge.Store, error) {
	store, err := dge.OpenStore(a.cfg.DataFile, a.categories, logger.Named(a.log, "store"))
	if err != nil {
		if writable || store == nil {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return store, nil
}

// findRecord returns the record with that ID, or the only record whose ID
// starts with ref.
func findRecord(store *dge.Store, ref string) (*dge.Record, error) {
	if r, err := store.Get(ref); err == nil {
		return r, nil
	}
	var found *dge.Record
	for _, r := range store.Records() {
		if ref == "" || !strings.HasPrefix(r.ID, ref) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("ambiguous record %q: matches %s and %s", ref, found.ID, r.ID)
		}
		found = r
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", dge.ErrNotFound, ref)
	}
	return found, nil
}

// printMarkdown renders markdown for the terminal, or prints it as is if it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

// splitList splits a comma separated list, ignoring empty items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
