package cmd

import (
	"flag"
	"os"

	"github.com/etnz/dge"
	"github.com/etnz/dge/config"
	"github.com/etnz/dge/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"go.uber.org/zap"
)

// Registered reports whether name is a command of c.
func Registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		found = found || cmd.Name() == name
	})
	return found
}

// Completing reports whether the shell invoked the command to complete a
// command line, or to install the completion.
func Completing() bool {
	for _, key := range []string{"COMP_LINE", "COMP_INSTALL", "COMP_UNINSTALL"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// Completion returns the shell completion of the commands registered in c.
// top holds the global flags.
//
// Categories and ports come from the configuration file named by the
// environment, record IDs from the records file.
func Completion(c *subcommands.Commander, top *flag.FlagSet) *complete.Command {
	categories, ports := dge.DefaultCategories(), dge.PortOptions
	dataFile := config.DefaultDataFile
	if cfg, err := config.Load(os.Getenv(EnvConfigFile)); err == nil {
		if t, err := cfg.CategoryTable(); err == nil {
			categories = t
		}
		ports, dataFile = cfg.PortOptions(), cfg.DataFile
	}
	ids := complete.PredictFunc(func(string) []string {
		store, err := dge.OpenStore(dataFile, categories, zap.NewNop())
		if err != nil {
			return nil
		}
		var ids []string
		for _, r := range store.Records() {
			ids = append(ids, r.ID)
		}
		return ids
	})
	return completion(c, top, categories, ports, ids)
}

func completion(c *subcommands.Commander, top *flag.FlagSet, categories *dge.CategoryTable, ports []string, ids complete.Predictor) *complete.Command {
	names := make(predict.Set, 0)
	for _, cat := range categories.Categories() {
		names = append(names, string(cat))
	}
	choices := map[string]complete.Predictor{
		"category": names,
		"port":     predict.Set(ports),
		"scf":      predict.Set{"yes", "no", "all"},
		"urgency":  choiceSet(dge.Urgencies),
		"services": choiceSet(dge.ServiceKinds),
		"add":      choiceSet(dge.ServiceKinds),
		"remove":   choiceSet(dge.ServiceKinds),
		"config":   predict.Files("*.yaml"),
		"data":     predict.Files("*.json"),
		"o":        predict.Dirs("*"),
	}
	args := map[string]complete.Predictor{
		"show":   ids,
		"edit":   ids,
		"delete": ids,
		"status": complete.PredictFunc(func(prefix string) []string {
			return append(ids.Predict(prefix), choiceSet(dge.Statuses)...)
		}),
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		args["topic"] = predict.Set(topics)
	}

	root := &complete.Command{Sub: make(map[string]*complete.Command), Flags: flagPredictors(top, choices)}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		root.Sub[cmd.Name()] = &complete.Command{Flags: flagPredictors(fs, choices), Args: args[cmd.Name()]}
	})
	return root
}

// flagPredictors predicts the values of the flags in fs.
func flagPredictors(fs *flag.FlagSet, choices map[string]complete.Predictor) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		if p, ok := choices[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

func choiceSet[T ~string](choices []T) predict.Set {
	set := make(predict.Set, 0, len(choices))
	for _, c := range choices {
		set = append(set, string(c))
	}
	return set
}
