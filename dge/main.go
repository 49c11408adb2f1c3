// Command dge records damaged goods, values them and manages the supply chain
// finance requested against them.
//
// Run "dge help" for the commands and "dge topic" for the documentation.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/dge/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	if cmd.Completing() {
		cmd.Completion(commander, flag.CommandLine).Complete("dge")
	}

	flag.Parse()
	if name := flag.Arg(0); name != "" && !cmd.Registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
