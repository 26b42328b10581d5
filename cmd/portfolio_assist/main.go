// Command portfolio_assist fetches a portfolio from one data source, prints
// its valuation and answers questions about it.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := newCommander(flag.CommandLine, path.Base(os.Args[0]), os.Stdin, os.Stdout, os.Stderr)
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func newCommander(fs *flag.FlagSet, name string, stdin io.Reader, stdout, stderr io.Writer) *subcommands.Commander {
	commander := subcommands.NewCommander(fs, name)
	commander.Output = stdout
	commander.Error = stderr

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range sourceCommands(stdin, stdout, stderr) {
		commander.Register(c, "sources")
	}
	return commander
}
