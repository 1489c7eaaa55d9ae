package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpages/cmd/docpages/commands"
	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("docpages"),
		kong.Description("Serve and export Markdown project documentation."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return report(err, cli.Verbose)
	}
	return report(kctx.Run(), cli.Verbose)
}

// report prints err and maps it to an exit code. Usage errors from kong that
// carry no classification exit with 2.
func report(err error, verbose bool) int {
	if err == nil {
		return 0
	}
	adapter := derrors.NewCLIErrorAdapter(verbose, slog.Default())
	adapter.Log(err)
	_, _ = fmt.Fprintln(os.Stderr, adapter.FormatError(err))

	var parseErr *kong.ParseError
	if _, ok := derrors.AsClassified(err); !ok && errors.As(err, &parseErr) {
		return 2
	}
	return adapter.ExitCodeFor(err)
}
