package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/notebinder/cmd/notebinder/commands"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Stdout: os.Stdout, Stderr: os.Stderr}

	ctx := kong.Parse(cli,
		kong.Name("notebinder"),
		kong.Description("Render release-note entries into a Word document."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(global, cli); err != nil {
		derrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
