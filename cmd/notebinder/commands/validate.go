package commands

import (
	"time"

	"git.home.luguber.info/inful/notebinder/internal/report"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Sources []string `arg:"" name:"sources" help:"Entry files or directories"`
	Format  string   `short:"f" default:"text" enum:"text,json" help:"Report format (text or json)"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	formatter, err := report.NewFormatter(v.Format, g.stdout())
	if err != nil {
		return err
	}
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := runPipeline(cfg, g, v.Sources, true)
	if rerr := reportResult(g, formatter, "validate", res, err, "", time.Since(start)); rerr != nil && err == nil {
		return rerr
	}
	return err
}
