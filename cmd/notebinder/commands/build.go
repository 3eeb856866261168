package commands

import (
	"time"

	"git.home.luguber.info/inful/notebinder/internal/logfields"
	"git.home.luguber.info/inful/notebinder/internal/report"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Sources []string `arg:"" name:"sources" help:"Entry files or directories"`
	Output  string   `short:"o" default:"release-notes.docx" help:"Output document path"`
	Format  string   `short:"f" default:"text" enum:"text,json" help:"Report format (text or json)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	formatter, err := report.NewFormatter(b.Format, g.stdout())
	if err != nil {
		return err
	}
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := runPipeline(cfg, g, b.Sources, false)
	if err == nil {
		err = writeDocument(b.Output, res.Document)
	}
	if rerr := reportResult(g, formatter, "build", res, err, b.Output, time.Since(start)); rerr != nil && err == nil {
		return rerr
	}
	if err != nil {
		return err
	}

	g.logger().Debug("Document written", logfields.Path(b.Output), logfields.Bytes(len(res.Document)))
	return nil
}
