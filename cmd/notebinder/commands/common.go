package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/notebinder/internal/config"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/pipeline"
	"git.home.luguber.info/inful/notebinder/internal/report"
	"git.home.luguber.info/inful/notebinder/internal/source"
)

// Global carries the process streams and the active logger.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"notebinder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Render entry files into a Word document"`
	Validate ValidateCmd `cmd:"" help:"Validate entry files without rendering"`
	Preview  PreviewCmd  `cmd:"" help:"Serve a live preview that rebuilds when sources change"`
	Init     InitCmd     `cmd:"" help:"Write a default configuration file"`
}

// AfterApply runs after flag parsing; it installs a logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.stderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration and switches to the logger it describes.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = cfg.Monitoring.Logging.NewLogger(g.stderr(), c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

func sourceOptions(cfg *config.Config) source.Options {
	return source.Options{StripFrontMatter: cfg.Sources.StripFrontMatter}
}

// runPipeline loads sources and runs the pipeline. With check set the
// render stage is skipped.
func runPipeline(cfg *config.Config, g *Global, sources []string, check bool) (*pipeline.Result, error) {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = g.logger()

	orch, err := pipeline.New(opts)
	if err != nil {
		return nil, err
	}
	records, err := source.Load(sources, sourceOptions(cfg))
	if err != nil {
		return nil, err
	}
	if check {
		return orch.Check(records)
	}
	return orch.Run(records)
}

// reportResult writes the command report to stdout.
func reportResult(g *Global, f report.Formatter, command string, res *pipeline.Result, err error, output string, elapsed time.Duration) error {
	rep := report.New(command, res, err, elapsed)
	if err == nil {
		rep.Output = output
	}
	if ferr := f.Format(g.stdout(), rep); ferr != nil {
		return derrors.WrapError(ferr, derrors.CategoryInternal, "failed to write report").Build()
	}
	return nil
}

func writeDocument(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to create output directory").
				WithContext("path", dir).Build()
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to write document").
			WithContext("path", path).Build()
	}
	return nil
}
