package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/notebinder/internal/config"
	"git.home.luguber.info/inful/notebinder/internal/metrics"
	"git.home.luguber.info/inful/notebinder/internal/pipeline"
	"git.home.luguber.info/inful/notebinder/internal/preview"
	"git.home.luguber.info/inful/notebinder/internal/runlog"
)

// PreviewCmd serves a live preview of the document.
type PreviewCmd struct {
	Sources []string `arg:"" name:"sources" help:"Entry files or directories to watch"`
	Host    string   `name:"host" default:"localhost" help:"Interface to listen on"`
	Port    int      `name:"port" help:"Preview server port (defaults to preview.port)"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	opts, err := p.serverOptions(cfg, g)
	if err != nil {
		return err
	}
	if opts.Store != nil {
		defer func() { _ = opts.Store.Close() }()
	}

	_, _ = fmt.Fprintf(g.stdout(), "Preview at http://%s\n", opts.Addr)
	return preview.New(opts).Run(sigctx)
}

// serverOptions wires the pipeline, metrics and run log for the preview server.
func (p *PreviewCmd) serverOptions(cfg *config.Config, g *Global) (preview.Options, error) {
	pipeOpts, err := cfg.PipelineOptions()
	if err != nil {
		return preview.Options{}, err
	}
	pipeOpts.Logger = g.logger()

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		handler  http.Handler
	)
	if cfg.Monitoring.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		handler = metrics.HTTPHandler(reg)
	}
	pipeOpts.Recorder = recorder

	orch, err := pipeline.New(pipeOpts)
	if err != nil {
		return preview.Options{}, err
	}

	opts := preview.Options{
		Addr:           net.JoinHostPort(p.Host, strconv.Itoa(p.port(cfg))),
		Sources:        p.Sources,
		SourceOptions:  sourceOptions(cfg),
		Runner:         orch,
		Recorder:       recorder,
		MetricsHandler: handler,
		MetricsPath:    cfg.Monitoring.Metrics.Path,
		RenderRate:     cfg.Preview.RenderRate,
		RenderBurst:    cfg.Preview.RenderBurst,
		Debounce:       cfg.DebounceDuration(),
		RescanInterval: cfg.RescanDuration(),
		Title:          cfg.Document.Title,
		Logger:         g.logger(),
	}
	if cfg.Preview.HistoryDB != "" {
		store, err := runlog.NewSQLiteStore(cfg.Resolve(cfg.Preview.HistoryDB))
		if err != nil {
			return preview.Options{}, err
		}
		opts.Store = store
	}
	return opts, nil
}

func (p *PreviewCmd) port(cfg *config.Config) int {
	if p.Port > 0 {
		return p.Port
	}
	return cfg.Preview.Port
}
