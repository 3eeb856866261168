// Package preview serves a live view of the document while its sources are
// edited. Every rebuild and every render request is an isolated pipeline run.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/time/rate"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/logfields"
	"git.home.luguber.info/inful/notebinder/internal/metrics"
	"git.home.luguber.info/inful/notebinder/internal/pipeline"
	"git.home.luguber.info/inful/notebinder/internal/runlog"
	"git.home.luguber.info/inful/notebinder/internal/source"
)

// Runner runs the pipeline; *pipeline.Orchestrator implements it.
type Runner interface {
	Run(records []entry.Record) (*pipeline.Result, error)
}

// Options configures a Server.
type Options struct {
	Addr          string
	Sources       []string
	SourceOptions source.Options
	Runner        Runner
	// Store records every run; nil disables history.
	Store    runlog.Store
	Recorder metrics.Recorder
	// MetricsHandler is mounted at MetricsPath when non-nil.
	MetricsHandler http.Handler
	MetricsPath    string
	// RenderRate limits POST /api/render per second; zero means unlimited.
	RenderRate  float64
	RenderBurst int
	Debounce    time.Duration
	// RescanInterval schedules periodic rebuilds; zero disables them.
	RescanInterval time.Duration
	Title          string
	Logger         *slog.Logger
}

// Server is the preview HTTP server plus its rebuild machinery.
type Server struct {
	opts         Options
	status       *buildStatus
	queue        *rebuildQueue
	limiter      *rate.Limiter
	errorAdapter *derrors.HTTPErrorAdapter
	logger       *slog.Logger
}

const (
	maxRenderBody   = 8 << 20
	runsPageDefault = 20
	runsPageMax     = 200
	shutdownTimeout = 5 * time.Second
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	staleHeader     = "X-Notebinder-Stale"
)

// New creates a Server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Title == "" {
		opts.Title = "notebinder preview"
	}
	limit := rate.Inf
	if opts.RenderRate > 0 {
		limit = rate.Limit(opts.RenderRate)
	}
	burst := max(opts.RenderBurst, 1)
	return &Server{
		opts:         opts,
		status:       &buildStatus{},
		queue:        newRebuildQueue(),
		limiter:      rate.NewLimiter(limit, burst),
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
		logger:       opts.Logger,
	}
}

// Rebuild loads the sources and runs the pipeline once. The outcome updates
// the page and is appended to the run log.
func (s *Server) Rebuild(ctx context.Context, trigger string) error {
	started := time.Now()
	s.opts.Recorder.IncRebuild(trigger)

	records, err := source.Load(s.opts.Sources, s.opts.SourceOptions)
	var res *pipeline.Result
	if err == nil {
		res, err = s.opts.Runner.Run(records)
	}
	s.record(ctx, runlog.NewRun(trigger, started, res, err))

	if err != nil {
		s.logger.Warn("Rebuild failed", logfields.Trigger(trigger), logfields.Error(err))
		s.status.setError(err)
		return err
	}
	s.logger.Info("Rebuild complete",
		logfields.Trigger(trigger),
		logfields.Entries(res.Entries),
		logfields.Bytes(len(res.Document)),
		logfields.DurationMS(float64(time.Since(started).Microseconds())/1000))
	s.status.setSuccess(res)
	return nil
}

func (s *Server) record(ctx context.Context, run runlog.Run) {
	if s.opts.Store == nil {
		return
	}
	if err := s.opts.Store.Append(ctx, run); err != nil {
		s.logger.Warn("Failed to record run", logfields.RunID(run.ID.String()), logfields.Error(err))
	}
}

// Run performs the initial build, then serves HTTP, watches the sources and
// runs scheduled rescans until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "failed to bind preview server").
			WithContext("addr", s.opts.Addr).Build()
	}

	watcher, err := NewWatcher(s.opts.Sources)
	if err != nil {
		_ = ln.Close()
		return derrors.WrapError(err, derrors.CategorySource, "failed to watch sources").Build()
	}
	defer func() { _ = watcher.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	_ = s.Rebuild(ctx, TriggerStartup)
	go s.queue.run(ctx, func(ctx context.Context, trigger string) { _ = s.Rebuild(ctx, trigger) })

	deb := newDebouncer(s.opts.Debounce, func() { s.queue.request(TriggerWatch) })
	defer deb.stop()
	go watcher.Run(ctx, deb.trigger)

	scheduler, err := s.startRescans()
	if err != nil {
		_ = ln.Close()
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.Info("Preview server listening", slog.String("url", fmt.Sprintf("http://%s", ln.Addr())))

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return derrors.WrapError(err, derrors.CategoryRuntime, "preview server failed").Build()
		}
		return nil
	}

	s.logger.Info("Shutting down preview server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	return nil
}

// startRescans schedules periodic rebuild requests. It returns nil when
// rescans are disabled.
func (s *Server) startRescans() (gocron.Scheduler, error) {
	if s.opts.RescanInterval <= 0 {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.opts.RescanInterval),
		gocron.NewTask(s.queue.request, TriggerRescan),
		gocron.WithName("source-rescan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "failed to schedule rescans").Build()
	}
	scheduler.Start()
	s.logger.Info("Scheduled source rescans", slog.Duration("interval", s.opts.RescanInterval))
	return scheduler, nil
}
