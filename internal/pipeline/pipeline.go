// Package pipeline sequences validation, collection, structuring and
// rendering of entry records into a document.
//
// A run is all-or-nothing: the caller receives either a complete document or
// a *PipelineError listing every problem of the failing stage, never both.
// The Orchestrator holds only immutable configuration, and every Run builds
// its own repository and tree, so concurrent runs do not interfere.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	"git.home.luguber.info/inful/notebinder/internal/docx"
	"git.home.luguber.info/inful/notebinder/internal/entry"
	"git.home.luguber.info/inful/notebinder/internal/fingerprint"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/logfields"
	"git.home.luguber.info/inful/notebinder/internal/metrics"
	"git.home.luguber.info/inful/notebinder/internal/repository"
	"git.home.luguber.info/inful/notebinder/internal/schema"
)

// Options configures an Orchestrator.
type Options struct {
	Layout   doctree.Layout
	Schema   schema.Options
	Render   docx.Options
	Metadata docx.Metadata
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	// Document is nil for Check runs.
	Document       []byte
	Tree           *doctree.Tree
	Entries        int
	Fingerprint    string
	StageDurations map[Stage]time.Duration
}

// Orchestrator runs the pipeline with a fixed configuration.
type Orchestrator struct {
	validator *schema.Validator
	builder   *doctree.Builder
	renderer  *docx.Renderer
	meta      docx.Metadata
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// New validates the layout and creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if err := opts.Layout.Validate(); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "invalid document layout").Build()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		validator: schema.NewValidator(opts.Schema),
		builder:   doctree.NewBuilder(opts.Layout),
		renderer:  docx.NewRenderer(opts.Render),
		meta:      opts.Metadata,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
	}, nil
}

// Run validates every record and, if all pass, renders the document.
func (o *Orchestrator) Run(records []entry.Record) (*Result, error) {
	return o.run(records, true)
}

// Check performs every stage except rendering.
func (o *Orchestrator) Check(records []entry.Record) (*Result, error) {
	return o.run(records, false)
}

// stageDef pairs a stage name with its executing function.
type stageDef struct {
	name Stage
	fn   func(*runState, []entry.Record) *PipelineError
}

type runState struct {
	entries []entry.Entry
	repo    *repository.Repository
	tree    *doctree.Tree
	fp      string
	doc     []byte
}

func (o *Orchestrator) run(records []entry.Record, render bool) (*Result, error) {
	start := time.Now()
	res := &Result{StageDurations: make(map[Stage]time.Duration, 4)}
	st := &runState{}

	stages := []stageDef{
		{StageValidate, o.validate},
		{StageCollect, o.collect},
		{StageStructure, o.structure},
	}
	if render {
		stages = append(stages, stageDef{StageRender, o.render})
	}

	for _, s := range stages {
		t0 := time.Now()
		perr := s.fn(st, records)
		d := time.Since(t0)
		res.StageDurations[s.name] = d
		o.recorder.ObserveStageDuration(string(s.name), d)

		if perr != nil {
			o.recorder.IncStageResult(string(s.name), metrics.ResultFailed)
			o.recorder.IncRunOutcome(s.name.Outcome())
			o.recorder.ObserveRunDuration(time.Since(start))
			o.logger.Warn("Pipeline stage failed",
				logfields.Stage(string(s.name)),
				logfields.Violations(len(perr.Violations)),
				logfields.DurationMS(float64(d.Microseconds())/1000))
			return nil, perr
		}
		o.recorder.IncStageResult(string(s.name), metrics.ResultSuccess)
		o.logger.Debug("Pipeline stage completed",
			logfields.Stage(string(s.name)),
			logfields.DurationMS(float64(d.Microseconds())/1000))
	}

	res.Document = st.doc
	res.Tree = st.tree
	res.Entries = st.repo.Len()
	res.Fingerprint = st.fp

	o.recorder.IncRunOutcome(metrics.OutcomeSuccess)
	o.recorder.ObserveRunDuration(time.Since(start))
	if render {
		o.recorder.ObserveDocumentBytes(len(st.doc))
	}
	o.logger.Info("Pipeline run completed",
		logfields.Entries(res.Entries),
		logfields.Bytes(len(res.Document)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return res, nil
}

func (o *Orchestrator) validate(st *runState, records []entry.Record) *PipelineError {
	var violations []error
	entries := make([]entry.Entry, 0, len(records))
	for _, rec := range records {
		e, err := o.validator.Validate(rec)
		if err != nil {
			o.logger.Debug("Record rejected", logfields.Record(rec.Ref().String()), logfields.Error(err))
			violations = append(violations, err)
			continue
		}
		entries = append(entries, e)
	}
	if len(violations) > 0 {
		o.recorder.AddViolations(len(violations))
		return &PipelineError{Stage: StageValidate, Violations: violations}
	}
	st.entries = entries
	return nil
}

func (o *Orchestrator) collect(st *runState, _ []entry.Record) *PipelineError {
	repo := repository.New()
	for _, e := range st.entries {
		if err := repo.Add(e); err != nil {
			return &PipelineError{Stage: StageCollect, Violations: []error{err}}
		}
	}
	st.repo = repo
	return nil
}

func (o *Orchestrator) structure(st *runState, _ []entry.Record) *PipelineError {
	tree, err := o.builder.Build(st.repo.All())
	if err != nil {
		return &PipelineError{Stage: StageStructure, Violations: []error{err}}
	}
	fp, err := o.documentFingerprint(tree)
	if err != nil {
		return &PipelineError{Stage: StageStructure, Violations: []error{err}}
	}
	st.tree = tree
	st.fp = fp
	return nil
}

func (o *Orchestrator) render(st *runState, _ []entry.Record) *PipelineError {
	meta := o.meta
	meta.Fingerprint = st.fp

	doc, err := o.renderer.Render(st.tree, meta)
	if err != nil {
		return &PipelineError{Stage: StageRender, Violations: []error{err}}
	}
	st.doc = doc
	return nil
}

// documentFingerprint hashes the metadata together with the entry
// fingerprints in document order.
func (o *Orchestrator) documentFingerprint(tree *doctree.Tree) (string, error) {
	meta := map[string]any{
		"title":    o.meta.Title,
		"date":     o.meta.Date,
		"abstract": o.meta.Abstract,
		"revision": o.meta.Revision,
		"toc":      o.meta.TOC,
	}
	if len(o.meta.Authors) > 0 {
		meta["authors"] = o.meta.Authors
	}

	var parts []string
	tree.Walk(func(s *doctree.Section) {
		parts = append(parts, "# "+s.Title)
		for _, e := range s.Entries {
			parts = append(parts, e.Fingerprint())
		}
	})
	fp, err := fingerprint.Document(meta, parts)
	if err != nil {
		return "", fmt.Errorf("document fingerprint: %w", err)
	}
	return fp, nil
}
