// Package runlog keeps a history of pipeline runs in SQLite so the preview
// server can show what was rendered, when, and why runs failed.
package runlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/notebinder/internal/metrics"
	"git.home.luguber.info/inful/notebinder/internal/pipeline"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID        uuid.UUID
	Trigger   string
	StartedAt time.Time
	Duration  time.Duration
	Outcome   metrics.OutcomeLabel
	// Stage is the failing stage; empty for successful runs.
	Stage       string
	Violations  int
	Entries     int
	Bytes       int
	Fingerprint string
}

// Store persists runs.
type Store interface {
	// Append records a run.
	Append(ctx context.Context, run Run) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// Close releases resources.
	Close() error
}

// NewRun describes the outcome of a pipeline invocation started at
// startedAt. err is the error returned by the orchestrator, if any.
func NewRun(trigger string, startedAt time.Time, res *pipeline.Result, err error) Run {
	run := Run{
		ID:        uuid.New(),
		Trigger:   trigger,
		StartedAt: startedAt.UTC(),
		Duration:  time.Since(startedAt),
		Outcome:   metrics.OutcomeSuccess,
	}
	if err != nil {
		run.Outcome = metrics.OutcomeFailed
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			run.Stage = string(pe.Stage)
			run.Outcome = pe.Stage.Outcome()
			run.Violations = len(pe.Violations)
		}
		return run
	}
	if res != nil {
		run.Entries = res.Entries
		run.Bytes = len(res.Document)
		run.Fingerprint = res.Fingerprint
	}
	return run
}
