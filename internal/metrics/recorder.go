package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// OutcomeLabel enumerates final run outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeInvalid  OutcomeLabel = "invalid"  // validation failures
	OutcomeConflict OutcomeLabel = "conflict" // duplicate identifiers
	OutcomeFailed   OutcomeLabel = "failed"   // structure or render failures
)

// Recorder defines observability hooks for pipeline runs. Implementations must
// be safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(outcome OutcomeLabel)
	ObserveDocumentBytes(n int)
	AddViolations(n int)
	IncRebuild(trigger string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                 {}
func (NoopRecorder) ObserveDocumentBytes(int)                   {}
func (NoopRecorder) AddViolations(int)                          {}
func (NoopRecorder) IncRebuild(string)                          {}
