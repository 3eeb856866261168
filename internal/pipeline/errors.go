package pipeline

import (
	"fmt"
	"strings"

	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// PipelineError aggregates the failures of one stage. Validation failures are
// collected across all records; every other stage aborts on its first error,
// so Violations then holds exactly one error.
type PipelineError struct {
	Stage      Stage
	Violations []error
}

func (e *PipelineError) Error() string {
	switch len(e.Violations) {
	case 0:
		return fmt.Sprintf("%s stage failed", e.Stage)
	case 1:
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Violations[0])
	default:
		return fmt.Sprintf("%s stage failed with %d violations: %v (and %d more)",
			e.Stage, len(e.Violations), e.Violations[0], len(e.Violations)-1)
	}
}

// Unwrap exposes the individual violations to errors.Is and errors.As.
func (e *PipelineError) Unwrap() []error { return e.Violations }

// Problems lists one message per violation.
func (e *PipelineError) Problems() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Error())
	}
	return out
}

// ErrorCategory classifies the error for the CLI and HTTP adapters.
func (e *PipelineError) ErrorCategory() derrors.ErrorCategory {
	return e.Stage.category()
}

// Summary is a multi-line rendering with one violation per line.
func (e *PipelineError) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s stage failed (%d problem(s))", e.Stage, len(e.Violations))
	for _, p := range e.Problems() {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return b.String()
}
