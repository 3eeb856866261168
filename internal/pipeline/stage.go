package pipeline

import (
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/metrics"
)

// Stage is a strongly-typed identifier for a pipeline stage.
type Stage string

// Canonical stage names, in execution order.
const (
	StageValidate  Stage = "validate"
	StageCollect   Stage = "collect"
	StageStructure Stage = "structure"
	StageRender    Stage = "render"
)

// Stages returns every stage in execution order.
func Stages() []Stage {
	return []Stage{StageValidate, StageCollect, StageStructure, StageRender}
}

func (s Stage) category() derrors.ErrorCategory {
	switch s {
	case StageValidate:
		return derrors.CategoryValidation
	case StageCollect:
		return derrors.CategoryConflict
	case StageStructure:
		return derrors.CategoryConfig
	case StageRender:
		return derrors.CategoryRender
	default:
		return derrors.CategoryInternal
	}
}

// Outcome is the run outcome reported when s fails.
func (s Stage) Outcome() metrics.OutcomeLabel {
	switch s {
	case StageValidate:
		return metrics.OutcomeInvalid
	case StageCollect:
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeFailed
	}
}
