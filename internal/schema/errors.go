package schema

import (
	"fmt"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// Constraint names the rule a record broke.
type Constraint string

const (
	ConstraintRequired     Constraint = "required"
	ConstraintType         Constraint = "type"
	ConstraintEmpty        Constraint = "empty"
	ConstraintEnum         Constraint = "enum"
	ConstraintFormat       Constraint = "format"
	ConstraintURL          Constraint = "url"
	ConstraintUnknownField Constraint = "unknown_field"
)

// ValidationError describes the first rule a record violates.
type ValidationError struct {
	Ref        entry.Ref
	Field      string
	Constraint Constraint
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q: %s (%s)", e.Ref, e.Field, e.Message, e.Constraint)
}

// ErrorCategory classifies the error for the CLI and HTTP adapters.
func (e *ValidationError) ErrorCategory() derrors.ErrorCategory {
	return derrors.CategoryValidation
}

func violation(rec entry.Record, field string, c Constraint, format string, args ...any) *ValidationError {
	return &ValidationError{
		Ref:        rec.Ref(),
		Field:      field,
		Constraint: c,
		Message:    fmt.Sprintf(format, args...),
	}
}
