// Package report turns pipeline results and failures into console output:
// a styled text summary for humans and a JSON document for tooling.
package report

import (
	"errors"
	"time"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	"git.home.luguber.info/inful/notebinder/internal/docx"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/pipeline"
	"git.home.luguber.info/inful/notebinder/internal/repository"
	"git.home.luguber.info/inful/notebinder/internal/schema"
)

// Report is the outcome of one CLI command.
type Report struct {
	Command     string           `json:"command"`
	Success     bool             `json:"success"`
	Output      string           `json:"output,omitempty"`
	Entries     int              `json:"entries"`
	Bytes       int              `json:"bytes,omitempty"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	DurationMS  float64          `json:"duration_ms"`
	Sections    []SectionSummary `json:"sections,omitempty"`
	Stage       string           `json:"stage,omitempty"`
	Category    string           `json:"category,omitempty"`
	Problems    []Problem        `json:"problems,omitempty"`
}

// SectionSummary is one line of the document outline.
type SectionSummary struct {
	Title string `json:"title"`
	Depth int    `json:"depth"`
	Items int    `json:"items"`
}

// Problem is one reportable failure.
type Problem struct {
	Source     string `json:"source,omitempty"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Message    string `json:"message"`
}

// New builds a report for a command that produced res or failed with err.
func New(command string, res *pipeline.Result, err error, elapsed time.Duration) *Report {
	r := &Report{
		Command:    command,
		Success:    err == nil,
		DurationMS: float64(elapsed.Microseconds()) / 1000,
	}
	if err != nil {
		r.Category = string(derrors.CategoryOf(err))
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			r.Stage = string(pe.Stage)
		}
		r.Problems = Problems(err)
		return r
	}
	if res != nil {
		r.Entries = res.Entries
		r.Bytes = len(res.Document)
		r.Fingerprint = res.Fingerprint
		r.Sections = Outline(res.Tree)
	}
	return r
}

// Outline lists the sections of t in document order.
func Outline(t *doctree.Tree) []SectionSummary {
	if t == nil {
		return nil
	}
	var out []SectionSummary
	t.Walk(func(s *doctree.Section) {
		out = append(out, SectionSummary{Title: s.Title, Depth: s.Depth, Items: s.ItemCount})
	})
	return out
}

// Problems flattens err into one Problem per violation.
func Problems(err error) []Problem {
	if err == nil {
		return nil
	}
	var pe *pipeline.PipelineError
	if !errors.As(err, &pe) {
		return []Problem{problem(err)}
	}
	out := make([]Problem, 0, len(pe.Violations))
	for _, v := range pe.Violations {
		out = append(out, problem(v))
	}
	return out
}

func problem(err error) Problem {
	var (
		ve *schema.ValidationError
		de *repository.DuplicateIdentifierError
		ue *doctree.UnmappedCategoryError
		re *docx.RenderError
		ce *derrors.ClassifiedError
	)
	switch {
	case errors.As(err, &ve):
		return Problem{Source: ve.Ref.String(), Field: ve.Field, Constraint: string(ve.Constraint), Message: ve.Message}
	case errors.As(err, &de):
		return Problem{Source: de.Duplicate.String(), Field: schema.FieldID, Message: de.Error()}
	case errors.As(err, &ue):
		return Problem{Source: ue.Ref.String(), Field: schema.FieldCategory, Message: ue.Error()}
	case errors.As(err, &re):
		return Problem{Source: re.Part, Message: re.Error()}
	case errors.As(err, &ce):
		p := Problem{Message: ce.Message()}
		if path, ok := ce.Context().GetString("path"); ok {
			p.Source = path
		}
		if ce.Cause() != nil {
			p.Message += ": " + ce.Cause().Error()
		}
		return p
	default:
		return Problem{Message: err.Error()}
	}
}
