// Package entry defines the validated value types that flow through the
// document pipeline: raw records as decoded from sources, and the immutable
// Entry values the schema validator produces from them.
package entry

import (
	"fmt"
	"slices"
)

// Record is one undecoded entry as read from a source. It only lives until validation.
type Record struct {
	Index  int            // position within the run, across all sources
	Source string         // human readable origin, e.g. "notes/8.5.yaml#3"
	Fields map[string]any // decoded YAML/TOML/front matter mapping
}

// Ref returns the reference used in diagnostics for this record.
func (r Record) Ref() Ref {
	return Ref{Index: r.Index, Source: r.Source}
}

// Ref points back at the record an Entry or an error came from.
type Ref struct {
	Index  int
	Source string
}

func (r Ref) String() string {
	if r.Source == "" {
		return fmt.Sprintf("record %d", r.Index)
	}
	return fmt.Sprintf("record %d (%s)", r.Index, r.Source)
}

// Link is a labelled reference URL.
type Link struct {
	URL   string
	Label string
}

// Entry is one validated unit of documentation content. Values are immutable:
// fields are only set by New and slice accessors return copies.
type Entry struct {
	id          string
	title       string
	category    Category
	component   string
	body        []Span
	links       []Link
	fingerprint string
	origin      Ref
}

// Fields groups the constructor arguments of New.
type Fields struct {
	ID          string
	Title       string
	Category    Category
	Component   string
	Body        []Span
	Links       []Link
	Fingerprint string
	Origin      Ref
}

// New builds an Entry. It copies the slices so later mutation of f cannot leak in.
func New(f Fields) Entry {
	return Entry{
		id:          f.ID,
		title:       f.Title,
		category:    f.Category,
		component:   f.Component,
		body:        slices.Clone(f.Body),
		links:       slices.Clone(f.Links),
		fingerprint: f.Fingerprint,
		origin:      f.Origin,
	}
}

func (e Entry) ID() string          { return e.id }
func (e Entry) Title() string       { return e.title }
func (e Entry) Category() Category  { return e.category }
func (e Entry) Component() string   { return e.component }
func (e Entry) Fingerprint() string { return e.fingerprint }
func (e Entry) Origin() Ref         { return e.origin }

// Body returns a copy of the formatted body spans.
func (e Entry) Body() []Span { return slices.Clone(e.body) }

// Links returns a copy of the reference links.
func (e Entry) Links() []Link { return slices.Clone(e.links) }

// HasBody reports whether the entry carries any body text.
func (e Entry) HasBody() bool {
	for _, s := range e.body {
		if s.Text != "" {
			return true
		}
	}
	return false
}
