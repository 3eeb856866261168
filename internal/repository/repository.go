// Package repository holds the validated entries of one pipeline run.
package repository

import (
	"fmt"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// DuplicateIdentifierError reports a second entry with an identifier that is
// already stored.
type DuplicateIdentifierError struct {
	ID        string
	Existing  entry.Ref
	Duplicate entry.Ref
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate identifier %q: %s conflicts with %s", e.ID, e.Duplicate, e.Existing)
}

// ErrorCategory classifies the error for the CLI and HTTP adapters.
func (e *DuplicateIdentifierError) ErrorCategory() derrors.ErrorCategory {
	return derrors.CategoryConflict
}

// Repository is an insertion-ordered set of entries keyed by identifier.
// It never removes entries and is not safe for concurrent use; every run
// creates its own.
type Repository struct {
	entries []entry.Entry
	byID    map[string]int
}

// New returns an empty Repository.
func New() *Repository {
	return &Repository{byID: make(map[string]int)}
}

// Add appends e unless an entry with the same identifier is already present.
func (r *Repository) Add(e entry.Entry) error {
	if i, ok := r.byID[e.ID()]; ok {
		return &DuplicateIdentifierError{
			ID:        e.ID(),
			Existing:  r.entries[i].Origin(),
			Duplicate: e.Origin(),
		}
	}
	r.byID[e.ID()] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

// All returns the entries in insertion order. The slice is a copy.
func (r *Repository) All() []entry.Entry {
	out := make([]entry.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of stored entries.
func (r *Repository) Len() int { return len(r.entries) }

// Get looks an entry up by identifier.
func (r *Repository) Get(id string) (entry.Entry, bool) {
	i, ok := r.byID[id]
	if !ok {
		return entry.Entry{}, false
	}
	return r.entries[i], true
}
