// Package doctree arranges validated entries into the ordered section tree
// the renderer walks.
package doctree

import (
	"fmt"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// Section is one heading of the document with its entries and subsections.
type Section struct {
	ID       string
	Title    string
	Depth    int // 1-based
	List     ListKind
	Entries  []entry.Entry
	Children []*Section
	// ItemCount counts entries in this section and all descendants.
	ItemCount int
}

// Tree is the ordered, pruned document structure.
type Tree struct {
	Sections []*Section
}

// Walk visits every section depth first in document order.
func (t *Tree) Walk(fn func(*Section)) {
	var walk func([]*Section)
	walk = func(secs []*Section) {
		for _, s := range secs {
			fn(s)
			walk(s.Children)
		}
	}
	walk(t.Sections)
}

// Entries returns every entry in document order.
func (t *Tree) Entries() []entry.Entry {
	var out []entry.Entry
	t.Walk(func(s *Section) { out = append(out, s.Entries...) })
	return out
}

// ItemCount returns the number of entries in the tree.
func (t *Tree) ItemCount() int {
	n := 0
	for _, s := range t.Sections {
		n += s.ItemCount
	}
	return n
}

// UnmappedCategoryError reports an entry whose category has no section.
type UnmappedCategoryError struct {
	Category entry.Category
	EntryID  string
	Ref      entry.Ref
}

func (e *UnmappedCategoryError) Error() string {
	return fmt.Sprintf("entry %q (%s): category %q is not mapped to any section", e.EntryID, e.Ref, e.Category)
}

// ErrorCategory classifies the error for the CLI and HTTP adapters.
func (e *UnmappedCategoryError) ErrorCategory() derrors.ErrorCategory {
	return derrors.CategoryConfig
}

// Builder resolves entries into a Tree using a fixed Layout.
type Builder struct {
	layout Layout
}

// NewBuilder creates a Builder. The layout should have passed Validate.
func NewBuilder(layout Layout) *Builder {
	return &Builder{layout: layout}
}

// Build places each entry into the section its category maps to. Entries keep
// their input order within a section; sections without entries are dropped.
func (b *Builder) Build(entries []entry.Entry) (*Tree, error) {
	known := map[string]bool{}
	var collect func([]SectionSpec)
	collect = func(specs []SectionSpec) {
		for _, s := range specs {
			known[s.ID] = true
			collect(s.Children)
		}
	}
	collect(b.layout.Sections)

	bySection := make(map[string][]entry.Entry)
	for _, e := range entries {
		id, ok := b.layout.Categories[e.Category()]
		if !ok || !known[id] {
			return nil, &UnmappedCategoryError{Category: e.Category(), EntryID: e.ID(), Ref: e.Origin()}
		}
		bySection[id] = append(bySection[id], e)
	}

	return &Tree{Sections: build(b.layout.Sections, bySection, 1)}, nil
}

func build(specs []SectionSpec, bySection map[string][]entry.Entry, depth int) []*Section {
	var out []*Section
	for _, spec := range specs {
		list := spec.List
		if list == "" {
			list = ListBullet
		}
		sec := &Section{ID: spec.ID, Title: spec.Title, Depth: depth, List: list}

		assigned := bySection[spec.ID]
		if spec.GroupBy == GroupComponent {
			sec.Entries, sec.Children = groupByComponent(sec, assigned)
		} else {
			sec.Entries = assigned
		}
		sec.Children = append(sec.Children, build(spec.Children, bySection, depth+1)...)

		sec.ItemCount = len(sec.Entries)
		for _, c := range sec.Children {
			sec.ItemCount += c.ItemCount
		}
		if sec.ItemCount == 0 {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// groupByComponent splits entries into those without a component and one
// child section per component, in order of first appearance.
func groupByComponent(parent *Section, entries []entry.Entry) ([]entry.Entry, []*Section) {
	var direct []entry.Entry
	var groups []*Section
	index := map[string]*Section{}
	for _, e := range entries {
		c := e.Component()
		if c == "" {
			direct = append(direct, e)
			continue
		}
		g, ok := index[c]
		if !ok {
			g = &Section{ID: parent.ID + "/" + c, Title: c, Depth: parent.Depth + 1, List: parent.List}
			index[c] = g
			groups = append(groups, g)
		}
		g.Entries = append(g.Entries, e)
		g.ItemCount++
	}
	return direct, groups
}
