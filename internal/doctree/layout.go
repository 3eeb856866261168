package doctree

import (
	"errors"
	"fmt"
	"slices"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// ListKind selects how a section's entries are enumerated.
type ListKind string

const (
	ListBullet   ListKind = "bullet"
	ListNumbered ListKind = "numbered"
)

// GroupBy selects an optional automatic sub-grouping of a section.
type GroupBy string

const (
	GroupNone      GroupBy = ""
	GroupComponent GroupBy = "component"
)

// SectionSpec configures one section. Sibling order is render priority.
type SectionSpec struct {
	ID       string
	Title    string
	List     ListKind
	GroupBy  GroupBy
	Children []SectionSpec
}

// Layout is the category to section mapping plus section priority.
type Layout struct {
	Sections   []SectionSpec
	Categories map[entry.Category]string
}

// Validate reports every configuration defect in the layout.
func (l Layout) Validate() error {
	var errs []error
	seen := map[string]bool{}

	var walk func(specs []SectionSpec, path string)
	walk = func(specs []SectionSpec, path string) {
		for i, s := range specs {
			where := fmt.Sprintf("%s[%d]", path, i)
			switch {
			case s.ID == "":
				errs = append(errs, configErr("%s: section id is required", where))
			case seen[s.ID]:
				errs = append(errs, configErr("%s: duplicate section id %q", where, s.ID))
			default:
				seen[s.ID] = true
			}
			if s.Title == "" {
				errs = append(errs, configErr("%s: section %q has no title", where, s.ID))
			}
			if s.List != "" && s.List != ListBullet && s.List != ListNumbered {
				errs = append(errs, configErr("%s: invalid list kind %q", where, s.List))
			}
			if s.GroupBy != GroupNone && s.GroupBy != GroupComponent {
				errs = append(errs, configErr("%s: invalid group_by %q", where, s.GroupBy))
			}
			walk(s.Children, where+".children")
		}
	}
	walk(l.Sections, "sections")

	known := entry.Categories()
	cats := make([]string, 0, len(l.Categories))
	for c := range l.Categories {
		cats = append(cats, string(c))
	}
	slices.Sort(cats)
	for _, c := range cats {
		target := l.Categories[entry.Category(c)]
		if !slices.Contains(known, entry.Category(c)) {
			errs = append(errs, configErr("categories: unknown category %q", c))
		}
		if !seen[target] {
			errs = append(errs, configErr("categories: %q maps to unknown section %q", c, target))
		}
	}
	return errors.Join(errs...)
}

func configErr(format string, args ...any) error {
	return derrors.ConfigError(fmt.Sprintf(format, args...)).Build()
}

// DefaultLayout is the built-in release-note taxonomy: one section per
// category in canonical order, with improvements and bug fixes grouped by
// component.
func DefaultLayout() Layout {
	type def struct {
		cat     entry.Category
		title   string
		groupBy GroupBy
	}
	defs := []def{
		{entry.CategoryCompatibility, "Compatibility Changes", GroupNone},
		{entry.CategoryFeature, "New Features", GroupNone},
		{entry.CategoryImprovement, "Improvements", GroupComponent},
		{entry.CategoryPerformance, "Performance", GroupNone},
		{entry.CategoryBugfix, "Bug Fixes", GroupComponent},
		{entry.CategorySecurity, "Security", GroupNone},
		{entry.CategoryDeprecation, "Deprecations", GroupNone},
		{entry.CategoryDocumentation, "Documentation", GroupNone},
	}

	l := Layout{Categories: make(map[entry.Category]string, len(defs))}
	for _, d := range defs {
		id := string(d.cat)
		l.Sections = append(l.Sections, SectionSpec{ID: id, Title: d.title, List: ListBullet, GroupBy: d.groupBy})
		l.Categories[d.cat] = id
	}
	return l
}
