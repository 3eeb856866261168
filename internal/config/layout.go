package config

import (
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	"git.home.luguber.info/inful/notebinder/internal/docx"
	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/gitinfo"
	"git.home.luguber.info/inful/notebinder/internal/markup"
	"git.home.luguber.info/inful/notebinder/internal/pipeline"
	"git.home.luguber.info/inful/notebinder/internal/schema"
)

// Layout converts the configured outline into a doctree.Layout.
func (c *Config) Layout() doctree.Layout {
	l := doctree.Layout{
		Sections:   layoutSections(c.Sections),
		Categories: make(map[entry.Category]string, len(c.Categories)),
	}
	for cat, id := range c.Categories {
		l.Categories[entry.Category(cat)] = id
	}
	return l
}

func layoutSections(sections []SectionConfig) []doctree.SectionSpec {
	if len(sections) == 0 {
		return nil
	}
	out := make([]doctree.SectionSpec, 0, len(sections))
	for _, s := range sections {
		out = append(out, doctree.SectionSpec{
			ID:       s.ID,
			Title:    s.Title,
			List:     doctree.ListKind(s.List),
			GroupBy:  doctree.GroupBy(s.GroupBy),
			Children: layoutSections(s.Children),
		})
	}
	return out
}

// Metadata builds the document front matter. A revision of "auto" resolves
// to the short HEAD hash of the repository holding the configuration file,
// or to nothing outside a repository.
func (c *Config) Metadata() docx.Metadata {
	d := c.Document
	revision := d.Revision
	if revision == RevisionAuto {
		dir := c.dir
		if dir == "" {
			dir = "."
		}
		rev, err := gitinfo.Revision(dir)
		if err != nil {
			slog.Warn("Could not resolve document revision", "dir", dir, "error", err)
		}
		revision = rev
	}
	return docx.Metadata{
		Title:         d.Title,
		Authors:       d.Authors,
		Date:          d.Date,
		Abstract:      d.Abstract,
		AbstractTitle: d.AbstractTitle,
		TOC:           d.TOC,
		TOCTitle:      d.TOCTitle,
		TOCDepth:      d.TOCDepth,
		Revision:      revision,
	}
}

// PipelineOptions assembles the orchestrator configuration. Recorder and
// Logger are left for the caller.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	render := docx.Options{
		MaxHeadingDepth: c.Render.MaxHeadingDepth,
		MaxBytes:        c.Render.MaxDocumentBytes,
	}
	if c.Document.Styles != "" {
		path := c.Resolve(c.Document.Styles)
		data, err := os.ReadFile(path)
		if err != nil {
			return pipeline.Options{}, derrors.WrapError(err, derrors.CategoryConfig, "failed to read document styles").
				WithContext("path", path).Build()
		}
		render.StylesXML = data
	}

	return pipeline.Options{
		Layout: c.Layout(),
		Schema: schema.Options{
			Markup:       markup.Options{InternalLinkBase: c.Sources.InternalLinkBase},
			IgnoreFields: c.Sources.IgnoreFields,
		},
		Render:   render,
		Metadata: c.Metadata(),
	}, nil
}

// DebounceDuration is the parsed preview.debounce.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(c.Preview.Debounce)
	return d
}

// RescanDuration is the parsed preview.rescan_interval; zero disables rescans.
func (c *Config) RescanDuration() time.Duration {
	if c.Preview.RescanInterval == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Preview.RescanInterval)
	return d
}
