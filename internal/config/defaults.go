package config

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	"git.home.luguber.info/inful/notebinder/internal/docx"
	"git.home.luguber.info/inful/notebinder/internal/entry"
)

const (
	defaultTitle            = "Release Notes"
	defaultAbstractTitle    = "Abstract"
	defaultTOCTitle         = "Table of Contents"
	defaultTOCDepth         = 3
	defaultMaxDocumentBytes = 64 << 20
	defaultPreviewPort      = 8080
	defaultDebounce         = "300ms"
	defaultRenderRate       = 1.0
	defaultRenderBurst      = 3
	defaultHistoryDB        = "notebinder-runs.db"
	defaultMetricsPath      = "/metrics"
)

var titleCaser = cases.Title(language.English)

// applyDefaults fills every unset field. It runs after normalization.
func applyDefaults(c *Config) {
	d := &c.Document
	if d.Title == "" {
		d.Title = defaultTitle
	}
	if d.AbstractTitle == "" {
		d.AbstractTitle = defaultAbstractTitle
	}
	if d.TOCTitle == "" {
		d.TOCTitle = defaultTOCTitle
	}
	if d.TOCDepth == 0 {
		d.TOCDepth = defaultTOCDepth
	}

	if c.Render.MaxHeadingDepth == 0 {
		c.Render.MaxHeadingDepth = docx.MaxHeadingLevel
	}
	if c.Render.MaxDocumentBytes == 0 {
		c.Render.MaxDocumentBytes = defaultMaxDocumentBytes
	}

	applyLayoutDefaults(c)

	p := &c.Preview
	if p.Port == 0 {
		p.Port = defaultPreviewPort
	}
	if p.Debounce == "" {
		p.Debounce = defaultDebounce
	}
	if p.RenderRate == 0 {
		p.RenderRate = defaultRenderRate
	}
	if p.RenderBurst == 0 {
		p.RenderBurst = defaultRenderBurst
	}
	if p.HistoryDB == "" {
		p.HistoryDB = defaultHistoryDB
	}

	m := &c.Monitoring
	if m.Logging.Level == "" {
		m.Logging.Level = LogLevelInfo
	}
	if m.Logging.Format == "" {
		m.Logging.Format = LogFormatText
	}
	if m.Metrics.Path == "" {
		m.Metrics.Path = defaultMetricsPath
	}
}

// applyLayoutDefaults installs the built-in taxonomy when no sections are
// configured. With custom sections and no category mapping, each category
// maps onto the section sharing its name.
func applyLayoutDefaults(c *Config) {
	if len(c.Sections) == 0 {
		def := doctree.DefaultLayout()
		c.Sections = sectionConfigs(def.Sections)
		if len(c.Categories) == 0 {
			c.Categories = make(map[string]string, len(def.Categories))
			for cat, id := range def.Categories {
				c.Categories[string(cat)] = id
			}
		}
		return
	}

	fillSectionDefaults(c.Sections)

	if len(c.Categories) == 0 {
		ids := map[string]bool{}
		collectIDs(c.Sections, ids)
		c.Categories = map[string]string{}
		for _, cat := range entry.Categories() {
			if ids[string(cat)] {
				c.Categories[string(cat)] = string(cat)
			}
		}
	}
}

func fillSectionDefaults(sections []SectionConfig) {
	for i := range sections {
		s := &sections[i]
		if s.Title == "" && s.ID != "" {
			s.Title = sectionTitle(s.ID)
		}
		if s.List == "" {
			s.List = string(doctree.ListBullet)
		}
		fillSectionDefaults(s.Children)
	}
}

// sectionTitle derives a heading from a section id: "bug_fixes" -> "Bug Fixes".
func sectionTitle(id string) string {
	words := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(id)
	return titleCaser.String(strings.Join(strings.Fields(words), " "))
}

func collectIDs(sections []SectionConfig, ids map[string]bool) {
	for _, s := range sections {
		ids[s.ID] = true
		collectIDs(s.Children, ids)
	}
}

func sectionConfigs(specs []doctree.SectionSpec) []SectionConfig {
	if len(specs) == 0 {
		return nil
	}
	out := make([]SectionConfig, 0, len(specs))
	for _, s := range specs {
		out = append(out, SectionConfig{
			ID:       s.ID,
			Title:    s.Title,
			List:     string(s.List),
			GroupBy:  string(s.GroupBy),
			Children: sectionConfigs(s.Children),
		})
	}
	return out
}
