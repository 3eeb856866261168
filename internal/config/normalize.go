package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	"git.home.luguber.info/inful/notebinder/internal/docx"
	"git.home.luguber.info/inful/notebinder/internal/entry"
	"git.home.luguber.info/inful/notebinder/internal/foundation/normalization"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

var listKindNormalizer = normalization.NewNormalizer(map[string]doctree.ListKind{
	"bullet":   doctree.ListBullet,
	"bullets":  doctree.ListBullet,
	"numbered": doctree.ListNumbered,
	"number":   doctree.ListNumbered,
	"ordered":  doctree.ListNumbered,
}, doctree.ListBullet)

var groupByNormalizer = normalization.NewNormalizer(map[string]doctree.GroupBy{
	"none":      doctree.GroupNone,
	"component": doctree.GroupComponent,
}, doctree.GroupNone)

// NormalizeConfig canonicalizes enumerated and bounded fields prior to
// default application. Unrecognized section enums are left untouched so
// validation can report them.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	normalizeDocument(&c.Document, res)
	normalizeRender(&c.Render, res)
	normalizeSections(c.Sections, "sections", res)
	normalizeCategories(c, res)
	normalizeMonitoring(&c.Monitoring, res)
	return res
}

func normalizeDocument(d *DocumentConfig, res *NormalizationResult) {
	d.Title = strings.TrimSpace(d.Title)
	d.Revision = strings.TrimSpace(d.Revision)
	if strings.EqualFold(d.Revision, RevisionAuto) && d.Revision != RevisionAuto {
		res.Warnings = append(res.Warnings, warnChanged("document.revision", d.Revision, RevisionAuto))
		d.Revision = RevisionAuto
	}
	if d.TOCDepth < 0 || d.TOCDepth > docx.MaxHeadingLevel {
		clamped := min(max(d.TOCDepth, 1), docx.MaxHeadingLevel)
		res.Warnings = append(res.Warnings, warnChanged("document.toc_depth", d.TOCDepth, clamped))
		d.TOCDepth = clamped
	}
}

func normalizeRender(r *RenderConfig, res *NormalizationResult) {
	if r.MaxHeadingDepth < 0 || r.MaxHeadingDepth > docx.MaxHeadingLevel {
		clamped := min(max(r.MaxHeadingDepth, 1), docx.MaxHeadingLevel)
		res.Warnings = append(res.Warnings, warnChanged("render.max_heading_depth", r.MaxHeadingDepth, clamped))
		r.MaxHeadingDepth = clamped
	}
	if r.MaxDocumentBytes < 0 {
		res.Warnings = append(res.Warnings, warnChanged("render.max_document_bytes", r.MaxDocumentBytes, 0))
		r.MaxDocumentBytes = 0
	}
}

func normalizeSections(sections []SectionConfig, path string, res *NormalizationResult) {
	for i := range sections {
		s := &sections[i]
		where := fmt.Sprintf("%s[%d]", path, i)
		s.ID = strings.TrimSpace(s.ID)
		s.Title = strings.TrimSpace(s.Title)
		if strings.TrimSpace(s.List) != "" {
			if lk, ok := listKindNormalizer.Lookup(s.List); ok && string(lk) != s.List {
				res.Warnings = append(res.Warnings, warnChanged(where+".list", s.List, lk))
				s.List = string(lk)
			}
		}
		if strings.TrimSpace(s.GroupBy) != "" {
			if gb, ok := groupByNormalizer.Lookup(s.GroupBy); ok && string(gb) != s.GroupBy {
				res.Warnings = append(res.Warnings, warnChanged(where+".group_by", s.GroupBy, gb))
				s.GroupBy = string(gb)
			}
		}
		normalizeSections(s.Children, where+".children", res)
	}
}

func normalizeCategories(c *Config, res *NormalizationResult) {
	if len(c.Categories) == 0 {
		return
	}
	out := make(map[string]string, len(c.Categories))
	for raw, section := range c.Categories {
		key := raw
		if cat, ok := entry.ParseCategory(raw); ok && string(cat) != raw {
			res.Warnings = append(res.Warnings, warnChanged("categories."+raw, raw, cat))
			key = string(cat)
		}
		out[key] = strings.TrimSpace(section)
	}
	c.Categories = out
}

func normalizeMonitoring(m *MonitoringConfig, res *NormalizationResult) {
	if raw := strings.TrimSpace(string(m.Logging.Level)); raw != "" {
		if lvl, ok := logLevelNormalizer.Lookup(raw); !ok {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.level", raw, string(LogLevelInfo)))
			m.Logging.Level = LogLevelInfo
		} else if lvl != m.Logging.Level {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", m.Logging.Level, lvl))
			m.Logging.Level = lvl
		}
	}
	if raw := strings.TrimSpace(string(m.Logging.Format)); raw != "" {
		if f, ok := logFormatNormalizer.Lookup(raw); !ok {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.format", raw, string(LogFormatText)))
			m.Logging.Format = LogFormatText
		} else if f != m.Logging.Format {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", m.Logging.Format, f))
			m.Logging.Format = f
		}
	}
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s'; defaulting to %s", field, value, def)
}
