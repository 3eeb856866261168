package schema

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	"git.home.luguber.info/inful/notebinder/internal/markup"
)

func (v *Validator) body(rec entry.Record, raw any, format Format) ([]entry.Span, error) {
	switch b := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v.parseText(rec, FieldBody, b, format)
	case []any:
		var spans []entry.Span
		for i, item := range b {
			field := fmt.Sprintf("%s[%d]", FieldBody, i)
			var part []entry.Span
			var err error
			switch it := item.(type) {
			case string:
				part, err = v.parseText(rec, field, it, format)
			case map[string]any:
				part, err = spanFromMapping(rec, field, it)
			default:
				err = violation(rec, field, ConstraintType, "body item must be a string or mapping, got %s", typeName(item))
			}
			if err != nil {
				return nil, err
			}
			if len(part) == 0 {
				continue
			}
			if len(spans) > 0 {
				spans = append(spans, entry.Span{Text: " "})
			}
			spans = append(spans, part...)
		}
		return entry.Merge(spans), nil
	default:
		return nil, violation(rec, FieldBody, ConstraintType, "body must be a string or sequence, got %s", typeName(raw))
	}
}

func (v *Validator) parseText(rec entry.Record, field, text string, format Format) ([]entry.Span, error) {
	text = norm.NFC.String(text)
	switch format {
	case FormatHTML:
		spans, err := v.parser.HTML(text)
		if err != nil {
			return nil, violation(rec, field, ConstraintFormat, "%v", err)
		}
		return spans, nil
	case FormatPlain:
		return v.parser.Plain(text), nil
	default:
		return v.parser.Markdown(text), nil
	}
}

func spanFromMapping(rec entry.Record, field string, m map[string]any) ([]entry.Span, error) {
	if k := firstUnknown(m, "text", "style", "url"); k != "" {
		return nil, violation(rec, field+"."+k, ConstraintUnknownField, "unknown span field %q", k)
	}

	text, err := requiredString(rec, m, "text")
	if err != nil {
		return nil, relabel(err, field)
	}

	style := entry.Style(0)
	if raw, err := optionalString(rec, m, "style"); err != nil {
		return nil, relabel(err, field)
	} else if raw != "" {
		s, ok := styleNormalizer.Lookup(raw)
		if !ok {
			return nil, violation(rec, field+".style", ConstraintEnum,
				"unknown style %q (valid: %s)", raw, strings.Join(styleNormalizer.ValidKeys(), ", "))
		}
		style = s
	}

	link, err := optionalString(rec, m, "url")
	if err != nil {
		return nil, relabel(err, field)
	}
	link = strings.TrimSpace(link)
	if link != "" && !markup.ValidLinkURL(link) {
		return nil, violation(rec, field+".url", ConstraintURL, "%q is not an absolute http(s) or mailto URL", link)
	}

	return []entry.Span{{Text: norm.NFC.String(text), Style: style, URL: link}}, nil
}

func parseLinks(rec entry.Record, raw any) ([]entry.Link, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, violation(rec, FieldLinks, ConstraintType, "links must be a sequence, got %s", typeName(raw))
	}

	links := make([]entry.Link, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", FieldLinks, i)
		m, ok := item.(map[string]any)
		if !ok {
			return nil, violation(rec, field, ConstraintType, "link must be a mapping, got %s", typeName(item))
		}
		if k := firstUnknown(m, "url", "label"); k != "" {
			return nil, violation(rec, field+"."+k, ConstraintUnknownField, "unknown link field %q", k)
		}
		u, err := requiredString(rec, m, "url")
		if err != nil {
			return nil, relabel(err, field)
		}
		u = strings.TrimSpace(u)
		if !markup.ValidLinkURL(u) {
			return nil, violation(rec, field+".url", ConstraintURL, "%q is not an absolute http(s) or mailto URL", u)
		}
		label, err := optionalString(rec, m, "label")
		if err != nil {
			return nil, relabel(err, field)
		}
		label = norm.NFC.String(strings.TrimSpace(label))
		if label == "" {
			label = u
		}
		links = append(links, entry.Link{URL: u, Label: label})
	}
	return links, nil
}

// firstUnknown returns the alphabetically first key of m not in allowed.
func firstUnknown(m map[string]any, allowed ...string) string {
	var unknown []string
	for k := range m {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	slices.Sort(unknown)
	return unknown[0]
}

// relabel prefixes the field of a nested violation with its parent path.
func relabel(err error, parent string) error {
	if ve, ok := err.(*ValidationError); ok {
		ve.Field = parent + "." + ve.Field
	}
	return err
}
