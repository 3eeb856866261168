// Package schema validates raw records and turns them into immutable entries.
//
// Validation is pure: the input map is never modified and the fields are
// checked in a fixed order, so the same record always yields the same error.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	"git.home.luguber.info/inful/notebinder/internal/fingerprint"
	"git.home.luguber.info/inful/notebinder/internal/foundation/normalization"
	"git.home.luguber.info/inful/notebinder/internal/markup"
)

// MaxIDLength is the maximum identifier length in runes.
const MaxIDLength = 128

// Field names accepted on a record.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldCategory  = "category"
	FieldComponent = "component"
	FieldFormat    = "format"
	FieldBody      = "body"
	FieldLinks     = "links"
)

var knownFields = map[string]bool{
	FieldID: true, FieldTitle: true, FieldCategory: true, FieldComponent: true,
	FieldFormat: true, FieldBody: true, FieldLinks: true,
}

// Format selects how body strings are parsed.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPlain    Format = "plain"
)

var formatNormalizer = normalization.NewNormalizer(map[string]Format{
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"html":     FormatHTML,
	"plain":    FormatPlain,
	"text":     FormatPlain,
}, FormatMarkdown)

var styleNormalizer = normalization.NewNormalizer(map[string]entry.Style{
	"plain":    0,
	"code":     entry.StyleCode,
	"emphasis": entry.StyleEmphasis,
	"strong":   entry.StyleStrong,
}, 0)

// Options configures a Validator.
type Options struct {
	Markup markup.Options
	// IgnoreFields lists extra record keys that are accepted and dropped.
	IgnoreFields []string
}

// Validator checks records against the entry schema. It holds no mutable
// state and may be shared between goroutines.
type Validator struct {
	parser *markup.Parser
	ignore map[string]bool
}

// NewValidator creates a Validator.
func NewValidator(opts Options) *Validator {
	ignore := make(map[string]bool, len(opts.IgnoreFields))
	for _, f := range opts.IgnoreFields {
		ignore[f] = true
	}
	return &Validator{parser: markup.NewParser(opts.Markup), ignore: ignore}
}

// Validate converts rec into an Entry or returns a *ValidationError describing
// the first violation.
func (v *Validator) Validate(rec entry.Record) (entry.Entry, error) {
	fields := rec.Fields

	id, err := requiredString(rec, fields, FieldID)
	if err != nil {
		return entry.Entry{}, err
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return entry.Entry{}, violation(rec, FieldID, ConstraintFormat, "identifier %q must not contain whitespace", id)
	}
	if utf8.RuneCountInString(id) > MaxIDLength {
		return entry.Entry{}, violation(rec, FieldID, ConstraintFormat, "identifier exceeds %d characters", MaxIDLength)
	}

	title, err := requiredString(rec, fields, FieldTitle)
	if err != nil {
		return entry.Entry{}, err
	}
	title = norm.NFC.String(strings.TrimSpace(title))
	if strings.ContainsAny(title, "\r\n") {
		return entry.Entry{}, violation(rec, FieldTitle, ConstraintFormat, "title must be a single line")
	}

	rawCategory, err := requiredString(rec, fields, FieldCategory)
	if err != nil {
		return entry.Entry{}, err
	}
	category, ok := entry.ParseCategory(rawCategory)
	if !ok {
		return entry.Entry{}, violation(rec, FieldCategory, ConstraintEnum,
			"unknown category %q (valid: %s)", rawCategory, strings.Join(entry.CategoryNames(), ", "))
	}

	component, err := optionalString(rec, fields, FieldComponent)
	if err != nil {
		return entry.Entry{}, err
	}
	component = norm.NFC.String(strings.TrimSpace(component))

	format := FormatMarkdown
	if raw, err := optionalString(rec, fields, FieldFormat); err != nil {
		return entry.Entry{}, err
	} else if raw != "" {
		f, ok := formatNormalizer.Lookup(raw)
		if !ok {
			return entry.Entry{}, violation(rec, FieldFormat, ConstraintEnum,
				"unknown format %q (valid: %s)", raw, strings.Join(formatNormalizer.ValidKeys(), ", "))
		}
		format = f
	}

	body, err := v.body(rec, fields[FieldBody], format)
	if err != nil {
		return entry.Entry{}, err
	}

	links, err := parseLinks(rec, fields[FieldLinks])
	if err != nil {
		return entry.Entry{}, err
	}

	if err := v.unknownFields(rec); err != nil {
		return entry.Entry{}, err
	}

	fp, err := fingerprint.Entry(id, title, category, component, body, links)
	if err != nil {
		return entry.Entry{}, violation(rec, FieldBody, ConstraintFormat, "fingerprint: %v", err)
	}

	return entry.New(entry.Fields{
		ID:          id,
		Title:       title,
		Category:    category,
		Component:   component,
		Body:        body,
		Links:       links,
		Fingerprint: fp,
		Origin:      rec.Ref(),
	}), nil
}

func (v *Validator) unknownFields(rec entry.Record) error {
	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		if !knownFields[k] && !v.ignore[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return violation(rec, keys[0], ConstraintUnknownField, "unknown field %q", keys[0])
}

func requiredString(rec entry.Record, fields map[string]any, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return "", violation(rec, name, ConstraintRequired, "%s is required", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", violation(rec, name, ConstraintType, "%s must be a string, got %s", name, typeName(raw))
	}
	if strings.TrimSpace(s) == "" {
		return "", violation(rec, name, ConstraintEmpty, "%s must not be empty", name)
	}
	return s, nil
}

func optionalString(rec entry.Record, fields map[string]any, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", violation(rec, name, ConstraintType, "%s must be a string, got %s", name, typeName(raw))
	}
	return s, nil
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "number"
	case []any:
		return "sequence"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
