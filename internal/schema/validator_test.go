package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/markup"
)

func record(fields map[string]any) entry.Record {
	return entry.Record{Index: 3, Source: "notes.yaml#3", Fields: fields}
}

func validFields() map[string]any {
	return map[string]any{
		"id":       "tidb-123",
		"title":    "Support `FLASHBACK CLUSTER`",
		"category": "Feature",
	}
}

func requireViolation(t *testing.T, err error, field string, c Constraint) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
	assert.Equal(t, field, ve.Field)
	assert.Equal(t, c, ve.Constraint)
	return ve
}

func TestValidate_MinimalRecord(t *testing.T) {
	v := NewValidator(Options{})

	e, err := v.Validate(record(validFields()))
	require.NoError(t, err)

	assert.Equal(t, "tidb-123", e.ID())
	assert.Equal(t, "Support `FLASHBACK CLUSTER`", e.Title())
	assert.Equal(t, entry.CategoryFeature, e.Category())
	assert.Empty(t, e.Component())
	assert.False(t, e.HasBody())
	assert.Empty(t, e.Links())
	assert.NotEmpty(t, e.Fingerprint())
	assert.Equal(t, entry.Ref{Index: 3, Source: "notes.yaml#3"}, e.Origin())
}

func TestValidate_FullRecord(t *testing.T) {
	v := NewValidator(Options{Markup: markup.Options{InternalLinkBase: "https://docs.example.com/v8"}})
	fields := validFields()
	fields["component"] = " TiKV "
	fields["body"] = "Fix `x` see [doc](/tidb/dev/a.md)"
	fields["links"] = []any{
		map[string]any{"url": "https://github.com/pingcap/tidb/issues/1", "label": "#1"},
		map[string]any{"url": "mailto:dev@example.com"},
	}

	e, err := v.Validate(record(fields))
	require.NoError(t, err)

	assert.Equal(t, "TiKV", e.Component())
	assert.Equal(t, []entry.Span{
		{Text: "Fix "},
		{Text: "x", Style: entry.StyleCode},
		{Text: " see "},
		{Text: "doc", URL: "https://docs.example.com/v8/a"},
	}, e.Body())
	assert.Equal(t, []entry.Link{
		{URL: "https://github.com/pingcap/tidb/issues/1", Label: "#1"},
		{URL: "mailto:dev@example.com", Label: "mailto:dev@example.com"},
	}, e.Links())
}

func TestValidate_BodyLinksWithoutAbsoluteURLAreDropped(t *testing.T) {
	v := NewValidator(Options{})

	fields := validFields()
	fields["body"] = "see [x](javascript:alert(1)) and [y](notes/local.md)"
	e, err := v.Validate(record(fields))
	require.NoError(t, err)
	assert.Equal(t, []entry.Span{{Text: "see x and y"}}, e.Body())

	fields["format"] = "html"
	fields["body"] = `see <a href="javascript:alert(1)">x</a> and <a href="https://example.com">y</a>`
	e, err = v.Validate(record(fields))
	require.NoError(t, err)
	assert.Equal(t, []entry.Span{
		{Text: "see x and "},
		{Text: "y", URL: "https://example.com"},
	}, e.Body())
}

func TestValidate_BodySequence(t *testing.T) {
	v := NewValidator(Options{})
	fields := validFields()
	fields["format"] = "plain"
	fields["body"] = []any{
		"Run",
		map[string]any{"text": "ANALYZE", "style": "code"},
		map[string]any{"text": "docs", "url": "https://x.io"},
	}

	e, err := v.Validate(record(fields))
	require.NoError(t, err)
	assert.Equal(t, []entry.Span{
		{Text: "Run "},
		{Text: "ANALYZE", Style: entry.StyleCode},
		{Text: " "},
		{Text: "docs", URL: "https://x.io"},
	}, e.Body())
}

func TestValidate_HTMLBody(t *testing.T) {
	v := NewValidator(Options{})
	fields := validFields()
	fields["format"] = "HTML"
	fields["body"] = "<p>Use <strong>care</strong></p>"

	e, err := v.Validate(record(fields))
	require.NoError(t, err)
	assert.Equal(t, []entry.Span{{Text: "Use "}, {Text: "care", Style: entry.StyleStrong}}, e.Body())
}

func TestValidate_TitleIsNFCNormalised(t *testing.T) {
	fields := validFields()
	fields["title"] = " Cafe\u0301 "

	e, err := NewValidator(Options{}).Validate(record(fields))
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", e.Title())
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(map[string]any)
		field      string
		constraint Constraint
	}{
		{"missing id", func(m map[string]any) { delete(m, "id") }, "id", ConstraintRequired},
		{"null id", func(m map[string]any) { m["id"] = nil }, "id", ConstraintRequired},
		{"integer id", func(m map[string]any) { m["id"] = 123 }, "id", ConstraintType},
		{"empty id", func(m map[string]any) { m["id"] = "  " }, "id", ConstraintEmpty},
		{"id with space", func(m map[string]any) { m["id"] = "a b" }, "id", ConstraintFormat},
		{"id too long", func(m map[string]any) { m["id"] = strings.Repeat("x", MaxIDLength+1) }, "id", ConstraintFormat},
		{"missing title", func(m map[string]any) { delete(m, "title") }, "title", ConstraintRequired},
		{"empty title", func(m map[string]any) { m["title"] = "" }, "title", ConstraintEmpty},
		{"multi-line title", func(m map[string]any) { m["title"] = "a\nb" }, "title", ConstraintFormat},
		{"missing category", func(m map[string]any) { delete(m, "category") }, "category", ConstraintRequired},
		{"unknown category", func(m map[string]any) { m["category"] = "misc" }, "category", ConstraintEnum},
		{"component type", func(m map[string]any) { m["component"] = []any{"a"} }, "component", ConstraintType},
		{"unknown format", func(m map[string]any) { m["format"] = "rst" }, "format", ConstraintEnum},
		{"body type", func(m map[string]any) { m["body"] = 42 }, "body", ConstraintType},
		{"body item type", func(m map[string]any) { m["body"] = []any{"ok", true} }, "body[1]", ConstraintType},
		{"body span text", func(m map[string]any) { m["body"] = []any{map[string]any{"style": "code"}} }, "body[0].text", ConstraintRequired},
		{"body span style", func(m map[string]any) {
			m["body"] = []any{map[string]any{"text": "x", "style": "blink"}}
		}, "body[0].style", ConstraintEnum},
		{"body span url", func(m map[string]any) {
			m["body"] = []any{map[string]any{"text": "x", "url": "ftp://x"}}
		}, "body[0].url", ConstraintURL},
		{"body span unknown key", func(m map[string]any) {
			m["body"] = []any{map[string]any{"text": "x", "colour": "red"}}
		}, "body[0].colour", ConstraintUnknownField},
		{"links type", func(m map[string]any) { m["links"] = "https://x.io" }, "links", ConstraintType},
		{"link item type", func(m map[string]any) { m["links"] = []any{"https://x.io"} }, "links[0]", ConstraintType},
		{"link missing url", func(m map[string]any) { m["links"] = []any{map[string]any{"label": "x"}} }, "links[0].url", ConstraintRequired},
		{"link relative url", func(m map[string]any) { m["links"] = []any{map[string]any{"url": "/a/b"}} }, "links[0].url", ConstraintURL},
		{"link without host", func(m map[string]any) { m["links"] = []any{map[string]any{"url": "https:///a"}} }, "links[0].url", ConstraintURL},
		{"unknown field", func(m map[string]any) { m["zeta"] = 1; m["alpha"] = 2 }, "alpha", ConstraintUnknownField},
	}

	v := NewValidator(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(fields)
			_, err := v.Validate(record(fields))
			ve := requireViolation(t, err, tt.field, tt.constraint)
			assert.Equal(t, entry.Ref{Index: 3, Source: "notes.yaml#3"}, ve.Ref)
			assert.Equal(t, derrors.CategoryValidation, derrors.CategoryOf(err))
		})
	}
}

func TestValidate_FieldOrderIsFixed(t *testing.T) {
	v := NewValidator(Options{})
	fields := map[string]any{"zzz": 1, "title": 5, "category": "nope"}

	for range 5 {
		_, err := v.Validate(record(fields))
		requireViolation(t, err, "id", ConstraintRequired)
	}

	fields["id"] = "x"
	_, err := v.Validate(record(fields))
	requireViolation(t, err, "title", ConstraintType)
}

func TestValidate_IgnoreFields(t *testing.T) {
	fields := validFields()
	fields["aliases"] = []any{"x"}

	_, err := NewValidator(Options{}).Validate(record(fields))
	requireViolation(t, err, "aliases", ConstraintUnknownField)

	_, err = NewValidator(Options{IgnoreFields: []string{"aliases"}}).Validate(record(fields))
	require.NoError(t, err)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	fields := validFields()
	fields["links"] = []any{map[string]any{"url": "https://x.io"}}

	_, err := NewValidator(Options{}).Validate(record(fields))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "https://x.io"}, fields["links"].([]any)[0])
	assert.Equal(t, "Feature", fields["category"])
}

func TestValidate_FingerprintIgnoresOrigin(t *testing.T) {
	v := NewValidator(Options{})
	a, err := v.Validate(entry.Record{Index: 0, Source: "a.yaml#0", Fields: validFields()})
	require.NoError(t, err)
	b, err := v.Validate(entry.Record{Index: 9, Source: "b.yaml#4", Fields: validFields()})
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Ref: entry.Ref{Index: 1, Source: "x.yaml#1"}, Field: "id", Constraint: ConstraintRequired, Message: "id is required"}
	assert.Equal(t, `record 1 (x.yaml#1): field "id": id is required (required)`, err.Error())
}
