package entry

import "strings"

// Style is a bitmask of inline formatting applied to a Span.
type Style uint8

const (
	StyleCode Style = 1 << iota
	StyleEmphasis
	StyleStrong
)

// Has reports whether all bits of flag are set.
func (s Style) Has(flag Style) bool { return s&flag == flag }

func (s Style) String() string {
	if s == 0 {
		return "plain"
	}
	var parts []string
	if s.Has(StyleCode) {
		parts = append(parts, "code")
	}
	if s.Has(StyleEmphasis) {
		parts = append(parts, "emphasis")
	}
	if s.Has(StyleStrong) {
		parts = append(parts, "strong")
	}
	return strings.Join(parts, "+")
}

// Span is a run of text sharing one formatting. A non-empty URL makes it a hyperlink.
type Span struct {
	Text  string
	Style Style
	URL   string
}

// IsLink reports whether the span renders as a hyperlink.
func (s Span) IsLink() bool { return s.URL != "" }

// PlainText concatenates the text of spans.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Merge joins adjacent spans that share style and URL, and drops empty ones.
func Merge(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Style == s.Style && out[n-1].URL == s.URL {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}
