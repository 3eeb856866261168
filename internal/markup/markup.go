// Package markup turns the inline text of entry bodies into formatted spans.
//
// Bodies may be written as Markdown (parsed with goldmark), as HTML fragments
// (parsed with golang.org/x/net/html) or as plain text. All three produce the
// same []entry.Span representation consumed by the renderer.
package markup

import (
	"net/url"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/notebinder/internal/entry"
)

// Options configures span parsing.
type Options struct {
	// InternalLinkBase rewrites site-internal Markdown links ("/a/b/page.md#x")
	// to "<base>/page#x". Empty disables rewriting.
	InternalLinkBase string
}

// Parser converts body text into spans. The zero value is usable.
type Parser struct {
	opts Options
}

// NewParser creates a Parser.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Plain returns the text as a single unformatted span with whitespace collapsed.
func (p *Parser) Plain(src string) []entry.Span {
	text := strings.TrimSpace(collapseSpaces(src))
	if text == "" {
		return nil
	}
	return []entry.Span{{Text: text}}
}

// target resolves a link destination. Destinations that are not an absolute
// http(s) or mailto URL after rewriting yield "" and the text stays plain.
func (p *Parser) target(dest string) string {
	u := RewriteInternalLink(strings.TrimSpace(dest), p.opts.InternalLinkBase)
	if !ValidLinkURL(u) {
		return ""
	}
	return u
}

// ValidLinkURL accepts absolute http(s) URLs with a host and mailto addresses.
func ValidLinkURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "mailto":
		return u.Opaque != "" || u.Path != ""
	default:
		return false
	}
}

var internalLinkPattern = regexp.MustCompile(`^/(?:.*/)?([^/]*?)\.md(#.*)?$`)

// RewriteInternalLink maps an absolute-path Markdown link onto the published site:
//
//	RewriteInternalLink("/tidb/v8/a.md#b", "https://docs.example.com/v8") == "https://docs.example.com/v8/a#b"
//
// Destinations that are not site-internal .md links are returned unchanged.
func RewriteInternalLink(dest, base string) string {
	if base == "" {
		return dest
	}
	m := internalLinkPattern.FindStringSubmatch(dest)
	if m == nil {
		return dest
	}
	return strings.TrimRight(base, "/") + "/" + m[1] + m[2]
}

// spanWriter accumulates spans and inserts a single space between blocks.
type spanWriter struct {
	spans   []entry.Span
	pending bool
}

func (w *spanWriter) add(text string, style entry.Style, url string) {
	if text == "" {
		return
	}
	if w.pending {
		w.pending = false
		w.spans = append(w.spans, entry.Span{Text: " "})
	}
	w.spans = append(w.spans, entry.Span{Text: text, Style: style, URL: url})
}

// separate requests a space before the next non-empty span.
func (w *spanWriter) separate() {
	if len(w.spans) > 0 {
		w.pending = true
	}
}

func (w *spanWriter) result() []entry.Span {
	out := entry.Merge(w.spans)
	for i := range out {
		out[i].Text = collapseSpaces(out[i].Text)
	}
	if len(out) > 0 {
		out[0].Text = strings.TrimLeft(out[0].Text, " ")
		last := len(out) - 1
		out[last].Text = strings.TrimRight(out[last].Text, " ")
	}
	return entry.Merge(out)
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
