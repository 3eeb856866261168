package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/notebinder/internal/entry"
)

// Markdown parses src with goldmark and flattens it into spans. Block structure
// (paragraphs, list items, headings) collapses to single spaces; inline code,
// emphasis, strong emphasis, links and autolinks keep their formatting.
func (p *Parser) Markdown(src string) []entry.Span {
	source := []byte(src)
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify))
	root := md.Parser().Parse(text.NewReader(source))

	w := &spanWriter{}
	p.markdownBlock(w, root, source)
	return w.result()
}

func (p *Parser) markdownBlock(w *spanWriter, n gmast.Node, source []byte) {
	switch n.(type) {
	case *gmast.FencedCodeBlock, *gmast.CodeBlock:
		w.separate()
		w.add(linesText(n, source), entry.StyleCode, "")
		return
	case *gmast.HTMLBlock:
		w.separate()
		w.add(linesText(n, source), 0, "")
		return
	}

	if first := n.FirstChild(); first != nil && first.Type() == gmast.TypeInline {
		w.separate()
		for c := first; c != nil; c = c.NextSibling() {
			p.markdownInline(w, c, source, 0, "")
		}
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.markdownBlock(w, c, source)
	}
}

func (p *Parser) markdownInline(w *spanWriter, n gmast.Node, source []byte, style entry.Style, url string) {
	switch node := n.(type) {
	case *gmast.Text:
		w.add(string(node.Segment.Value(source)), style, url)
		if node.SoftLineBreak() || node.HardLineBreak() {
			w.add(" ", style, url)
		}
		return
	case *gmast.String:
		w.add(string(node.Value), style, url)
		return
	case *gmast.CodeSpan:
		style |= entry.StyleCode
	case *gmast.Emphasis:
		if node.Level >= 2 {
			style |= entry.StyleStrong
		} else {
			style |= entry.StyleEmphasis
		}
	case *gmast.Link:
		url = p.target(string(node.Destination))
	case *gmast.AutoLink:
		w.add(string(node.Label(source)), style, p.target(string(node.URL(source))))
		return
	case *gmast.RawHTML:
		segs := node.Segments
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			w.add(string(seg.Value(source)), style, url)
		}
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.markdownInline(w, c, source, style, url)
	}
}

func linesText(n gmast.Node, source []byte) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if line := strings.TrimSpace(string(seg.Value(source))); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
