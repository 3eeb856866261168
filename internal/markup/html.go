package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/notebinder/internal/entry"
)

// HTML parses an HTML fragment into spans. Recognized inline elements are
// code/kbd/samp/tt, em/i, strong/b and a[href]; block elements collapse to spaces
// and script/style content is dropped.
func (p *Parser) HTML(src string) ([]entry.Span, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}

	w := &spanWriter{}
	for _, n := range nodes {
		p.htmlNode(w, n, 0, "")
	}
	return w.result(), nil
}

func (p *Parser) htmlNode(w *spanWriter, n *html.Node, style entry.Style, url string) {
	switch n.Type {
	case html.TextNode:
		w.add(n.Data, style, url)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style:
		return
	case atom.Br:
		w.add(" ", style, url)
		return
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		style |= entry.StyleCode
	case atom.Em, atom.I:
		style |= entry.StyleEmphasis
	case atom.Strong, atom.B:
		style |= entry.StyleStrong
	case atom.A:
		if href := attr(n, "href"); href != "" {
			url = p.target(href)
		}
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre:
		w.separate()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.htmlNode(w, c, style, url)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
