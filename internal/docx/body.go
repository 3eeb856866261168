package docx

import (
	"fmt"
	"strconv"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	"git.home.luguber.info/inful/notebinder/internal/entry"
)

const (
	styleTitle         = "Title"
	styleAuthor        = "Author"
	styleDate          = "Date"
	styleAbstractTitle = "AbstractTitle"
	styleAbstract      = "Abstract"
	styleTOCHeading    = "TOCHeading"
	styleListParagraph = "ListParagraph"
	styleVerbatimChar  = "VerbatimChar"
	styleHyperlink     = "Hyperlink"

	defaultAbstractTitle = "Abstract"
	defaultTOCTitle      = "Table of Contents"
	defaultTOCDepth      = 3
)

func headingStyle(level int) string { return "Heading" + strconv.Itoa(level) }

type bodyBuilder struct {
	maxDepth   int
	paragraphs []wParagraph
	rels       *relTable
	numbering  *numbering
}

func newBodyBuilder(maxDepth int) *bodyBuilder {
	return &bodyBuilder{
		maxDepth:  maxDepth,
		rels:      newRelTable(),
		numbering: newNumbering(),
	}
}

func (b *bodyBuilder) document() wDocument {
	return wDocument{
		XmlnsW: nsW,
		XmlnsR: nsR,
		Body:   wBody{Paragraphs: b.paragraphs, SectPr: letterSection()},
	}
}

func (b *bodyBuilder) styled(style string, items ...any) {
	b.paragraphs = append(b.paragraphs, wParagraph{
		Props: &wPPr{Style: &wVal{Val: style}},
		Items: items,
	})
}

func (b *bodyBuilder) frontMatter(meta Metadata) {
	if meta.Title != "" {
		b.styled(styleTitle, plainRun(meta.Title))
	}
	for _, a := range meta.Authors {
		if a != "" {
			b.styled(styleAuthor, plainRun(a))
		}
	}
	if meta.Date != "" {
		b.styled(styleDate, plainRun(meta.Date))
	}
	if meta.Abstract != "" {
		title := meta.AbstractTitle
		if title == "" {
			title = defaultAbstractTitle
		}
		b.styled(styleAbstractTitle, plainRun(title))
		b.styled(styleAbstract, plainRun(meta.Abstract))
	}
	if meta.TOC {
		title := meta.TOCTitle
		if title == "" {
			title = defaultTOCTitle
		}
		depth := meta.TOCDepth
		if depth <= 0 {
			depth = defaultTOCDepth
		}
		depth = clamp(depth, MaxHeadingLevel)
		b.styled(styleTOCHeading, plainRun(title))
		b.paragraphs = append(b.paragraphs, wParagraph{Items: tocField(depth)})
	}
}

// tocField emits a table of contents field that Word fills in on open.
func tocField(depth int) []any {
	instr := fmt.Sprintf(` TOC \o "1-%d" \h \z \u `, depth)
	return []any{
		&wRun{Content: []any{&wFldChar{Type: "begin", Dirty: "true"}}},
		&wRun{Content: []any{&wInstrText{Space: "preserve", Value: instr}}},
		&wRun{Content: []any{&wFldChar{Type: "separate"}}},
		plainRun("Update the field to generate the table of contents."),
		&wRun{Content: []any{&wFldChar{Type: "end"}}},
	}
}

func (b *bodyBuilder) section(s *doctree.Section) {
	level := s.Depth
	if level < 1 {
		level = 1
	}
	if level > b.maxDepth {
		level = b.maxDepth
	}
	b.styled(headingStyle(level), plainRun(s.Title))

	if len(s.Entries) > 0 {
		numID := b.numbering.listFor(s.List)
		for _, e := range s.Entries {
			b.entry(e, numID)
		}
	}
	for _, c := range s.Children {
		b.section(c)
	}
}

// entry emits one paragraph group: the bold title as a list item, the body as
// a nested list item, and the reference links appended to the last paragraph.
func (b *bodyBuilder) entry(e entry.Entry, numID int) {
	title := listParagraph(0, numID, &wRun{
		Props:   &wRPr{Bold: &wOn{}},
		Content: []any{textNode(e.Title())},
	})
	group := []wParagraph{title}

	if e.HasBody() {
		body := listParagraph(1, numID)
		for _, s := range e.Body() {
			body.Items = append(body.Items, b.span(s))
		}
		group = append(group, body)
	}

	if links := e.Links(); len(links) > 0 {
		last := &group[len(group)-1]
		last.Items = append(last.Items, plainRun(" ("))
		for i, l := range links {
			if i > 0 {
				last.Items = append(last.Items, plainRun(", "))
			}
			last.Items = append(last.Items, b.hyperlink(l.URL, &wRun{
				Props:   &wRPr{Style: &wVal{Val: styleHyperlink}},
				Content: []any{textNode(l.Label)},
			}))
		}
		last.Items = append(last.Items, plainRun(")"))
	}

	b.paragraphs = append(b.paragraphs, group...)
}

func (b *bodyBuilder) span(s entry.Span) any {
	props := &wRPr{}
	switch {
	case s.Style.Has(entry.StyleCode):
		props.Style = &wVal{Val: styleVerbatimChar}
	case s.IsLink():
		props.Style = &wVal{Val: styleHyperlink}
	}
	if s.Style.Has(entry.StyleStrong) {
		props.Bold = &wOn{}
	}
	if s.Style.Has(entry.StyleEmphasis) {
		props.Italic = &wOn{}
	}
	if props.Style == nil && props.Bold == nil && props.Italic == nil {
		props = nil
	}

	r := &wRun{Props: props, Content: []any{textNode(s.Text)}}
	if s.IsLink() {
		return b.hyperlink(s.URL, r)
	}
	return r
}

func (b *bodyBuilder) hyperlink(url string, runs ...*wRun) *wHyperlink {
	return &wHyperlink{RelID: b.rels.hyperlink(url), Runs: runs}
}

func listParagraph(level, numID int, items ...any) wParagraph {
	return wParagraph{
		Props: &wPPr{
			Style: &wVal{Val: styleListParagraph},
			Num: &wNumPr{
				Level: wVal{Val: strconv.Itoa(level)},
				NumID: wVal{Val: strconv.Itoa(numID)},
			},
		},
		Items: items,
	}
}

func plainRun(text string) *wRun {
	return &wRun{Content: []any{textNode(text)}}
}

// relTable assigns relationship ids for word/document.xml. The fixed parts
// take rId1..rId3; hyperlinks follow in first-use order.
type relTable struct {
	rels  []relationship
	byURL map[string]string
}

func newRelTable() *relTable {
	return &relTable{
		rels: []relationship{
			{ID: "rId1", Type: relTypeStyles, Target: "styles.xml"},
			{ID: "rId2", Type: relTypeNumbering, Target: "numbering.xml"},
			{ID: "rId3", Type: relTypeSettings, Target: "settings.xml"},
		},
		byURL: map[string]string{},
	}
}

func (t *relTable) hyperlink(url string) string {
	if id, ok := t.byURL[url]; ok {
		return id
	}
	id := "rId" + strconv.Itoa(len(t.rels)+1)
	t.rels = append(t.rels, relationship{ID: id, Type: relTypeHyperlink, Target: url, TargetMode: "External"})
	t.byURL[url] = id
	return id
}

func (t *relTable) xml() relationships {
	return relationships{Rels: t.rels}
}
