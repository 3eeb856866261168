package docx

import "encoding/xml"

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeExtended       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relTypeSettings       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	relTypeHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	XmlnsR  string   `xml:"xmlns:r,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Paragraphs []wParagraph `xml:"w:p"`
	SectPr     wSectPr      `xml:"w:sectPr"`
}

type wParagraph struct {
	Props *wPPr `xml:"w:pPr,omitempty"`
	// Items holds *wRun and *wHyperlink values in order.
	Items []any
}

type wPPr struct {
	Style *wVal   `xml:"w:pStyle,omitempty"`
	Num   *wNumPr `xml:"w:numPr,omitempty"`
}

type wNumPr struct {
	Level wVal `xml:"w:ilvl"`
	NumID wVal `xml:"w:numId"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wOn struct{}

type wRun struct {
	XMLName xml.Name `xml:"w:r"`
	Props   *wRPr    `xml:"w:rPr,omitempty"`
	// Content holds *wText, *wFldChar and *wInstrText values.
	Content []any
}

type wRPr struct {
	Style  *wVal `xml:"w:rStyle,omitempty"`
	Bold   *wOn  `xml:"w:b,omitempty"`
	Italic *wOn  `xml:"w:i,omitempty"`
}

type wText struct {
	XMLName xml.Name `xml:"w:t"`
	Space   string   `xml:"xml:space,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

type wFldChar struct {
	XMLName xml.Name `xml:"w:fldChar"`
	Type    string   `xml:"w:fldCharType,attr"`
	Dirty   string   `xml:"w:dirty,attr,omitempty"`
}

type wInstrText struct {
	XMLName xml.Name `xml:"w:instrText"`
	Space   string   `xml:"xml:space,attr"`
	Value   string   `xml:",chardata"`
}

type wHyperlink struct {
	XMLName xml.Name `xml:"w:hyperlink"`
	RelID   string   `xml:"r:id,attr"`
	Runs    []*wRun
}

type wSectPr struct {
	PgSz  wPgSz  `xml:"w:pgSz"`
	PgMar wPgMar `xml:"w:pgMar"`
}

type wPgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type wPgMar struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

func letterSection() wSectPr {
	return wSectPr{
		PgSz:  wPgSz{W: 12240, H: 15840},
		PgMar: wPgMar{Top: 1440, Right: 1440, Bottom: 1440, Left: 1440, Header: 720, Footer: 720},
	}
}

func textNode(s string) *wText {
	t := &wText{Value: s}
	if s != "" && (s[0] == ' ' || s[len(s)-1] == ' ') {
		t.Space = "preserve"
	}
	return t
}

// Package relationships.

type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func rootRelationships() relationships {
	return relationships{Rels: []relationship{
		{ID: "rId1", Type: relTypeOfficeDocument, Target: partDocument},
		{ID: "rId2", Type: relTypeCore, Target: partCore},
		{ID: "rId3", Type: relTypeExtended, Target: partApp},
	}}
}

// Content types.

type contentTypes struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func newContentTypes() contentTypes {
	const wml = "application/vnd.openxmlformats-officedocument.wordprocessingml."
	return contentTypes{
		Defaults: []ctDefault{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []ctOverride{
			{PartName: "/" + partDocument, ContentType: wml + "document.main+xml"},
			{PartName: "/" + partStyles, ContentType: wml + "styles+xml"},
			{PartName: "/" + partNumbering, ContentType: wml + "numbering+xml"},
			{PartName: "/" + partSettings, ContentType: wml + "settings+xml"},
			{PartName: "/" + partCore, ContentType: "application/vnd.openxmlformats-package.core-properties+xml"},
			{PartName: "/" + partApp, ContentType: "application/vnd.openxmlformats-officedocument.extended-properties+xml"},
		},
	}
}
