package docx

import (
	"fmt"
	"strings"
)

func stylesXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:styles xmlns:w="` + nsW + `">`)
	b.WriteString(`<w:docDefaults>` +
		`<w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:eastAsia="Calibri" w:cs="Calibri"/><w:sz w:val="22"/><w:szCs w:val="22"/></w:rPr></w:rPrDefault>` +
		`<w:pPrDefault><w:pPr><w:spacing w:after="120" w:line="264" w:lineRule="auto"/></w:pPr></w:pPrDefault>` +
		`</w:docDefaults>`)

	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`)
	paragraphStyle(&b, styleTitle, "Title", "Normal", `<w:spacing w:before="480" w:after="240"/><w:jc w:val="center"/>`, `<w:b/><w:sz w:val="48"/><w:szCs w:val="48"/>`)
	paragraphStyle(&b, styleAuthor, "Author", "Normal", `<w:jc w:val="center"/>`, "")
	paragraphStyle(&b, styleDate, "Date", "Normal", `<w:jc w:val="center"/>`, "")
	paragraphStyle(&b, styleAbstractTitle, "Abstract Title", "Normal", `<w:keepNext/><w:spacing w:before="300" w:after="0"/><w:jc w:val="center"/>`, `<w:b/>`)
	paragraphStyle(&b, styleAbstract, "Abstract", "Normal", `<w:spacing w:before="100" w:after="300"/><w:ind w:left="720" w:right="720"/>`, `<w:sz w:val="20"/><w:szCs w:val="20"/>`)

	for lvl := 1; lvl <= MaxHeadingLevel; lvl++ {
		size := max(36-4*(lvl-1), 22)
		paragraphStyle(&b, headingStyle(lvl), fmt.Sprintf("heading %d", lvl), "Normal",
			fmt.Sprintf(`<w:keepNext/><w:keepLines/><w:spacing w:before="%d" w:after="80"/><w:outlineLvl w:val="%d"/>`, 360-20*(lvl-1), lvl-1),
			fmt.Sprintf(`<w:b/><w:color w:val="1F3864"/><w:sz w:val="%d"/><w:szCs w:val="%d"/>`, size, size))
	}

	paragraphStyle(&b, styleTOCHeading, "TOC Heading", headingStyle(1), `<w:outlineLvl w:val="9"/>`, "")
	paragraphStyle(&b, styleListParagraph, "List Paragraph", "Normal", `<w:spacing w:after="60"/><w:ind w:left="720"/><w:contextualSpacing/>`, "")

	b.WriteString(`<w:style w:type="character" w:styleId="` + styleVerbatimChar + `"><w:name w:val="Verbatim Char"/>` +
		`<w:rPr><w:rFonts w:ascii="Consolas" w:hAnsi="Consolas" w:cs="Consolas"/><w:sz w:val="20"/><w:szCs w:val="20"/></w:rPr></w:style>`)
	b.WriteString(`<w:style w:type="character" w:styleId="` + styleHyperlink + `"><w:name w:val="Hyperlink"/>` +
		`<w:rPr><w:color w:val="0563C1"/><w:u w:val="single"/></w:rPr></w:style>`)

	b.WriteString(`</w:styles>`)
	return b.String()
}

func paragraphStyle(b *strings.Builder, id, name, basedOn, pPr, rPr string) {
	fmt.Fprintf(b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/><w:basedOn w:val="%s"/><w:next w:val="Normal"/><w:qFormat/>`, id, name, basedOn)
	if pPr != "" {
		b.WriteString(`<w:pPr>` + pPr + `</w:pPr>`)
	}
	if rPr != "" {
		b.WriteString(`<w:rPr>` + rPr + `</w:rPr>`)
	}
	b.WriteString(`</w:style>`)
}

func settingsXML(updateFields bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:settings xmlns:w="` + nsW + `">`)
	b.WriteString(`<w:defaultTabStop w:val="720"/>`)
	if updateFields {
		b.WriteString(`<w:updateFields w:val="true"/>`)
	}
	b.WriteString(`<w:compat><w:compatSetting w:name="compatibilityMode" w:uri="http://schemas.microsoft.com/office/word" w:val="15"/></w:compat>`)
	b.WriteString(`</w:settings>`)
	return b.String()
}
