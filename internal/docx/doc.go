// Package docx renders a document tree into a WordprocessingML (.docx)
// package.
//
// The output is fully deterministic: zip entries are written in a fixed order
// with a fixed timestamp, relationship and numbering ids are assigned in
// document order, and nothing reads the wall clock. Rendering the same tree
// with the same metadata yields byte-identical output.
//
// Part layout:
//
//	[Content_Types].xml
//	_rels/.rels
//	docProps/core.xml
//	docProps/app.xml
//	word/document.xml
//	word/styles.xml
//	word/numbering.xml
//	word/settings.xml
//	word/_rels/document.xml.rels
package docx
