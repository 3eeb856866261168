package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partCore         = "docProps/core.xml"
	partApp          = "docProps/app.xml"
	partDocument     = "word/document.xml"
	partStyles       = "word/styles.xml"
	partNumbering    = "word/numbering.xml"
	partSettings     = "word/settings.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
)

// PartNames lists every part in the order it is written.
func PartNames() []string {
	return []string{
		partContentTypes, partRootRels, partCore, partApp, partDocument,
		partStyles, partNumbering, partSettings, partDocumentRels,
	}
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// zipEpoch is the earliest timestamp representable in a zip header.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

func marshalPart(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type packageWriter struct {
	limited *limitWriter
	zw      *zip.Writer
}

func newPackageWriter(w io.Writer, maxBytes int64) *packageWriter {
	lw := &limitWriter{w: w, max: maxBytes}
	return &packageWriter{limited: lw, zw: zip.NewWriter(lw)}
}

func (p *packageWriter) add(name string, data []byte) error {
	fw, err := p.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: zipEpoch,
	})
	if err != nil {
		return err
	}
	_, err = fw.Write(data)
	return err
}

func (p *packageWriter) close() error {
	return p.zw.Close()
}

// limitWriter fails once more than max bytes have been written. A max of zero
// means unlimited.
type limitWriter struct {
	w       io.Writer
	max     int64
	written int64
}

func (l *limitWriter) Write(b []byte) (int, error) {
	if l.max > 0 && l.written+int64(len(b)) > l.max {
		return 0, fmt.Errorf("%w (limit %d bytes)", ErrDocumentTooLarge, l.max)
	}
	n, err := l.w.Write(b)
	l.written += int64(n)
	return n, err
}
