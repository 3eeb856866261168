package docx

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/google/uuid"
)

// identifierSpace namespaces the v5 UUIDs derived from content fingerprints.
var identifierSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://git.home.luguber.info/inful/notebinder"))

// Identifier returns the stable document identifier for a content fingerprint.
func Identifier(fingerprint string) string {
	return "urn:uuid:" + uuid.NewSHA1(identifierSpace, []byte(fingerprint)).String()
}

type coreProperties struct {
	XMLName       xml.Name `xml:"cp:coreProperties"`
	XmlnsCP       string   `xml:"xmlns:cp,attr"`
	XmlnsDC       string   `xml:"xmlns:dc,attr"`
	XmlnsDCTerms  string   `xml:"xmlns:dcterms,attr"`
	XmlnsDCMIType string   `xml:"xmlns:dcmitype,attr"`
	XmlnsXSI      string   `xml:"xmlns:xsi,attr"`
	Title         string   `xml:"dc:title,omitempty"`
	Creator       string   `xml:"dc:creator,omitempty"`
	Description   string   `xml:"dc:description,omitempty"`
	Identifier    string   `xml:"dc:identifier"`
	Version       string   `xml:"cp:version,omitempty"`
	Created       *w3cdtf  `xml:"dcterms:created,omitempty"`
}

type w3cdtf struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

func newCoreProperties(meta Metadata) coreProperties {
	cp := coreProperties{
		XmlnsCP:       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XmlnsDC:       "http://purl.org/dc/elements/1.1/",
		XmlnsDCTerms:  "http://purl.org/dc/terms/",
		XmlnsDCMIType: "http://purl.org/dc/dcmitype/",
		XmlnsXSI:      "http://www.w3.org/2001/XMLSchema-instance",
		Title:         meta.Title,
		Creator:       strings.Join(meta.Authors, "; "),
		Description:   meta.Abstract,
		Identifier:    Identifier(meta.Fingerprint),
		Version:       meta.Revision,
	}
	if t, ok := parseDate(meta.Date); ok {
		cp.Created = &w3cdtf{Type: "dcterms:W3CDTF", Value: t.UTC().Format(time.RFC3339)}
	}
	return cp
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "January 2, 2006", "2 January 2006"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type appProperties struct {
	XMLName     xml.Name `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Properties"`
	Application string   `xml:"Application"`
	DocSecurity int      `xml:"DocSecurity"`
}

func newAppProperties() appProperties {
	return appProperties{Application: "notebinder"}
}
