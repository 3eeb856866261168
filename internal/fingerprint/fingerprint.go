// Package fingerprint computes stable content hashes for entries and rendered
// documents using mdfp over canonical YAML.
package fingerprint

import (
	"errors"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	"git.home.luguber.info/inful/notebinder/internal/frontmatter"
)

// Compute hashes a field map together with a body. Keys are serialised in
// sorted order, so map iteration order never changes the result.
func Compute(fields map[string]any, body string) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}
	fields = withoutFingerprint(fields)

	head := ""
	if len(fields) > 0 {
		serialized, err := frontmatter.Canonical(fields)
		if err != nil {
			return "", err
		}
		head = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(head, body), nil
}

// Entry hashes the semantic content of a validated entry: everything except
// its origin, so moving an entry between files keeps its fingerprint.
func Entry(id, title string, category entry.Category, component string, body []entry.Span, links []entry.Link) (string, error) {
	fields := map[string]any{
		"id":       id,
		"title":    title,
		"category": string(category),
	}
	if component != "" {
		fields["component"] = component
	}
	if len(links) > 0 {
		items := make([]any, 0, len(links))
		for _, l := range links {
			items = append(items, map[string]any{"url": l.URL, "label": l.Label})
		}
		fields["links"] = items
	}
	return Compute(fields, spansText(body))
}

// Document hashes the document metadata and the ordered entry fingerprints.
func Document(meta map[string]any, entryFingerprints []string) (string, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	return Compute(meta, strings.Join(entryFingerprints, "\n"))
}

// spansText encodes spans with their formatting so a style change alters the hash.
func spansText(spans []entry.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Style.String())
		if s.URL != "" {
			b.WriteString("<" + s.URL + ">")
		}
		b.WriteByte('|')
		b.WriteString(s.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func withoutFingerprint(fields map[string]any) map[string]any {
	if _, ok := fields[mdfp.FingerprintField]; !ok {
		return fields
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != mdfp.FingerprintField {
			out[k] = v
		}
	}
	return out
}
