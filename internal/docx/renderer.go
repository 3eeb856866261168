package docx

import (
	"bytes"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// MaxHeadingLevel is the deepest heading style Word provides.
const MaxHeadingLevel = 9

// ErrDocumentTooLarge is wrapped by a RenderError when the package exceeds Options.MaxBytes.
var ErrDocumentTooLarge = errors.New("document exceeds maximum size")

// RenderError reports a failure while producing one part of the package.
type RenderError struct {
	Part string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Part, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ErrorCategory classifies the error for the CLI and HTTP adapters.
func (e *RenderError) ErrorCategory() derrors.ErrorCategory {
	return derrors.CategoryRender
}

// Options configures a Renderer.
type Options struct {
	// MaxHeadingDepth caps heading levels; deeper sections reuse the last level.
	// Values outside 1..9 are clamped, zero means 9.
	MaxHeadingDepth int
	// MaxBytes bounds the size of the package. Zero disables the limit.
	MaxBytes int64
	// StylesXML replaces the built-in word/styles.xml when non-empty. It must
	// define the paragraph and character styles the renderer references.
	StylesXML []byte
}

// Metadata describes the document front matter.
type Metadata struct {
	Title         string
	Authors       []string
	Date          string
	Abstract      string
	AbstractTitle string
	TOC           bool
	TOCTitle      string
	TOCDepth      int
	Revision      string
	// Fingerprint identifies the content; it seeds dc:identifier.
	Fingerprint string
}

// Renderer turns trees into .docx bytes. It holds only configuration and is
// safe for concurrent use.
type Renderer struct {
	opts Options
}

// NewRenderer creates a Renderer with normalised options.
func NewRenderer(opts Options) *Renderer {
	opts.MaxHeadingDepth = clamp(opts.MaxHeadingDepth, MaxHeadingLevel)
	return &Renderer{opts: opts}
}

// Render produces the complete package. On error no bytes are returned and
// the error is a *RenderError.
func (r *Renderer) Render(tree *doctree.Tree, meta Metadata) ([]byte, error) {
	if tree == nil {
		tree = &doctree.Tree{}
	}

	b := newBodyBuilder(r.opts.MaxHeadingDepth)
	b.frontMatter(meta)
	for _, s := range tree.Sections {
		b.section(s)
	}

	parts := []struct {
		name  string
		build func() ([]byte, error)
	}{
		{partContentTypes, func() ([]byte, error) { return marshalPart(newContentTypes()) }},
		{partRootRels, func() ([]byte, error) { return marshalPart(rootRelationships()) }},
		{partCore, func() ([]byte, error) { return marshalPart(newCoreProperties(meta)) }},
		{partApp, func() ([]byte, error) { return marshalPart(newAppProperties()) }},
		{partDocument, func() ([]byte, error) { return marshalPart(b.document()) }},
		{partStyles, func() ([]byte, error) {
			if len(r.opts.StylesXML) > 0 {
				return r.opts.StylesXML, nil
			}
			return []byte(stylesXML()), nil
		}},
		{partNumbering, func() ([]byte, error) { return marshalPart(b.numbering.xml()) }},
		{partSettings, func() ([]byte, error) { return []byte(settingsXML(meta.TOC)), nil }},
		{partDocumentRels, func() ([]byte, error) { return marshalPart(b.rels.xml()) }},
	}

	var buf bytes.Buffer
	pkg := newPackageWriter(&buf, r.opts.MaxBytes)
	for _, p := range parts {
		data, err := p.build()
		if err != nil {
			return nil, &RenderError{Part: p.name, Err: err}
		}
		if err := pkg.add(p.name, data); err != nil {
			return nil, &RenderError{Part: p.name, Err: err}
		}
	}
	if err := pkg.close(); err != nil {
		return nil, &RenderError{Part: "package", Err: err}
	}
	return buf.Bytes(), nil
}

func clamp(v, limit int) int {
	switch {
	case v <= 0 || v > limit:
		return limit
	default:
		return v
	}
}
