package pipeline

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	"git.home.luguber.info/inful/notebinder/internal/docx"
	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
	"git.home.luguber.info/inful/notebinder/internal/metrics"
	"git.home.luguber.info/inful/notebinder/internal/repository"
	"git.home.luguber.info/inful/notebinder/internal/schema"
)

type heading struct {
	title string
	items []string
}

// outline extracts headings and the titles of top-level list items below them.
func outline(t *testing.T, doc []byte) []heading {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)

	var documentXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			documentXML, err = io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
		}
	}
	require.NotNil(t, documentXML)

	type para struct{ style, level, text string }
	var paras []para
	dec := xml.NewDecoder(bytes.NewReader(documentXML))
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				paras = append(paras, para{})
			case "pStyle":
				paras[len(paras)-1].style = el.Attr[0].Value
			case "ilvl":
				paras[len(paras)-1].level = el.Attr[0].Value
			case "t":
				inText = true
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				paras[len(paras)-1].text += string(el)
			}
		}
	}

	var out []heading
	for _, p := range paras {
		switch {
		case strings.HasPrefix(p.style, "Heading"):
			out = append(out, heading{title: p.text})
		case p.level == "0":
			require.NotEmpty(t, out, "list item before first heading")
			out[len(out)-1].items = append(out[len(out)-1].items, p.text)
		}
	}
	return out
}

func rec(i int, fields map[string]any) entry.Record {
	return entry.Record{Index: i, Source: "test", Fields: fields}
}

func note(id, title, category string) map[string]any {
	return map[string]any{"id": id, "title": title, "category": category}
}

func featureBugfixLayout() doctree.Layout {
	return doctree.Layout{
		Sections: []doctree.SectionSpec{
			{ID: "feature", Title: "New Features"},
			{ID: "bugfix", Title: "Bug Fixes"},
		},
		Categories: map[entry.Category]string{
			entry.CategoryFeature: "feature",
			entry.CategoryBugfix:  "bugfix",
		},
	}
}

func newOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	o, err := New(opts)
	require.NoError(t, err)
	return o
}

func TestRun_FeatureBugfixFeature(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: featureBugfixLayout()})

	res, err := o.Run([]entry.Record{
		rec(0, note("f1", "Feature one", "feature")),
		rec(1, note("b1", "Fix one", "bugfix")),
		rec(2, note("f2", "Feature two", "feature")),
	})
	require.NoError(t, err)

	assert.Equal(t, []heading{
		{title: "New Features", items: []string{"Feature one", "Feature two"}},
		{title: "Bug Fixes", items: []string{"Fix one"}},
	}, outline(t, res.Document))
	assert.Equal(t, 3, res.Entries)
	assert.NotEmpty(t, res.Fingerprint)
	for _, s := range Stages() {
		assert.Contains(t, res.StageDurations, s)
	}
}

func TestRun_DuplicateIdentifierA(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: featureBugfixLayout()})
	a1 := note("A", "Fix X", "bugfix")
	a1["body"] = []any{"first"}
	a2 := note("A", "Fix Y", "feature")
	a2["body"] = []any{"second"}

	for _, records := range [][]entry.Record{
		{rec(0, a1), rec(1, a2)},
		{rec(0, a2), rec(1, a1)},
	} {
		res, err := o.Run(records)
		require.Error(t, err)
		assert.Nil(t, res)

		var perr *PipelineError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, StageCollect, perr.Stage)

		var dup *repository.DuplicateIdentifierError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "A", dup.ID)
		assert.Equal(t, derrors.CategoryConflict, derrors.CategoryOf(err))
	}
}

func TestRun_ReportsEveryInvalidRecord(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout()})

	records := []entry.Record{
		rec(0, note("ok-1", "Fine", "feature")),
		rec(1, map[string]any{"title": "No id", "category": "feature"}),
		rec(2, note("ok-2", "Fine", "bugfix")),
		rec(3, note("bad-cat", "Wrong", "misc")),
		rec(4, map[string]any{"id": 7, "title": "Numeric id", "category": "bugfix"}),
		// a duplicate among valid records must not mask validation failures
		rec(5, note("ok-1", "Dup", "feature")),
	}

	_, err := o.Run(records)
	require.Error(t, err)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageValidate, perr.Stage)
	require.Len(t, perr.Violations, 3)
	assert.Len(t, perr.Problems(), 3)

	var refs []int
	for _, v := range perr.Violations {
		var ve *schema.ValidationError
		require.True(t, errors.As(v, &ve))
		refs = append(refs, ve.Ref.Index)
	}
	assert.Equal(t, []int{1, 3, 4}, refs)
	assert.Equal(t, derrors.CategoryValidation, derrors.CategoryOf(err))
	assert.Contains(t, perr.Summary(), "validate stage failed (3 problem(s))")
}

func TestRun_DeterministicOutput(t *testing.T) {
	records := []entry.Record{
		rec(0, map[string]any{
			"id": "x", "title": "X", "category": "feature",
			"body":  "Use `SET` with *care*, see <https://example.com>",
			"links": []any{map[string]any{"url": "https://github.com/o/r/pull/1", "label": "#1"}},
		}),
		rec(1, note("y", "Y", "bugfix")),
	}
	opts := Options{Layout: doctree.DefaultLayout(), Metadata: docx.Metadata{Title: "Notes", TOC: true}}

	first, err := newOrchestrator(t, opts).Run(records)
	require.NoError(t, err)
	second, err := newOrchestrator(t, opts).Run(records)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first.Document, second.Document))
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestRun_OneParagraphGroupPerEntryInOrder(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout()})

	var records []entry.Record
	var want []string
	for i, id := range []string{"c", "a", "d", "b"} {
		fields := note(id, "Entry "+id, "security")
		fields["body"] = "Body of " + id
		records = append(records, rec(i, fields))
		want = append(want, "Entry "+id)
	}

	res, err := o.Run(records)
	require.NoError(t, err)
	assert.Equal(t, []heading{{title: "Security", items: want}}, outline(t, res.Document))
}

func TestRun_EmptySectionsNeverRendered(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout()})

	res, err := o.Run([]entry.Record{rec(0, note("d", "Doc fix", "documentation"))})
	require.NoError(t, err)

	got := outline(t, res.Document)
	require.Len(t, got, 1)
	assert.Equal(t, "Documentation", got[0].title)
}

func TestRun_EmptyInputYieldsValidDocument(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout()})

	res, err := o.Run(nil)
	require.NoError(t, err)
	assert.Empty(t, outline(t, res.Document))
	assert.Zero(t, res.Entries)
}

func TestRun_UnmappedCategory(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: featureBugfixLayout()})

	_, err := o.Run([]entry.Record{rec(0, note("s", "Sec", "security"))})
	require.Error(t, err)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageStructure, perr.Stage)
	var unmapped *doctree.UnmappedCategoryError
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, entry.CategorySecurity, unmapped.Category)
}

func TestRun_RenderFailure(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout(), Render: docx.Options{MaxBytes: 256}})

	res, err := o.Run([]entry.Record{rec(0, note("a", "A", "feature"))})
	require.Error(t, err)
	assert.Nil(t, res)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageRender, perr.Stage)
	assert.ErrorIs(t, err, docx.ErrDocumentTooLarge)
	assert.Equal(t, derrors.CategoryRender, derrors.CategoryOf(err))
}

func TestCheck_SkipsRendering(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout(), Render: docx.Options{MaxBytes: 1}})

	res, err := o.Check([]entry.Record{rec(0, note("a", "A", "feature"))})
	require.NoError(t, err)
	assert.Nil(t, res.Document)
	assert.Equal(t, 1, res.Tree.ItemCount())
	assert.NotContains(t, res.StageDurations, StageRender)
}

func TestNew_RejectsInvalidLayout(t *testing.T) {
	_, err := New(Options{Layout: doctree.Layout{
		Categories: map[entry.Category]string{entry.CategoryFeature: "nowhere"},
	}})
	require.Error(t, err)
	assert.Equal(t, derrors.CategoryConfig, derrors.CategoryOf(err))
}

func TestRun_ConcurrentRunsAreIsolated(t *testing.T) {
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout()})
	records := []entry.Record{
		rec(0, note("a", "A", "feature")),
		rec(1, note("b", "B", "bugfix")),
	}
	want, err := o.Run(records)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := o.Run(records)
			errs[i] = err
			if err == nil {
				results[i] = res.Document
			}
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.True(t, bytes.Equal(want.Document, results[i]))
	}
}

type countingRecorder struct {
	mu         sync.Mutex
	outcomes   map[metrics.OutcomeLabel]int
	results    map[string]metrics.ResultLabel
	violations int
	bytes      int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: map[metrics.OutcomeLabel]int{}, results: map[string]metrics.ResultLabel{}}
}

func (c *countingRecorder) ObserveStageDuration(string, time.Duration) {}
func (c *countingRecorder) ObserveRunDuration(time.Duration)           {}
func (c *countingRecorder) IncStageResult(stage string, r metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[stage] = r
}
func (c *countingRecorder) IncRunOutcome(o metrics.OutcomeLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[o]++
}
func (c *countingRecorder) ObserveDocumentBytes(n int) { c.bytes = n }
func (c *countingRecorder) AddViolations(n int)        { c.violations += n }
func (c *countingRecorder) IncRebuild(string)          {}

func TestRun_RecordsMetrics(t *testing.T) {
	recorder := newCountingRecorder()
	o := newOrchestrator(t, Options{Layout: doctree.DefaultLayout(), Recorder: recorder})

	res, err := o.Run([]entry.Record{rec(0, note("a", "A", "feature"))})
	require.NoError(t, err)
	_, err = o.Run([]entry.Record{rec(0, note("", "A", "feature")), rec(1, note("b", "", "feature"))})
	require.Error(t, err)

	assert.Equal(t, 1, recorder.outcomes[metrics.OutcomeSuccess])
	assert.Equal(t, 1, recorder.outcomes[metrics.OutcomeInvalid])
	assert.Equal(t, 2, recorder.violations)
	assert.Equal(t, len(res.Document), recorder.bytes)
	assert.Equal(t, metrics.ResultFailed, recorder.results[string(StageValidate)])
	assert.Equal(t, metrics.ResultSuccess, recorder.results[string(StageRender)])
}
