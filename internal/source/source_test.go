package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecodeYAML_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ids     []any
	}{
		{"list", "- id: a\n- id: b\n", []any{"a", "b"}},
		{"entries mapping", "entries:\n  - id: a\n  - id: b\n", []any{"a", "b"}},
		{"single mapping", "id: a\ntitle: T\n", []any{"a"}},
		{"multi document", "id: a\n---\n- id: b\n- id: c\n---\nentries:\n  - id: d\n", []any{"a", "b", "c", "d"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := Decode("notes.yaml", []byte(tt.content), Options{})
			require.NoError(t, err)
			var ids []any
			for _, f := range fields {
				ids = append(ids, f["id"])
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestDecodeYAML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"scalar item", "- id: a\n- nope\n", "item 1"},
		{"scalar document", "just text\n", "entry is not a mapping"},
		{"entries with siblings", "entries: []\ntitle: x\n", "only top-level key"},
		{"syntax", "- id: [a\n", "document 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("notes.yaml", []byte(tt.content), Options{})
			require.Error(t, err)
			assert.True(t, derrors.HasCategory(err, derrors.CategorySource))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeTOML(t *testing.T) {
	content := `[[entries]]
id = "a"
title = "Support TLS 1.3"
category = "feature"

[[entries]]
id = "b"
title = "Fix panic"
category = "bugfix"
links = [{ url = "https://github.com/pingcap/tidb/issues/1", label = "#1" }]
`
	fields, err := Decode("notes.toml", []byte(content), Options{})
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "Support TLS 1.3", fields[0]["title"])
	links, ok := fields[1]["links"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"url": "https://github.com/pingcap/tidb/issues/1", "label": "#1"}, links[0])
}

func TestDecodeMarkdown(t *testing.T) {
	content := "---\nid: a\ntitle: Add resource groups\ncategory: feature\n---\n\n" +
		"Resource groups limit **RU** usage.\n\n---\nsummary: internal\n---\nSee docs.\n"

	fields, err := Decode("a.md", []byte(content), Options{StripFrontMatter: true})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "a", fields[0]["id"])
	assert.Equal(t, "Resource groups limit **RU** usage.\n\nSee docs.", fields[0]["body"])

	fields, err = Decode("a.md", []byte(content), Options{})
	require.NoError(t, err)
	assert.Contains(t, fields[0]["body"], "summary: internal")
}

func TestDecodeMarkdown_ExplicitBodyWins(t *testing.T) {
	content := "---\nid: a\nbody: from front matter\n---\nignored text\n"
	fields, err := Decode("a.markdown", []byte(content), Options{})
	require.NoError(t, err)
	assert.Equal(t, "from front matter", fields[0]["body"])
}

func TestDecodeMarkdown_NoBody(t *testing.T) {
	fields, err := Decode("a.md", []byte("---\nid: a\n---\n\n"), Options{})
	require.NoError(t, err)
	_, ok := fields[0]["body"]
	assert.False(t, ok)
}

func TestDecodeMarkdown_Errors(t *testing.T) {
	_, err := Decode("a.md", []byte("no front matter\n"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFrontMatter)

	_, err = Decode("a.md", []byte("---\nid: a\n"), Options{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategorySource))
}

func TestDecode_UnsupportedExtension(t *testing.T) {
	_, err := Decode("notes.json", []byte("{}"), Options{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategorySource))
}

func TestLoad_NumbersRecordsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "a.yaml", "- id: a1\n- id: a2\n")
	b := write(t, dir, "b.toml", "[[entries]]\nid = \"b1\"\n")

	records, err := Load([]string{a, b}, Options{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 0, records[0].Index)
	assert.Equal(t, a+"#1", records[0].Source)
	assert.Equal(t, 1, records[1].Index)
	assert.Equal(t, a+"#2", records[1].Source)
	assert.Equal(t, 2, records[2].Index)
	assert.Equal(t, b+"#1", records[2].Source)
	assert.Equal(t, "b1", records[2].Fields["id"])
}

func TestExpand_Directory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.yaml", "")
	write(t, dir, "a/z.md", "")
	write(t, dir, "notes.txt", "")
	write(t, dir, ".hidden/x.yaml", "")
	write(t, dir, ".draft.yaml", "")

	files, err := Expand([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a", "z.md"), filepath.Join(dir, "b.yaml")}, files)
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load([]string{filepath.Join(t.TempDir(), "absent.yaml")}, Options{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategorySource))
}
