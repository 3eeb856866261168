package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nid: a\n---\nBody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "id: a\n", string(fm))
	require.Equal(t, "Body\n", string(body))
}

func TestSplit_CRLF_IsNormalised(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nid: a\r\n---\r\nBody\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "id: a\n", string(fm))
	require.Equal(t, "Body\n", string(body))
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\nBody"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, "Body", string(body))
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nid: a\nBody\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestStripAll(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Test\n-\ntitle\nTest", "Test\n-\ntitle\nTest"},
		{"---\ntitle:Test\nsummary:Test\n---\nLine", "Line"},
		{"Test\n---\ntitle:Test\nsummary:Test\n---\nLine", "Test\nLine"},
		{"Test\n---\ntitle:Test\nsummary:Test\n---\nLine\n---\ntitle:Test\nsummary:Test\n---\nLine", "Test\nLine\nLine"},
		{"Line\n---\nunterminated", "Line\n---\nunterminated"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, string(StripAll([]byte(tc.in))), tc.in)
	}
}

func TestStripAll_DoesNotModifyInput(t *testing.T) {
	input := []byte("A\n---\nx\n---\nB")
	_ = StripAll(input)
	require.Equal(t, "A\n---\nx\n---\nB", string(input))
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("id: abc\nlinks:\n  - url: https://x.io\n"))
	require.NoError(t, err)
	require.Equal(t, "abc", fields["id"])
	require.Len(t, fields["links"], 1)

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = ParseYAML([]byte(": not yaml"))
	require.Error(t, err)
}

func TestCanonical_SortsKeysRecursively(t *testing.T) {
	out, err := Canonical(map[string]any{
		"b":     "two",
		"a":     1,
		"outer": map[string]any{"z": true, "y": "q"},
	})
	require.NoError(t, err)
	require.Equal(t, "a: 1\nb: two\nouter:\n  y: q\n  z: true\n", string(out))

	again, err := Canonical(map[string]any{
		"outer": map[string]any{"y": "q", "z": true},
		"a":     1,
		"b":     "two",
	})
	require.NoError(t, err)
	require.Equal(t, string(out), string(again))
}

func TestCanonical_Empty(t *testing.T) {
	out, err := Canonical(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
