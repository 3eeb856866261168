package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnum string

const (
	testEnumAlpha testEnum = "alpha"
	testEnumBeta  testEnum = "beta"
)

func TestNormalizer_Basic(t *testing.T) {
	n := NewNormalizer(map[string]testEnum{
		"alpha": testEnumAlpha,
		"a":     testEnumAlpha,
		"beta":  testEnumBeta,
	}, testEnumAlpha)

	tests := []struct {
		name     string
		input    string
		expected testEnum
	}{
		{"exact match", "alpha", testEnumAlpha},
		{"case insensitive", "BETA", testEnumBeta},
		{"with spaces", "  beta  ", testEnumBeta},
		{"alias", "A", testEnumAlpha},
		{"invalid input falls back", "gamma", testEnumAlpha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_Lookup(t *testing.T) {
	n := NewNormalizer(map[string]testEnum{"beta": testEnumBeta}, testEnumAlpha)

	v, ok := n.Lookup(" Beta")
	require.True(t, ok)
	assert.Equal(t, testEnumBeta, v)

	_, ok = n.Lookup("alpha")
	assert.False(t, ok)
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := NewNormalizer(map[string]testEnum{"beta": testEnumBeta, "alpha": testEnumAlpha}, testEnumAlpha)

	_, err := n.NormalizeWithError("delta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[alpha beta]")
	assert.Equal(t, []string{"alpha", "beta"}, n.ValidKeys())
}
