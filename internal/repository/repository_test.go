package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notebinder/internal/entry"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

func mk(id string, index int) entry.Entry {
	return entry.New(entry.Fields{
		ID:       id,
		Title:    "Entry " + id,
		Category: entry.CategoryFeature,
		Origin:   entry.Ref{Index: index, Source: "notes.yaml"},
	})
}

func TestRepository_PreservesInsertionOrder(t *testing.T) {
	r := New()
	for i, id := range []string{"c", "a", "b"} {
		require.NoError(t, r.Add(mk(id, i)))
	}

	ids := make([]string, 0, r.Len())
	for _, e := range r.All() {
		ids = append(ids, e.ID())
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, 3, r.Len())
}

func TestRepository_RejectsDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(mk("A", 0)))
	require.NoError(t, r.Add(mk("B", 1)))

	err := r.Add(mk("A", 2))
	require.Error(t, err)

	var dup *DuplicateIdentifierError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "A", dup.ID)
	assert.Equal(t, 0, dup.Existing.Index)
	assert.Equal(t, 2, dup.Duplicate.Index)
	assert.Equal(t, derrors.CategoryConflict, derrors.CategoryOf(err))
	assert.Equal(t, 2, r.Len(), "rejected entry must not be stored")
}

func TestRepository_AllReturnsCopy(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(mk("a", 0)))

	all := r.All()
	all[0] = mk("mutated", 9)

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID())
	assert.Equal(t, "a", r.All()[0].ID())
}

func TestRepository_Get(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(mk("a", 0)))

	_, ok := r.Get("missing")
	assert.False(t, ok)
}
