package runlog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notebinder/internal/metrics"
	"git.home.luguber.info/inful/notebinder/internal/pipeline"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndRecent(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, trigger := range []string{"startup", "watch", "api"} {
		run := Run{
			ID:          uuid.New(),
			Trigger:     trigger,
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			Duration:    1500 * time.Microsecond,
			Outcome:     metrics.OutcomeSuccess,
			Entries:     i + 1,
			Bytes:       4096,
			Fingerprint: "abc",
		}
		require.NoError(t, store.Append(ctx, run))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "api", runs[0].Trigger)
	assert.Equal(t, "watch", runs[1].Trigger)
	assert.Equal(t, base.Add(2*time.Minute), runs[0].StartedAt)
	assert.Equal(t, 1500*time.Microsecond, runs[0].Duration)
	assert.Equal(t, 3, runs[0].Entries)
	assert.Equal(t, metrics.OutcomeSuccess, runs[0].Outcome)

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_RoundTripsFailure(t *testing.T) {
	store := newStore(t)
	want := Run{
		ID:         uuid.New(),
		Trigger:    "watch",
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Outcome:    metrics.OutcomeInvalid,
		Stage:      "validate",
		Violations: 3,
	}
	require.NoError(t, store.Append(t.Context(), want))

	runs, err := store.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, want, runs[0])
}

func TestSQLiteStore_DuplicateID(t *testing.T) {
	store := newStore(t)
	run := Run{ID: uuid.New(), Trigger: "api", StartedAt: time.Now(), Outcome: metrics.OutcomeSuccess}
	require.NoError(t, store.Append(t.Context(), run))
	require.Error(t, store.Append(t.Context(), run))
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	run := Run{ID: uuid.New(), Trigger: "startup", StartedAt: time.Now(), Outcome: metrics.OutcomeSuccess}
	require.NoError(t, store.Append(t.Context(), run))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	runs, err := reopened.Recent(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestNewRun(t *testing.T) {
	started := time.Now().Add(-time.Second)

	ok := NewRun("api", started, &pipeline.Result{Document: make([]byte, 10), Entries: 4, Fingerprint: "fp"}, nil)
	assert.Equal(t, metrics.OutcomeSuccess, ok.Outcome)
	assert.Equal(t, 10, ok.Bytes)
	assert.Equal(t, 4, ok.Entries)
	assert.Equal(t, "fp", ok.Fingerprint)
	assert.Empty(t, ok.Stage)
	assert.GreaterOrEqual(t, ok.Duration, time.Second)
	assert.NotEqual(t, uuid.Nil, ok.ID)

	invalid := NewRun("watch", started, nil, &pipeline.PipelineError{
		Stage:      pipeline.StageValidate,
		Violations: []error{errors.New("a"), errors.New("b")},
	})
	assert.Equal(t, metrics.OutcomeInvalid, invalid.Outcome)
	assert.Equal(t, "validate", invalid.Stage)
	assert.Equal(t, 2, invalid.Violations)

	conflict := NewRun("watch", started, nil, &pipeline.PipelineError{
		Stage:      pipeline.StageCollect,
		Violations: []error{errors.New("dup")},
	})
	assert.Equal(t, metrics.OutcomeConflict, conflict.Outcome)

	other := NewRun("watch", started, nil, errors.New("boom"))
	assert.Equal(t, metrics.OutcomeFailed, other.Outcome)
	assert.Empty(t, other.Stage)
}
