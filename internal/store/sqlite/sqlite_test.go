package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo/internal/model"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})
	return s
}

func TestStore_AddDefaultsToUnfinished(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	id, err := s.Add(ctx, "call mom", false)
	require.NoError(t, err)
	assert.NotZero(t, id)

	items, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.Item{ID: id, Title: "call mom", Finished: false}, items[0])
}

func TestStore_UpdateTogglesOnlyTarget(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a, err := s.Add(ctx, "a", false)
	require.NoError(t, err)
	b, err := s.Add(ctx, "b", false)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, model.Item{ID: b, Title: "ignored", Finished: true}))

	got, err := s.All(ctx)
	require.NoError(t, err)
	want := []model.Item{
		{ID: a, Title: "a"},
		{ID: b, Title: "b", Finished: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_DeleteRemovesOnlyTarget(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a, err := s.Add(ctx, "a", true)
	require.NoError(t, err)
	b, err := s.Add(ctx, "b", false)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a))

	got, err := s.All(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]model.Item{{ID: b, Title: "b"}}, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Get(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutReplacesExistingID(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	id, err := s.Add(ctx, "reserve hotel", false)
	require.NoError(t, err)

	_, err = s.Put(ctx, model.Item{ID: id, Title: "reserve hotel (2 nights)", Finished: true})
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Item{ID: id, Title: "reserve hotel (2 nights)", Finished: true}, got)
}

func TestStore_PutWithoutIDAdds(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	id, err := s.Put(ctx, model.Item{Title: "fresh"})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestStore_MissingRows(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"update", func() error { return s.Update(ctx, model.Item{ID: 42, Finished: true}) }},
		{"delete", func() error { return s.Delete(ctx, 42) }},
		{"get", func() error { _, err := s.Get(ctx, 42); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), ErrNotFound)
		})
	}
}

func TestStore_ReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "todo.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.Add(ctx, "get ice cream", true)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	items, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Finished)
	assert.Equal(t, path, s.Path())
}

func TestOpen_OtherSchemaVersionIsNotImplemented(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todo.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 2")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(ctx, path)
	require.ErrorIs(t, err, ErrUpgradeNotImplemented)
}

func TestStore_RejectsInvalidFinished(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.db.Exec("INSERT INTO todo (title, finished) VALUES ('bad', 2)")
	assert.Error(t, err)
}

func TestStore_CloseTwice(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
