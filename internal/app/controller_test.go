package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store/sqlite"
)

func newTestController(t *testing.T, seed bool) *Controller {
	t.Helper()

	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return NewController(s, Options{Seed: seed})
}

func titles(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestStart_SeedsEmptyTable(t *testing.T) {
	c := newTestController(t, true)
	require.NoError(t, c.Start(context.Background()))

	items := c.Items()
	want := []string{"get ice cream", "call mom", "buy plane tickets", "reserve hotel"}
	if diff := cmp.Diff(want, titles(items)); diff != "" {
		t.Fatalf("seeded titles mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, items[0].Finished)
	for _, it := range items[1:] {
		assert.False(t, it.Finished, it.Title)
	}

	done, pending := c.Stats()
	assert.Equal(t, 1, done)
	assert.Equal(t, 3, pending)
}

func TestStart_DoesNotSeedTwice(t *testing.T) {
	c := newTestController(t, true)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Start(ctx))
	assert.Len(t, c.Items(), len(SeedItems))
}

func TestStart_SkipsSeedWhenNotEmpty(t *testing.T) {
	c := newTestController(t, true)
	ctx := context.Background()

	_, err := c.Create(ctx, "only me")
	require.NoError(t, err)
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []string{"only me"}, titles(c.Items()))
}

func TestStart_SeedDisabled(t *testing.T) {
	c := newTestController(t, false)
	require.NoError(t, c.Start(context.Background()))
	assert.Empty(t, c.Items())
}

func TestCreate(t *testing.T) {
	c := newTestController(t, false)
	ctx := context.Background()

	id, err := c.Create(ctx, "  buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, []model.Item{{ID: id, Title: "buy milk"}}, c.Items())

	_, err = c.Create(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Len(t, c.Items(), 1)
}

func TestDispatch(t *testing.T) {
	c := newTestController(t, true)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	items := c.Items()
	callMom := items[1]
	callMom.Finished = true

	require.NoError(t, c.Dispatch(ctx, EventUpdate, callMom))
	after := c.Items()
	assert.True(t, after[1].Finished)
	assert.Equal(t, items[0], after[0])
	assert.Equal(t, items[2:], after[2:])

	require.NoError(t, c.Dispatch(ctx, EventDelete, items[0]))
	assert.Equal(t, []string{"call mom", "buy plane tickets", "reserve hotel"}, titles(c.Items()))

	err := c.Dispatch(ctx, Event("rename"), items[2])
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.Len(t, c.Items(), 3)
}

func TestToggleAndRestore(t *testing.T) {
	c := newTestController(t, false)
	ctx := context.Background()

	id, err := c.Create(ctx, "reserve hotel")
	require.NoError(t, err)
	item := c.Items()[0]

	require.NoError(t, c.Toggle(ctx, item))
	assert.True(t, c.Items()[0].Finished)

	deleted := c.Items()[0]
	require.NoError(t, c.Delete(ctx, deleted))
	assert.Empty(t, c.Items())

	require.NoError(t, c.Restore(ctx, deleted))
	assert.Equal(t, []model.Item{{ID: id, Title: "reserve hotel", Finished: true}}, c.Items())
}

func TestItemsReturnsCopy(t *testing.T) {
	c := newTestController(t, true)
	require.NoError(t, c.Start(context.Background()))

	items := c.Items()
	items[0].Title = "mutated"
	assert.Equal(t, "get ice cream", c.Items()[0].Title)
}

type failingStore struct{ err error }

func (f failingStore) Add(context.Context, string, bool) (int64, error) { return 0, f.err }
func (f failingStore) Put(context.Context, model.Item) (int64, error) { return 0, f.err }
func (f failingStore) All(context.Context) ([]model.Item, error) { return nil, f.err }
func (f failingStore) Get(context.Context, int64) (model.Item, error) { return model.Item{}, f.err }
func (f failingStore) Count(context.Context) (int, error) { return 0, f.err }
func (f failingStore) Update(context.Context, model.Item) error { return f.err }
func (f failingStore) Delete(context.Context, int64) error { return f.err }

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	c := NewController(failingStore{err: boom}, Options{Seed: true})
	ctx := context.Background()

	assert.ErrorIs(t, c.Start(ctx), boom)
	_, err := c.Create(ctx, "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.Dispatch(ctx, EventUpdate, model.Item{ID: 1}), boom)
	assert.ErrorIs(t, c.Dispatch(ctx, EventDelete, model.Item{ID: 1}), boom)
	assert.ErrorIs(t, c.Restore(ctx, model.Item{ID: 1}), boom)
	assert.ErrorIs(t, c.Import(ctx, []model.Item{{ID: 1, Title: "x"}}), boom)
	_, err = c.Get(ctx, 1)
	assert.ErrorIs(t, err, boom)
	_, err = c.Count(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestGetAndCount(t *testing.T) {
	c := newTestController(t, true)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	it, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "call mom", it.Title)

	_, err = c.Get(ctx, 99)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestImport(t *testing.T) {
	c := newTestController(t, false)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	require.NoError(t, c.Import(ctx, []model.Item{
		{ID: 3, Title: "  reserve hotel ", Finished: true},
		{Title: "call mom"},
	}))
	want := []model.Item{
		{ID: 3, Title: "reserve hotel", Finished: true},
		{ID: 4, Title: "call mom"},
	}
	if diff := cmp.Diff(want, c.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestImportRejectsBadRowsBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		items   []model.Item
		wantErr error
	}{
		{"blank title", []model.Item{{ID: 1, Title: "ok"}, {ID: 2, Title: "   "}}, ErrEmptyTitle},
		{"negative id", []model.Item{{ID: 1, Title: "ok"}, {ID: -7, Title: "call mom"}}, ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, false)
			ctx := context.Background()
			require.NoError(t, c.Start(ctx))

			assert.ErrorIs(t, c.Import(ctx, tt.items), tt.wantErr)
			n, err := c.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}
