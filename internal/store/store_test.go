package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/vecgfx/internal/db"
	"github.com/inamate/vecgfx/internal/typeid"
)

func newDrawing(owner, name string) *Drawing {
	return &Drawing{
		ID:       typeid.NewDrawingID(),
		OwnerID:  owner,
		Name:     name,
		Version:  1,
		Document: json.RawMessage(`{"items":[]}`),
	}
}

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	owner := typeid.NewUserID()

	t.Run("create and get", func(t *testing.T) {
		d := newDrawing(owner, "first")
		require.NoError(t, s.Create(ctx, d))
		assert.False(t, d.CreatedAt.IsZero())

		got, err := s.Get(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Name)
		assert.Equal(t, owner, got.OwnerID)
		assert.JSONEq(t, `{"items":[]}`, string(got.Document))

		assert.ErrorIs(t, s.Create(ctx, d), ErrExists)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, typeid.NewDrawingID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update checks version", func(t *testing.T) {
		d := newDrawing(owner, "versioned")
		require.NoError(t, s.Create(ctx, d))

		d.Version = 2
		d.Name = "renamed"
		require.NoError(t, s.Update(ctx, d, 1))

		stale := *d
		stale.Version = 3
		assert.ErrorIs(t, s.Update(ctx, &stale, 1), ErrConflict)

		got, err := s.Get(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, "renamed", got.Name)

		missing := newDrawing(owner, "ghost")
		assert.ErrorIs(t, s.Update(ctx, missing, 1), ErrNotFound)
	})

	t.Run("list is per owner", func(t *testing.T) {
		other := typeid.NewUserID()
		require.NoError(t, s.Create(ctx, newDrawing(other, "a")))
		require.NoError(t, s.Create(ctx, newDrawing(other, "b")))

		list, err := s.List(ctx, other)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = s.List(ctx, typeid.NewUserID())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("delete", func(t *testing.T) {
		d := newDrawing(owner, "doomed")
		require.NoError(t, s.Create(ctx, d))
		require.NoError(t, s.Delete(ctx, d.ID))

		_, err := s.Get(ctx, d.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, d.ID), ErrNotFound)
	})
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemoryListOrder(t *testing.T) {
	m := NewMemory()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	ctx := context.Background()
	older, newer := newDrawing("u", "older"), newDrawing("u", "newer")
	require.NoError(t, m.Create(ctx, older))
	require.NoError(t, m.Create(ctx, newer))

	list, err := m.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Name)

	older.Version = 2
	require.NoError(t, m.Update(ctx, older, 1))
	list, err = m.List(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "older", list[0].Name)
}

func TestMemoryIsolatesCallers(t *testing.T) {
	m := NewMemory()
	d := newDrawing("u", "x")
	require.NoError(t, m.Create(context.Background(), d))

	d.Document[0] = '['
	got, err := m.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), got.Document[0])
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicateKeyError(errors.New("boom")))
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("VECGFX_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("VECGFX_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	p := NewPostgres(pool)
	require.NoError(t, p.Migrate(ctx))
	testStore(t, p)
}
