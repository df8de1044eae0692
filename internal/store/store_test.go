package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/oniria/internal/domain"
)

func sampleEntry(id string, created time.Time) domain.Entry {
	return domain.Entry{
		ID:          id,
		Title:       "dream " + id,
		Description: "a long corridor",
		Date:        domain.DateOf(created),
		Emotion:     domain.Medo,
		Symbol:      "🚪",
		Tags:        domain.Tags{"casa", "porta"},
		CreatedAt:   created.UTC(),
	}
}

func eachBackend(t *testing.T, fn func(t *testing.T, open func() Backend)) {
	t.Helper()
	for _, kind := range []Kind{KindSQLite, KindBlob} {
		t.Run(string(kind), func(t *testing.T) {
			dir := t.TempDir()
			open := func() Backend {
				b, err := Open(kind, dir)
				require.NoError(t, err)
				t.Cleanup(func() { b.Close() })
				return b
			}
			fn(t, open)
		})
	}
}

func TestBackendContract(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Backend) {
		ctx := context.Background()
		b := open()

		all, err := b.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		base := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
		first := sampleEntry("a", base)
		second := sampleEntry("b", base.Add(time.Minute))
		require.NoError(t, b.Put(ctx, first))
		require.NoError(t, b.Put(ctx, second))

		got, err := b.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, first, got)

		_, err = b.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		first.Title = "renamed"
		first.Tags = nil
		require.NoError(t, b.Put(ctx, first))

		all, err = b.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []string{"b", "a"}, []string{all[0].ID, all[1].ID})
		assert.Equal(t, "renamed", all[1].Title)
		assert.Nil(t, all[1].Tags)

		require.NoError(t, b.Delete(ctx, "missing"))
		require.NoError(t, b.Delete(ctx, "b"))

		all, err = b.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "a", all[0].ID)
	})
}

func TestBackendSurvivesReopen(t *testing.T) {
	eachBackend(t, func(t *testing.T, open func() Backend) {
		ctx := context.Background()
		e := sampleEntry("x", time.Date(2024, time.October, 9, 1, 2, 3, 456789, time.UTC))
		e.Emotion = "euforia"

		b := open()
		require.NoError(t, b.Put(ctx, e))
		require.NoError(t, b.Close())

		again := open()
		got, err := again.Get(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, e, got)
	})
}

func TestBlobCorruptIsStorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, blobKey), []byte("{not json"), 0o644))

	b, err := NewBlob(dir)
	require.NoError(t, err)

	_, err = b.ListAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestSQLiteRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oniria.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 2")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewSQLite(path)
	assert.ErrorContains(t, err, "unsupported schema version 2")
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("mongo", t.TempDir())
	assert.ErrorContains(t, err, "unknown backend")
}
