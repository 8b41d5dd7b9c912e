package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/app/db"
)

func openStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "nested", "zimage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKeyValueRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "token", "a"))
	require.NoError(t, store.Set(ctx, "token", "b"))
	require.NoError(t, store.Set(ctx, "auth-storage", `{"token":"b"}`))

	v, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	require.NoError(t, store.Delete(ctx, "token", "auth-storage", "missing"))
	_, ok, err = store.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx))
}

func TestReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "zimage.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "token", "persisted"))
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestExportLedger(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.RecordExport(ctx, db.ExportRecord{JobID: "j1", Sink: "local", Location: "/tmp/zimage-j1.png", Bytes: 10, ExportedAt: 100}))
	require.NoError(t, store.RecordExport(ctx, db.ExportRecord{JobID: "j2", Sink: "s3", Location: "s3://b/zimage-j2.png", Bytes: 20, ExportedAt: 200}))
	require.NoError(t, store.RecordExport(ctx, db.ExportRecord{JobID: "j1", Sink: "s3", Location: "s3://b/zimage-j1.png", Bytes: 10}))

	all, err := store.Exports(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s3://b/zimage-j1.png", all[0].Location)
	assert.Equal(t, "j2", all[1].JobID)

	onlyJ1, err := store.Exports(ctx, "j1")
	require.NoError(t, err)
	require.Len(t, onlyJ1, 2)
	assert.Equal(t, int64(100), onlyJ1[1].Time().Unix())
}
