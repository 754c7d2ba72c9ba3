package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/witdiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(normalizedTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore(normalizedTable, schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("key", []byte("<a/>"), 1, time.Now().Unix()))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStore_InvalidInputs(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, "")
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewCacheStore(normalizedTable, "redis", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestCacheStore_SQLite(t *testing.T) {
	store := newTestCacheStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	ts := time.Now().Unix()
	require.NoError(t, store.Set("abc", []byte("<FIELD refname=\"System.Title\" />"), 2, ts))

	value, version, gotTs, err := store.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("<FIELD refname=\"System.Title\" />"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, ts, gotTs)

	// Set replaces an existing key
	require.NoError(t, store.Set("abc", []byte("<FIELD />"), 3, ts+10))
	value, version, gotTs, err = store.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("<FIELD />"), value)
	assert.Equal(t, 3, version)
	assert.Equal(t, ts+10, gotTs)
}

func TestCacheStore_GetStatus(t *testing.T) {
	store := newTestCacheStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("1"), 1, 1000))
	require.NoError(t, store.Set("b", []byte("2"), 1, 2000))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := NewCacheStore(normalizedTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", []byte("v"), 1, 42))
	require.NoError(t, first.Close())

	second, err := NewCacheStore(normalizedTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	value, _, ts, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
	assert.Equal(t, int64(42), ts)
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("t", schema.MySQLBackend), "MEDIUMBLOB")
	assert.Contains(t, getCreateTableQuery("t", schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateTableQuery("t", schema.SQLiteBackend), "BLOB")
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key) DO UPDATE"},
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{tableName: normalizedTable, backend: tt.backend}
			assert.Contains(t, store.getUpsertQuery(), tt.contains)
		})
	}
}
