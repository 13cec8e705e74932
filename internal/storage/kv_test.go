package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKVContract(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Save(ctx, "user-1", []byte(`{"v":1}`)))
	require.NoError(t, kv.Save(ctx, "user-1", []byte(`{"v":2}`)))

	got, err := kv.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got), "last write wins")
}

func TestMemoryKV(t *testing.T) {
	testKVContract(t, NewMemoryKV())
}

func TestMemoryKV_Prune(t *testing.T) {
	kv := NewMemoryKV()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return base }
	require.NoError(t, kv.Save(context.Background(), "old", []byte("a")))
	kv.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, kv.Save(context.Background(), "new", []byte("b")))

	n, err := kv.Prune(context.Background(), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, kv.Len())
}

func TestSQLiteKV(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "cache", "bridge.db"))
	require.NoError(t, err)
	defer kv.Close()

	testKVContract(t, kv)
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.db")
	ctx := context.Background()

	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Save(ctx, "user-1", []byte("persisted")))
	require.NoError(t, kv.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

func TestSQLiteKV_Prune(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "bridge.db"))
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.Save(ctx, "user-1", []byte("x")))

	n, err := kv.Prune(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = kv.Prune(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = kv.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	kv, err := DialRedis(context.Background(), addr, time.Minute)
	require.NoError(t, err)
	defer kv.Close()

	testKVContract(t, kv)
}

func TestSealedKV(t *testing.T) {
	inner := NewMemoryKV()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	sealed, err := NewSealedKV(inner, key)
	require.NoError(t, err)

	testKVContract(t, sealed)

	// Nothing readable leaks into the wrapped store.
	_, err = inner.Load(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, inner.Len())
	for k, e := range inner.entries {
		assert.NotContains(t, k, "user-1")
		assert.NotContains(t, string(e.value), `"v":2`)
	}
}

func TestSealedKV_RejectsTamperedValue(t *testing.T) {
	inner := NewMemoryKV()
	sealed, err := NewSealedKV(inner, make([]byte, 32))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sealed.Save(ctx, "user-1", []byte("secret")))
	for k, e := range inner.entries {
		e.value[len(e.value)-1] ^= 0xff
		inner.entries[k] = e
	}

	_, err = sealed.Load(ctx, "user-1")
	assert.Error(t, err)
}

func TestNewSealedKV_KeyLength(t *testing.T) {
	_, err := NewSealedKV(NewMemoryKV(), []byte("short"))
	assert.Error(t, err)
}
