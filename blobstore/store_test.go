package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	t.Helper()
	return map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}
}

func TestBlobStore_PutOpenRead(t *testing.T) {
	ctx := context.Background()
	data := []byte("hello world, this is a test blob")

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "data/X.csv", data))

			blob, err := store.Open(ctx, "data/X.csv")
			require.NoError(t, err)
			defer blob.Close()

			assert.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 5)
			n, err := blob.ReadAt(ctx, buf, 6)
			require.NoError(t, err)
			assert.Equal(t, 5, n)
			assert.Equal(t, "world", string(buf))

			n, err = blob.ReadAt(ctx, make([]byte, 10), int64(len(data)-3))
			assert.Equal(t, 3, n)
			assert.ErrorIs(t, err, io.EOF)

			all, err := io.ReadAll(NewReader(ctx, blob))
			require.NoError(t, err)
			assert.Equal(t, data, all)
		})
	}
}

func TestBlobStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "topk.csv", []byte("old content")))
			require.NoError(t, store.Put(ctx, "topk.csv", []byte("new")))

			got, err := ReadAll(ctx, store, "topk.csv")
			require.NoError(t, err)
			assert.Equal(t, "new", string(got))
		})
	}
}

func TestBlobStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Open(ctx, "missing")
			assert.True(t, errors.Is(err, ErrNotFound))

			_, err = ReadAll(ctx, store, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBlobStore_List(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"run/b.csv", "run/a.csv", "other/c.csv"} {
				require.NoError(t, store.Put(ctx, n, []byte(n)))
			}

			names, err := store.List(ctx, "run/")
			require.NoError(t, err)
			assert.Equal(t, []string{"run/a.csv", "run/b.csv"}, names)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestBlobStore_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "empty", nil))
			got, err := ReadAll(ctx, store, "empty")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestLocalStore_AtomicPutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)

	require.NoError(t, store.Put(ctx, "out.sfm", []byte("payload")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.sfm", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "out.sfm"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestLocalStore_Mappable(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "x", []byte("abc")))

	blob, err := store.Open(ctx, "x")
	require.NoError(t, err)

	m, ok := blob.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	require.NoError(t, blob.Close())
	_, err = m.Bytes()
	assert.Error(t, err)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewLocalStore(t.TempDir())
	assert.ErrorIs(t, store.Put(ctx, "x", []byte("a")), context.Canceled)
	_, err := store.Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
