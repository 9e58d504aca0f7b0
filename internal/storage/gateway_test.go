package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(store ObjectStore) *Gateway {
	return NewGateway(store, zerolog.New(io.Discard))
}

func writeLocalFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestBucketExists(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.CreateBucket("models")
	gw := newTestGateway(store)

	assert.True(t, gw.BucketExists(ctx, "models"))
	assert.False(t, gw.BucketExists(ctx, "missing"))
}

func TestBucketExistsErrorIsFalse(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.CreateBucket("models")
	store.BucketErr = errors.New("access denied")
	gw := newTestGateway(store)

	// Any store error, inaccessible included, comes back as false.
	assert.False(t, gw.BucketExists(ctx, "models"))
}

func TestObjectExists(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("models", "ckpt/10_model.pt", []byte("weights"))
	gw := newTestGateway(store)

	exists, err := gw.ObjectExists(ctx, "models", "ckpt/10_model.pt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = gw.ObjectExists(ctx, "models", "ckpt/11_model.pt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestObjectExistsPropagatesUnexpectedErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.StatErr = errors.New("throttled")
	gw := newTestGateway(store)

	_, err := gw.ObjectExists(ctx, "models", "ckpt/10_model.pt")
	require.Error(t, err)
}

func TestListObjects(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("logs", "logs/a.json", []byte("{}"))
	store.PutObject("logs", "logs/b.JSON", []byte("{}"))
	store.PutObject("logs", "logs/c.txt", []byte("text"))
	store.PutObject("logs", "other/d.json", []byte("{}"))
	gw := newTestGateway(store)

	keys, err := gw.ListObjects(ctx, "logs", "logs/", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/a.json", "logs/b.JSON", "logs/c.txt"}, keys)

	// Suffix filtering is case-insensitive on both sides.
	keys, err = gw.ListObjects(ctx, "logs", "logs/", ".JSON")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/a.json", "logs/b.JSON"}, keys)
}

func TestListObjectsError(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.ListErr = errors.New("listing failed")
	gw := newTestGateway(store)

	_, err := gw.ListObjects(ctx, "logs", "logs/", "")
	require.Error(t, err)
}

func TestDownloadFiles(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("models", "ckpt/10_model.pt", []byte("weights"))
	gw := newTestGateway(store)

	// Destination dir does not exist yet; it must be created recursively.
	destDir := filepath.Join(t.TempDir(), "nested", "downloads")
	results := gw.DownloadFiles(ctx, "models", []string{"ckpt/10_model.pt"}, destDir)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.False(t, results[0].Skipped)

	data, err := os.ReadFile(filepath.Join(destDir, "10_model.pt"))
	require.NoError(t, err)
	assert.Equal(t, "weights", string(data))
}

func TestDownloadFilesSkipsExistingBasename(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("logs", "logs/a.json", []byte("{}"))
	gw := newTestGateway(store)

	destDir := t.TempDir()
	writeLocalFile(t, destDir, "a.json", "stale local copy")

	results := gw.DownloadFiles(ctx, "logs", []string{"logs/a.json"}, destDir)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.NoError(t, results[0].Err)

	// Idempotent re-run: no network call, local content untouched.
	assert.Equal(t, 0, store.DownloadCalls)
	data, err := os.ReadFile(filepath.Join(destDir, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "stale local copy", string(data))
}

func TestDownloadFilesContinuesOnItemError(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("models", "ckpt/1_model.pt", []byte("a"))
	store.PutObject("models", "ckpt/2_model.pt", []byte("b"))
	store.DownloadErr = errors.New("connection reset")
	gw := newTestGateway(store)

	results := gw.DownloadFiles(ctx, "models", []string{"ckpt/1_model.pt", "ckpt/2_model.pt"}, t.TempDir())
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Error(t, results[1].Err)
	// Both items were attempted despite the first failure.
	assert.Equal(t, 2, store.DownloadCalls)
}

func TestDownloadDir(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("logs", "logs/a.json", []byte("{}"))
	store.PutObject("logs", "logs/b.txt", []byte("text"))
	gw := newTestGateway(store)

	destDir := t.TempDir()
	results, err := gw.DownloadDir(ctx, "logs", "logs/", destDir, ".json")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "logs/a.json", results[0].Key)
	assert.FileExists(t, filepath.Join(destDir, "a.json"))
}

func TestDownloadHighestNumberedFile(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("models", "ckpt/3_model.pt", []byte("3"))
	store.PutObject("models", "ckpt/10_model.pt", []byte("10"))
	store.PutObject("models", "ckpt/2_model.pt", []byte("2"))
	gw := newTestGateway(store)

	destDir := t.TempDir()
	results, err := gw.DownloadHighestNumberedFile(ctx, "models", "ckpt/", destDir, ".pt", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ckpt/10_model.pt", results[0].Key)
	assert.Equal(t, 1, store.DownloadCalls)
	assert.FileExists(t, filepath.Join(destDir, "10_model.pt"))
	assert.NoFileExists(t, filepath.Join(destDir, "3_model.pt"))
}

func TestDownloadHighestNumberedFileNoLeadingDigits(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("models", "ckpt/model.pt", []byte("only"))
	gw := newTestGateway(store)

	destDir := t.TempDir()
	results, err := gw.DownloadHighestNumberedFile(ctx, "models", "ckpt/", destDir, "", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ckpt/model.pt", results[0].Key)
}

func TestDownloadHighestNumberedFileKeywordFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("models", "ckpt/10_model.pt", []byte("model"))
	store.PutObject("models", "ckpt/99_optimizer.pt", []byte("optimizer"))
	gw := newTestGateway(store)

	destDir := t.TempDir()
	results, err := gw.DownloadHighestNumberedFile(ctx, "models", "ckpt/", destDir, ".pt", "MODEL")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ckpt/10_model.pt", results[0].Key)
}

func TestDownloadHighestNumberedFileEmptySetIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.PutObject("models", "ckpt/10_model.pt", []byte("model"))
	gw := newTestGateway(store)

	results, err := gw.DownloadHighestNumberedFile(ctx, "models", "ckpt/", t.TempDir(), ".pt", "optimizer")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, store.DownloadCalls)
}

func TestUploadFiles(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.CreateBucket("models")
	gw := newTestGateway(store)

	srcDir := t.TempDir()
	a := writeLocalFile(t, srcDir, "1_model.pt", "one")
	b := writeLocalFile(t, srcDir, "2_model.pt", "two")

	results := gw.UploadFiles(ctx, "models", []string{a, b}, "ckpt", false)
	require.Len(t, results, 2)
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.False(t, res.Skipped)
	}

	data, ok := store.ObjectData("models", "ckpt/1_model.pt")
	require.True(t, ok)
	assert.Equal(t, "one", string(data))
}

func TestUploadFilesSecondRunSkipsEverything(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.CreateBucket("models")
	gw := newTestGateway(store)

	srcDir := t.TempDir()
	a := writeLocalFile(t, srcDir, "1_model.pt", "one")
	b := writeLocalFile(t, srcDir, "2_model.pt", "two")
	files := []string{a, b}

	gw.UploadFiles(ctx, "models", files, "ckpt", false)
	uploadsAfterFirst := store.UploadCalls

	for _, notify := range []bool{false, true} {
		results := gw.UploadFiles(ctx, "models", files, "ckpt", notify)
		require.Len(t, results, 2)
		for _, res := range results {
			assert.True(t, res.Skipped)
		}
		assert.Equal(t, uploadsAfterFirst, store.UploadCalls)
	}
}

func TestUploadFilesContinuesOnItemError(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.CreateBucket("models")
	store.UploadErr = errors.New("server fault")
	gw := newTestGateway(store)

	srcDir := t.TempDir()
	a := writeLocalFile(t, srcDir, "1_model.pt", "one")
	b := writeLocalFile(t, srcDir, "2_model.pt", "two")

	results := gw.UploadFiles(ctx, "models", []string{a, b}, "ckpt", false)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 2, store.UploadCalls)
}

func TestUploadFilesExistenceProbeError(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	store.CreateBucket("models")
	store.StatErr = errors.New("access denied")
	gw := newTestGateway(store)

	srcDir := t.TempDir()
	a := writeLocalFile(t, srcDir, "1_model.pt", "one")

	results := gw.UploadFiles(ctx, "models", []string{a}, "ckpt", false)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Equal(t, 0, store.UploadCalls)
}
