package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Gateway exposes the high-level bucket/object helpers on top of an
// injected ObjectStore. It holds no state between calls; existence answers
// are queried fresh every time, never cached.
type Gateway struct {
	store ObjectStore
	log   zerolog.Logger
}

// NewGateway builds a Gateway over the given store.
func NewGateway(store ObjectStore, log zerolog.Logger) *Gateway {
	return &Gateway{store: store, log: log}
}

// BucketExists reports whether the bucket exists and is accessible. Any
// store error (including permission errors) is logged and reported as
// false; this never returns an error.
func (g *Gateway) BucketExists(ctx context.Context, bucket string) bool {
	exists, err := g.store.BucketExists(ctx, bucket)
	if err != nil {
		g.log.Error().Err(err).Str("bucket", bucket).Msg("bucket existence check failed")
		return false
	}
	return exists
}

// ObjectExists reports whether the object exists. A missing object is
// (false, nil); any other store error is returned so the caller has to
// deal with it explicitly.
func (g *Gateway) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	return g.store.StatObject(ctx, bucket, key)
}

// ListObjects returns all keys under prefix, in store-native order. When
// suffix is non-empty, only keys whose lowercase form ends with the
// lowercase suffix are retained.
func (g *Gateway) ListObjects(ctx context.Context, bucket, prefix, suffix string) ([]string, error) {
	objects, err := g.store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if suffix != "" && !strings.HasSuffix(strings.ToLower(obj.Key), strings.ToLower(suffix)) {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// DownloadFiles downloads each key into destDir under its basename,
// creating destDir if needed. Keys whose basename is already present
// locally are skipped without any network call; filename presence is the
// only check, content is not compared. A per-item store error is logged
// and recorded, and the loop moves on. The returned results cover every
// input key.
func (g *Gateway) DownloadFiles(ctx context.Context, bucket string, keys []string, destDir string) []TransferResult {
	results := make([]TransferResult, 0, len(keys))
	pending := make([]string, 0, len(keys))
	for _, key := range keys {
		localPath := filepath.Join(destDir, path.Base(key))
		if _, err := os.Stat(localPath); err == nil {
			results = append(results, TransferResult{Key: key, LocalPath: localPath, Skipped: true})
			continue
		}
		pending = append(pending, key)
	}

	if len(pending) > 0 {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			// Without a destination directory nothing can transfer.
			for _, key := range pending {
				results = append(results, TransferResult{Key: key, Err: err})
			}
			g.log.Error().Err(err).Str("dir", destDir).Msg("failed to ensure download dir")
			return results
		}
	}

	for i, key := range pending {
		localPath := filepath.Join(destDir, path.Base(key))
		g.log.Info().
			Str("bucket", bucket).
			Str("key", key).
			Str("progress", fmt.Sprintf("%d/%d", i+1, len(pending))).
			Msg("downloading file")
		if err := g.store.DownloadObject(ctx, bucket, key, localPath); err != nil {
			g.log.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("download failed")
			results = append(results, TransferResult{Key: key, LocalPath: localPath, Err: err})
			continue
		}
		results = append(results, TransferResult{Key: key, LocalPath: localPath})
	}
	return results
}

// DownloadDir downloads everything under prefix into destDir, optionally
// filtered by suffix.
func (g *Gateway) DownloadDir(ctx context.Context, bucket, prefix, destDir, suffix string) ([]TransferResult, error) {
	keys, err := g.ListObjects(ctx, bucket, prefix, suffix)
	if err != nil {
		return nil, err
	}
	return g.DownloadFiles(ctx, bucket, keys, destDir), nil
}

// DownloadHighestNumberedFile lists the objects under prefix, optionally
// filtered by suffix and by a case-insensitive substring match on the
// basename, and downloads the single candidate whose basename has the
// greatest leading integer run (a basename with no leading digits ranks
// as 0). An empty candidate set is a no-op. When several candidates share
// the same leading number the choice between them is unspecified.
func (g *Gateway) DownloadHighestNumberedFile(ctx context.Context, bucket, prefix, destDir, suffix, contains string) ([]TransferResult, error) {
	keys, err := g.ListObjects(ctx, bucket, prefix, suffix)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := path.Base(key)
		if contains != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(contains)) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, nil
	}

	highest := names[0]
	for _, name := range names[1:] {
		if leadingNumber(name) > leadingNumber(highest) {
			highest = name
		}
	}

	return g.DownloadFiles(ctx, bucket, []string{joinKey(prefix, highest)}, destDir), nil
}

// UploadFiles uploads each local file to destPrefix + "/" + basename.
// Files whose destination key already exists are skipped; the skip is
// logged only when notifyIfExists is set. A per-item error (from the
// existence probe or the upload itself) is logged and recorded, and the
// loop moves on.
func (g *Gateway) UploadFiles(ctx context.Context, bucket string, localFiles []string, destPrefix string, notifyIfExists bool) []TransferResult {
	results := make([]TransferResult, 0, len(localFiles))
	for i, localPath := range localFiles {
		key := joinKey(destPrefix, filepath.Base(localPath))

		exists, err := g.store.StatObject(ctx, bucket, key)
		if err != nil {
			g.log.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("object existence check failed")
			results = append(results, TransferResult{Key: key, LocalPath: localPath, Err: err})
			continue
		}
		if exists {
			if notifyIfExists {
				g.log.Info().
					Str("bucket", bucket).
					Str("key", key).
					Str("progress", fmt.Sprintf("%d/%d", i+1, len(localFiles))).
					Msg("object already exists")
			}
			results = append(results, TransferResult{Key: key, LocalPath: localPath, Skipped: true})
			continue
		}

		g.log.Info().
			Str("bucket", bucket).
			Str("key", key).
			Str("progress", fmt.Sprintf("%d/%d", i+1, len(localFiles))).
			Msg("uploading file")
		if err := g.store.UploadObject(ctx, bucket, localPath, key); err != nil {
			g.log.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("upload failed")
			results = append(results, TransferResult{Key: key, LocalPath: localPath, Err: err})
			continue
		}
		results = append(results, TransferResult{Key: key, LocalPath: localPath})
	}
	return results
}

// joinKey joins a key prefix and a name with a single slash.
func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(strings.TrimSpace(prefix), "/") + "/" + name
}
