package storage

import "context"

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore captures the minimal S3-compatible operations the gateway needs.
// Implementations take the bucket per call; nothing is cached between calls.
type ObjectStore interface {
	// BucketExists reports whether the bucket exists and is accessible.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// StatObject probes an object's metadata. A missing object is reported
	// as (false, nil); any other store failure is returned as an error.
	StatObject(ctx context.Context, bucket, key string) (bool, error)

	// ListObjects returns all objects under prefix, in store-native order.
	// Pagination is handled by the implementation.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// DownloadObject downloads an object to the provided destination path.
	DownloadObject(ctx context.Context, bucket, key, destPath string) error

	// UploadObject uploads a local file to the given key.
	UploadObject(ctx context.Context, bucket, localPath, key string) error
}

// TransferResult records the outcome of a single item in a bulk transfer.
// Bulk operations never abort on one item's failure, so callers inspect
// these instead of the logs.
type TransferResult struct {
	// Key is the remote object key involved in the transfer.
	Key string

	// LocalPath is the local side of the transfer.
	LocalPath string

	// Skipped is true when the item was already present at the destination
	// and no transfer was attempted.
	Skipped bool

	// Err is the per-item failure, nil on success or skip.
	Err error
}
