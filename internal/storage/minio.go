package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for an S3-compatible service.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// MinioStore implements ObjectStore for S3-compatible services via minio-go.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds a new MinioStore from the given connection info.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}

	// minio-go wants a bare host:port; the scheme is carried by UseSSL.
	endpoint := strings.TrimPrefix(cfg.Endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "//")

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &MinioStore{client: client}, nil
}

// BucketExists reports whether the bucket exists and is reachable.
func (s *MinioStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("head bucket %s failed: %w", bucket, err)
	}
	return exists, nil
}

// StatObject probes object metadata. A missing key is (false, nil); any
// other store error is returned to the caller untouched.
func (s *MinioStore) StatObject(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListObjects lists all objects under a prefix, in the order the store
// returns them. minio-go pages through the listing internally.
func (s *MinioStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s/%s failed: %w", bucket, prefix, object.Err)
		}
		results = append(results, ObjectInfo{
			Key:  object.Key,
			Size: object.Size,
		})
	}
	return results, nil
}

// DownloadObject downloads an object to the provided destination path.
func (s *MinioStore) DownloadObject(ctx context.Context, bucket, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := s.client.FGetObject(ctx, bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed downloading %s:%s: %w", bucket, key, err)
	}
	return nil
}

// UploadObject uploads a local file to the given key.
func (s *MinioStore) UploadObject(ctx context.Context, bucket, localPath, key string) error {
	if _, err := s.client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("failed uploading %s to %s:%s: %w", localPath, bucket, key, err)
	}
	return nil
}

var _ ObjectStore = (*MinioStore)(nil)
