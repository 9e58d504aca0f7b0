package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Make sure *MemStore satisfies the ObjectStore interface.
var _ ObjectStore = (*MemStore)(nil)

// MemStore is an in-memory ObjectStore for tests. Objects live in a
// nested map, listing order is lexicographic, and every network-shaped
// call is counted so tests can assert on how many were made. Each method
// has a matching error field to inject failures.
type MemStore struct {
	buckets map[string]map[string][]byte

	BucketErr   error
	StatErr     error
	ListErr     error
	DownloadErr error
	UploadErr   error

	StatCalls     int
	ListCalls     int
	DownloadCalls int
	UploadCalls   int
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{buckets: make(map[string]map[string][]byte)}
}

// CreateBucket makes an empty bucket.
func (m *MemStore) CreateBucket(bucket string) {
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string][]byte)
	}
}

// PutObject seeds an object, creating the bucket if needed.
func (m *MemStore) PutObject(bucket, key string, data []byte) {
	m.CreateBucket(bucket)
	m.buckets[bucket][key] = append([]byte(nil), data...)
}

// ObjectData returns a stored object's content and whether it exists.
func (m *MemStore) ObjectData(bucket, key string) ([]byte, bool) {
	data, ok := m.buckets[bucket][key]
	return data, ok
}

func (m *MemStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if m.BucketErr != nil {
		return false, m.BucketErr
	}
	_, ok := m.buckets[bucket]
	return ok, nil
}

func (m *MemStore) StatObject(ctx context.Context, bucket, key string) (bool, error) {
	m.StatCalls++
	if m.StatErr != nil {
		return false, m.StatErr
	}
	_, ok := m.buckets[bucket][key]
	return ok, nil
}

func (m *MemStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	keys := make([]string, 0, len(m.buckets[bucket]))
	for key := range m.buckets[bucket] {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	results := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		results = append(results, ObjectInfo{Key: key, Size: int64(len(m.buckets[bucket][key]))})
	}
	return results, nil
}

func (m *MemStore) DownloadObject(ctx context.Context, bucket, key, destPath string) error {
	m.DownloadCalls++
	if m.DownloadErr != nil {
		return m.DownloadErr
	}
	data, ok := m.buckets[bucket][key]
	if !ok {
		return fmt.Errorf("object %s:%s does not exist", bucket, key)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (m *MemStore) UploadObject(ctx context.Context, bucket, localPath, key string) error {
	m.UploadCalls++
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.PutObject(bucket, key, data)
	return nil
}
