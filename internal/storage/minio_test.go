package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinioStoreValidation(t *testing.T) {
	_, err := NewMinioStore(MinioConfig{AccessKey: "ak", SecretKey: "sk"})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewMinioStore(MinioConfig{Endpoint: "play.min.io"})
	assert.ErrorContains(t, err, "credentials")
}

func TestNewMinioStoreStripsScheme(t *testing.T) {
	// The client constructor rejects endpoints carrying a scheme, so the
	// config layer must accept either form.
	for _, endpoint := range []string{"play.min.io", "https://play.min.io", "http://play.min.io"} {
		store, err := NewMinioStore(MinioConfig{
			Endpoint:  endpoint,
			AccessKey: "ak",
			SecretKey: "sk",
		})
		require.NoError(t, err, endpoint)
		require.NotNil(t, store)
	}
}
