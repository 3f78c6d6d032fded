package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

type Storage interface {
	// Put stores data with the given key and returns the storage URL
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves data from the given storage URL
	Get(ctx context.Context, url string) ([]byte, error)
}

const s3Scheme = "s3://"

// ForURL returns the backend that owns location. "s3://bucket/prefix" selects
// S3 with every key placed under prefix; anything else is a local directory.
func ForURL(ctx context.Context, location string) (Storage, error) {
	if rest, ok := strings.CutPrefix(location, s3Scheme); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("missing bucket in %q", location)
		}
		s, err := NewS3Storage(ctx, S3Config{
			Bucket: bucket,
		})
		if err != nil {
			return nil, err
		}
		return WithPrefix(s, prefix), nil
	}

	return NewFileStorage(ctx, FileConfig{
		Directory: location,
	})
}

type prefixed struct {
	Storage
	prefix string
}

// WithPrefix places every key written through s under prefix.
func WithPrefix(s Storage, prefix string) Storage {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return s
	}
	return &prefixed{
		Storage: s,
		prefix:  prefix,
	}
}

func (p *prefixed) Put(ctx context.Context, key string, data []byte) (string, error) {
	return p.Storage.Put(ctx, path.Join(p.prefix, key), data)
}
