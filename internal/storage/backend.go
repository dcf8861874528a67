// Package storage abstracts where uploaded objects live. Both backends
// speak the same interface: store a stream under a key, delete by key,
// enumerate everything. Keys are "bucket/filename" with the bucket chosen
// by content type, so the rest of the application never knows which
// backend is active.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gatehouse/internal/constants"
	"gatehouse/internal/sanitize"
)

// ErrNotFound is returned by Delete when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// Backend stores and retrieves uploaded objects. Implementations must not
// leave partial objects visible when Store fails, and must be safe for
// concurrent use.
type Backend interface {
	// Store writes the full stream under key and returns the public URL
	// of the stored object. On any failure no object remains under key.
	Store(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Delete removes the object under key. Returns ErrNotFound when no
	// such object exists.
	Delete(ctx context.Context, key string) error

	// List enumerates every stored object across all buckets.
	List(ctx context.Context) ([]ObjectInfo, error)
}

// ValidateKey checks that a storage key has the expected
// "bucket/filename" shape with a known bucket and a traversal-free
// filename. Every externally supplied key passes through here before it
// reaches a backend.
func ValidateKey(key string) error {
	bucket, name, ok := strings.Cut(key, "/")
	if !ok || name == "" {
		return fmt.Errorf("malformed storage key %q", key)
	}
	if bucket != constants.BucketImages && bucket != constants.BucketFiles {
		return fmt.Errorf("unknown bucket in storage key %q", key)
	}
	if sanitize.IsPathTraversal(name) {
		return fmt.Errorf("unsafe storage key %q", key)
	}
	return nil
}
