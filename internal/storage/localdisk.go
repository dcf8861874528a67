package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gatehouse/internal/constants"
	"gatehouse/internal/logger"
)

// LocalBackend stores objects on the local filesystem under a root
// directory, one subdirectory per bucket. Writes go to a temp file in the
// destination directory and are renamed into place, so a key either holds
// a complete object or nothing.
type LocalBackend struct {
	root    string
	baseURL string
	logger  *logger.Logger
}

// NewLocalBackend creates a filesystem backend rooted at root. Bucket
// directories are created up front. Public URLs are baseURL plus the
// static prefix plus the key.
func NewLocalBackend(root, baseURL string, log *logger.Logger) (*LocalBackend, error) {
	for _, bucket := range []string{constants.BucketImages, constants.BucketFiles} {
		dir := filepath.Join(root, bucket)
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create bucket directory %s: %w", dir, err)
		}
	}
	return &LocalBackend{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}, nil
}

// Root returns the backend's root directory. The HTTP layer serves it
// under the static prefix.
func (b *LocalBackend) Root() string {
	return b.root
}

func (b *LocalBackend) Store(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	dest := filepath.Join(b.root, filepath.FromSlash(key))
	if !b.contains(dest) {
		return "", fmt.Errorf("storage key %q escapes root", key)
	}

	// Temp file in the destination directory keeps the final rename on
	// one filesystem, which makes it atomic.
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*"+constants.TempFileSuffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			b.logger.Warn("Storage: failed to remove temp file %s: %v", tmpPath, rmErr)
		}
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return b.baseURL + constants.StaticURLPrefix + key, nil
}

func (b *LocalBackend) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	dest := filepath.Join(b.root, filepath.FromSlash(key))
	if !b.contains(dest) {
		return fmt.Errorf("storage key %q escapes root", key)
	}

	if err := os.Remove(dest); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (b *LocalBackend) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for _, bucket := range []string{constants.BucketImages, constants.BucketFiles} {
		dir := filepath.Join(b.root, bucket)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read bucket directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			// In-flight temp files are not objects.
			if strings.HasSuffix(name, constants.TempFileSuffix) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				// Deleted between ReadDir and Info.
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("failed to stat %s: %w", name, err)
			}
			objects = append(objects, ObjectInfo{
				Key:  bucket + "/" + name,
				Size: info.Size(),
			})
		}
	}
	return objects, nil
}

// contains reports whether path sits under the backend root after
// normalization. ValidateKey already rejects traversal; this is a second
// check at the filesystem boundary.
func (b *LocalBackend) contains(path string) bool {
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
