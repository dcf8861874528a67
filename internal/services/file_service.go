package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gatehouse/internal/constants"
	"gatehouse/internal/logger"
	"gatehouse/internal/storage"
)

// ReferenceSource answers which storage keys are still referenced by
// live resources.
type ReferenceSource interface {
	ReferencedKeys() (map[string]bool, error)
}

// SweepResult summarizes one orphan sweep.
type SweepResult struct {
	Scanned     int      `json:"scanned"`
	Deleted     int      `json:"deleted"`
	Skipped     int      `json:"skipped"`
	DeletedKeys []string `json:"deleted_keys"`
	Errors      []string `json:"errors,omitempty"`
}

// BucketStats summarizes one bucket.
type BucketStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// StorageStats summarizes the whole backend, keyed by bucket.
type StorageStats struct {
	Buckets    map[string]BucketStats `json:"buckets"`
	TotalCount int                    `json:"total_count"`
	TotalBytes int64                  `json:"total_bytes"`
}

// FileService provides administrative operations over stored objects:
// deletion, statistics, and the orphan sweep.
type FileService struct {
	backend storage.Backend
	refs    ReferenceSource
	logger  *logger.Logger
	grace   time.Duration

	// sweepMu serializes sweeps. Concurrent sweeps would race on the
	// listing and double-delete.
	sweepMu sync.Mutex
}

// NewFileService creates the file administration service.
func NewFileService(backend storage.Backend, refs ReferenceSource, log *logger.Logger) *FileService {
	return &FileService{
		backend: backend,
		refs:    refs,
		logger:  log,
		grace:   constants.SweepGracePeriod,
	}
}

// SetSweepGrace overrides the sweep grace period. Zero disables it.
func (s *FileService) SetSweepGrace(d time.Duration) {
	s.grace = d
}

// Delete removes the object under key.
func (s *FileService) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return ErrInvalidKey
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrFileNotFound
		}
		return WrapBackendError(err)
	}
	s.logger.Info("Files: deleted %s", key)
	return nil
}

// Stats returns per-bucket object counts and byte totals.
func (s *FileService) Stats(ctx context.Context) (*StorageStats, error) {
	objects, err := s.backend.List(ctx)
	if err != nil {
		return nil, WrapBackendError(err)
	}

	stats := &StorageStats{Buckets: map[string]BucketStats{
		constants.BucketImages: {},
		constants.BucketFiles:  {},
	}}
	for _, obj := range objects {
		bucket, _, _ := strings.Cut(obj.Key, "/")
		bs := stats.Buckets[bucket]
		bs.Count++
		bs.Bytes += obj.Size
		stats.Buckets[bucket] = bs
		stats.TotalCount++
		stats.TotalBytes += obj.Size
	}
	return stats, nil
}

// Sweep deletes stored objects whose keys are not referenced by any live
// resource. Referenced objects are never touched. The sweep is best
// effort: individual delete failures are collected and do not stop the
// pass. The reference snapshot is taken after the listing, so an object
// uploaded mid-sweep is seen as referenced or not listed at all.
func (s *FileService) Sweep(ctx context.Context) (*SweepResult, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	objects, err := s.backend.List(ctx)
	if err != nil {
		return nil, WrapBackendError(err)
	}
	referenced, err := s.refs.ReferencedKeys()
	if err != nil {
		return nil, WrapInternalError(err)
	}

	result := &SweepResult{Scanned: len(objects)}
	s.logger.Info("[sweep] scanning %d objects against %d references", len(objects), len(referenced))

	for _, obj := range objects {
		if ctx.Err() != nil {
			return nil, WrapInternalError(ctx.Err())
		}
		if referenced[obj.Key] {
			continue
		}
		// An upload and its reference row are two steps; a fresh object
		// may simply not be registered yet.
		if uploadedAt, ok := keyUploadTime(obj.Key); ok && time.Since(uploadedAt) < s.grace {
			result.Skipped++
			continue
		}

		if err := s.backend.Delete(ctx, obj.Key); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Already gone, nothing to report.
				continue
			}
			s.logger.Warn("[sweep] failed to delete %s: %v", obj.Key, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", obj.Key, err))
			continue
		}
		result.Deleted++
		result.DeletedKeys = append(result.DeletedKeys, obj.Key)
	}

	s.logger.Info("[sweep] complete: %d scanned, %d deleted, %d skipped, %d errors",
		result.Scanned, result.Deleted, result.Skipped, len(result.Errors))
	return result, nil
}

// keyUploadTime extracts the upload timestamp embedded in a storage key
// ("bucket/{unixMilli}-{rand}-{name}"). Keys without a parseable stamp
// report false and get no grace.
func keyUploadTime(key string) (time.Time, bool) {
	_, name, ok := strings.Cut(key, "/")
	if !ok {
		return time.Time{}, false
	}
	stamp, _, ok := strings.Cut(name, "-")
	if !ok {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil || millis <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}
