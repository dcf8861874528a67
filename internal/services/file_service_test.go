package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gatehouse/internal/constants"
	"gatehouse/internal/logger"
)

// memRefs is an in-memory ReferenceSource.
type memRefs struct {
	keys map[string]bool
	err  error
}

func (r *memRefs) ReferencedKeys() (map[string]bool, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.keys, nil
}

func testFileService(backend *memBackend, refs *memRefs) *FileService {
	log := logger.NewWithOptions(logger.Options{Level: logger.LevelError})
	return NewFileService(backend, refs, log)
}

func seed(t *testing.T, backend *memBackend, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, err := backend.Store(context.Background(), key, strings.NewReader("content-of-"+key), "application/octet-stream"); err != nil {
			t.Fatalf("seed Store(%s) failed: %v", key, err)
		}
	}
}

// =============================================================================
// Sweep — only unreferenced objects are deleted
// =============================================================================

func TestSweep_DeletesOnlyOrphans(t *testing.T) {
	backend := newMemBackend()
	seed(t, backend,
		"images/1-aa-kept.png",
		"images/2-bb-orphan.png",
		"files/3-cc-kept.pdf",
		"files/4-dd-orphan.pdf",
	)
	refs := &memRefs{keys: map[string]bool{
		"images/1-aa-kept.png": true,
		"files/3-cc-kept.pdf":  true,
	}}

	svc := testFileService(backend, refs)
	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if result.Scanned != 4 {
		t.Errorf("Expected 4 scanned, got %d", result.Scanned)
	}
	if result.Deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", result.Deleted)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}

	remaining, _ := backend.List(context.Background())
	if len(remaining) != 2 {
		t.Fatalf("Expected 2 remaining objects, got %d", len(remaining))
	}
	for _, obj := range remaining {
		if !refs.keys[obj.Key] {
			t.Errorf("Referenced object %s should have survived the sweep", obj.Key)
		}
	}
}

func TestSweep_SparesFreshUnregisteredUploads(t *testing.T) {
	backend := newMemBackend()
	fresh := fmt.Sprintf("images/%d-aa-fresh.png", time.Now().UnixMilli())
	seed(t, backend,
		fresh,
		"images/1-bb-stale.png",
	)
	refs := &memRefs{keys: map[string]bool{}}

	// Neither object is referenced, but the fresh one may still be
	// waiting for its reference row and must survive the sweep.
	svc := testFileService(backend, refs)
	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if result.Deleted != 1 || result.Skipped != 1 {
		t.Errorf("Expected 1 deleted / 1 skipped, got %d / %d", result.Deleted, result.Skipped)
	}
	remaining, _ := backend.List(context.Background())
	if len(remaining) != 1 || remaining[0].Key != fresh {
		t.Errorf("Expected only the fresh upload to remain, got %v", remaining)
	}

	// With the grace disabled the fresh orphan goes too
	svc.SetSweepGrace(0)
	result, err = svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Deleted != 1 || result.Skipped != 0 {
		t.Errorf("Expected 1 deleted / 0 skipped without grace, got %d / %d", result.Deleted, result.Skipped)
	}
}

func TestKeyUploadTime(t *testing.T) {
	now := time.Now().UnixMilli()
	got, ok := keyUploadTime(fmt.Sprintf("images/%d-aa-photo.png", now))
	if !ok || got.UnixMilli() != now {
		t.Errorf("Expected stamp %d, got %v (%v)", now, got, ok)
	}

	for _, key := range []string{
		"images/not-a-stamp.png",
		"images/-5-aa-x.png",
		"no-bucket",
		"images/0-aa-x.png",
	} {
		if _, ok := keyUploadTime(key); ok {
			t.Errorf("Expected no stamp for %q", key)
		}
	}
}

func TestSweep_EmptyBackend(t *testing.T) {
	svc := testFileService(newMemBackend(), &memRefs{keys: map[string]bool{}})

	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Scanned != 0 || result.Deleted != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestSweep_ReferenceFailureAbortsBeforeDeleting(t *testing.T) {
	backend := newMemBackend()
	seed(t, backend, "images/1-aa-a.png")
	refs := &memRefs{err: errors.New("database locked")}

	svc := testFileService(backend, refs)
	if _, err := svc.Sweep(context.Background()); err == nil {
		t.Fatal("Expected Sweep to fail when references cannot be loaded")
	}
	if backend.count() != 1 {
		t.Errorf("No objects may be deleted when the reference set is unknown, %d remain", backend.count())
	}
}

// =============================================================================
// Delete / Stats
// =============================================================================

func TestFileService_Delete(t *testing.T) {
	backend := newMemBackend()
	seed(t, backend, "files/1-aa-doc.pdf")
	svc := testFileService(backend, &memRefs{})

	if err := svc.Delete(context.Background(), "files/1-aa-doc.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), "files/1-aa-doc.pdf"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "../etc/passwd"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestFileService_Stats(t *testing.T) {
	backend := newMemBackend()
	seed(t, backend,
		"images/1-aa-a.png",
		"images/2-bb-b.png",
		"files/3-cc-c.pdf",
	)
	svc := testFileService(backend, &memRefs{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalCount != 3 {
		t.Errorf("Expected total count 3, got %d", stats.TotalCount)
	}
	if stats.Buckets[constants.BucketImages].Count != 2 {
		t.Errorf("Expected 2 images, got %d", stats.Buckets[constants.BucketImages].Count)
	}
	if stats.Buckets[constants.BucketFiles].Count != 1 {
		t.Errorf("Expected 1 file, got %d", stats.Buckets[constants.BucketFiles].Count)
	}
	if stats.TotalBytes <= 0 {
		t.Errorf("Expected positive total bytes, got %d", stats.TotalBytes)
	}
}
