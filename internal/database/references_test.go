package database

import (
	"path/filepath"
	"testing"

	"gatehouse/internal/constants"
)

func testRefStore(t *testing.T) *RefStore {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRefStore(db)
}

// =============================================================================
// Add / Remove / ReferencedKeys
// =============================================================================

func TestRefStore_AddAndList(t *testing.T) {
	s := testRefStore(t)

	if err := s.AddReference("images/1-aa-a.png", constants.ResourceKindTicket, 7); err != nil {
		t.Fatalf("AddReference failed: %v", err)
	}
	if err := s.AddReference("files/2-bb-b.pdf", constants.ResourceKindBoard, 9); err != nil {
		t.Fatalf("AddReference failed: %v", err)
	}

	keys, err := s.ReferencedKeys()
	if err != nil {
		t.Fatalf("ReferencedKeys failed: %v", err)
	}
	if len(keys) != 2 || !keys["images/1-aa-a.png"] || !keys["files/2-bb-b.pdf"] {
		t.Errorf("Unexpected key set: %v", keys)
	}
}

func TestRefStore_ReRegisterMovesOwnership(t *testing.T) {
	s := testRefStore(t)

	if err := s.AddReference("images/1-aa-a.png", constants.ResourceKindTicket, 7); err != nil {
		t.Fatalf("AddReference failed: %v", err)
	}
	// Same key claimed by another resource; must not fail on the PK
	if err := s.AddReference("images/1-aa-a.png", constants.ResourceKindBoard, 3); err != nil {
		t.Fatalf("Re-register failed: %v", err)
	}

	keys, err := s.ReferencedKeys()
	if err != nil {
		t.Fatalf("ReferencedKeys failed: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("Expected 1 key after re-register, got %d", len(keys))
	}
}

func TestRefStore_RemoveAndIsReferenced(t *testing.T) {
	s := testRefStore(t)

	if err := s.AddReference("images/1-aa-a.png", constants.ResourceKindTicket, 7); err != nil {
		t.Fatalf("AddReference failed: %v", err)
	}

	ref, err := s.IsReferenced("images/1-aa-a.png")
	if err != nil || !ref {
		t.Fatalf("Expected referenced, got %v / %v", ref, err)
	}

	if err := s.RemoveReference("images/1-aa-a.png"); err != nil {
		t.Fatalf("RemoveReference failed: %v", err)
	}
	ref, err = s.IsReferenced("images/1-aa-a.png")
	if err != nil || ref {
		t.Fatalf("Expected unreferenced after remove, got %v / %v", ref, err)
	}

	// Removing a missing key is not an error
	if err := s.RemoveReference("images/1-aa-a.png"); err != nil {
		t.Errorf("Remove of missing key must succeed, got %v", err)
	}
}
