package database

import (
	"database/sql"
	"fmt"
	"time"
)

// RefStore tracks which storage keys are referenced by live resources.
// The orphan sweep deletes stored objects whose keys do not appear here.
type RefStore struct {
	db *sql.DB
}

// NewRefStore creates a reference store backed by db.
func NewRefStore(db *sql.DB) *RefStore {
	return &RefStore{db: db}
}

// AddReference records that a resource references the given storage key.
// Re-registering an existing key updates its owning resource.
func (s *RefStore) AddReference(storageKey, resourceKind string, resourceID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO file_refs (storage_key, resource_kind, resource_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(storage_key) DO UPDATE SET
		     resource_kind = excluded.resource_kind,
		     resource_id   = excluded.resource_id`,
		storageKey, resourceKind, resourceID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to add file reference: %w", err)
	}
	return nil
}

// RemoveReference drops the reference for the given storage key. Removing
// a key with no reference is not an error.
func (s *RefStore) RemoveReference(storageKey string) error {
	if _, err := s.db.Exec(`DELETE FROM file_refs WHERE storage_key = ?`, storageKey); err != nil {
		return fmt.Errorf("failed to remove file reference: %w", err)
	}
	return nil
}

// ReferencedKeys returns the set of all storage keys currently referenced.
func (s *RefStore) ReferencedKeys() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT storage_key FROM file_refs`)
	if err != nil {
		return nil, fmt.Errorf("failed to query file references: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan file reference: %w", err)
		}
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file references: %w", err)
	}
	return keys, nil
}

// IsReferenced reports whether any resource references the storage key.
func (s *RefStore) IsReferenced(storageKey string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM file_refs WHERE storage_key = ? LIMIT 1`, storageKey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file reference: %w", err)
	}
	return true, nil
}
