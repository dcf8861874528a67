// Package database manages the SQLite connection and the repositories
// built on top of it: user accounts and the upload reference registry.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"gatehouse/internal/constants"
)

// OpenDatabase opens (creating if needed) the SQLite database at path,
// applies the connection pragmas and ensures the schema exists.
func OpenDatabase(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range constants.SQLitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	if err := InitDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDatabase creates the schema if it does not exist yet.
func InitDatabase(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
