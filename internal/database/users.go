package database

import (
	"database/sql"
	"fmt"
	"time"

	"gatehouse/internal/auth"
)

// UserRecord is a user row including the password hash. It never leaves
// this package except through the login path.
type UserRecord struct {
	auth.User
	PasswordHash string
}

// UserStore provides account persistence. It implements auth.UserLookup.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a user store backed by db.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a new account and returns it with the assigned ID.
func (s *UserStore) CreateUser(email, name, passwordHash, role string) (*auth.User, error) {
	now := time.Now().Unix()
	result, err := s.db.Exec(
		`INSERT INTO users (email, name, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		email, name, passwordHash, role, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted user id: %w", err)
	}

	return &auth.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FindUserByID returns the account with the given ID, or (nil, nil) when
// no such account exists.
func (s *UserStore) FindUserByID(id int64) (*auth.User, error) {
	row := s.db.QueryRow(
		`SELECT id, email, name, role, created_at, updated_at FROM users WHERE id = ?`, id)

	var u auth.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	return &u, nil
}

// FindUserByEmail returns the account with the given email including its
// password hash, or (nil, nil) when no such account exists.
func (s *UserStore) FindUserByEmail(email string) (*UserRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, email, name, password_hash, role, created_at, updated_at
		 FROM users WHERE email = ?`, email)

	var rec UserRecord
	err := row.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.PasswordHash, &rec.Role,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return &rec, nil
}
