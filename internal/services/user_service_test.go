package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/constants"
	"gatehouse/internal/database"
	"gatehouse/internal/logger"
	"gatehouse/internal/token"
)

func testUserService(t *testing.T) *UserService {
	t.Helper()
	db, err := database.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewWithOptions(logger.Options{Level: logger.LevelError})
	codec := token.NewCodec("test-secret", time.Hour)
	// Minimum cost keeps the bcrypt rounds cheap in tests
	return NewUserService(database.NewUserStore(db), codec, 4, log)
}

// =============================================================================
// Register
// =============================================================================

func TestRegister_CreatesUserWithCredential(t *testing.T) {
	svc := testUserService(t)

	user, credential, err := svc.Register("Anna@Example.com", "Anna", "long-enough-password")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("Expected assigned user ID")
	}
	if user.Email != "anna@example.com" {
		t.Errorf("Expected lowercased email, got %s", user.Email)
	}
	if user.Role != constants.RoleUser {
		t.Errorf("New accounts must get the user role, got %s", user.Role)
	}
	if credential == "" {
		t.Error("Expected issued credential")
	}
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	svc := testUserService(t)

	if _, _, err := svc.Register("anna@example.com", "Anna", "long-enough-password"); err != nil {
		t.Fatalf("First Register failed: %v", err)
	}
	_, _, err := svc.Register("ANNA@example.com", "Other", "another-password-1")
	if !errors.Is(err, ErrAuthUserExists) {
		t.Errorf("Expected ErrAuthUserExists, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := testUserService(t)

	tests := []struct {
		name     string
		email    string
		username string
		password string
		expected error
	}{
		{"short_password", "a@b.se", "A", "short", ErrAuthPasswordTooWeak},
		{"empty_email", "", "A", "long-enough-password", ErrInvalidRequest},
		{"email_without_at", "not-an-email", "A", "long-enough-password", ErrInvalidRequest},
		{"empty_name", "a@b.se", "", "long-enough-password", ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Register(tt.email, tt.username, tt.password); !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

// =============================================================================
// Login — unknown email and wrong password are indistinguishable
// =============================================================================

func TestLogin_Success(t *testing.T) {
	svc := testUserService(t)
	if _, _, err := svc.Register("anna@example.com", "Anna", "correct-horse-battery"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, credential, err := svc.Login("anna@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Email != "anna@example.com" {
		t.Errorf("Unexpected user: %+v", user)
	}
	if credential == "" {
		t.Error("Expected issued credential")
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc := testUserService(t)
	if _, _, err := svc.Register("anna@example.com", "Anna", "correct-horse-battery"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, wrongPassword := svc.Login("anna@example.com", "wrong-password")
	_, _, unknownEmail := svc.Login("nobody@example.com", "whatever-password")

	if !errors.Is(wrongPassword, ErrAuthInvalidCredentials) {
		t.Errorf("Expected ErrAuthInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrAuthInvalidCredentials) {
		t.Errorf("Expected ErrAuthInvalidCredentials for unknown email, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Error("Wrong password and unknown email must produce identical errors")
	}
}

func TestLogin_UnknownEmailBurnsFullCompare(t *testing.T) {
	svc := testUserService(t)

	// The dummy hash must be a real bcrypt hash so the unknown-email path
	// performs the same comparison work as a wrong password.
	if svc.dummyHash == "" {
		t.Fatal("Expected dummy hash to be prepared at construction")
	}
	if err := auth.VerifyPassword("any-password-at-all", svc.dummyHash); err == nil {
		t.Error("Dummy hash must never verify a password")
	}

	if _, _, err := svc.Login("nobody@example.com", "whatever-password"); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Errorf("Expected ErrAuthInvalidCredentials, got %v", err)
	}
}

// =============================================================================
// GetByID
// =============================================================================

func TestGetByID(t *testing.T) {
	svc := testUserService(t)
	user, _, err := svc.Register("anna@example.com", "Anna", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := svc.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("Expected %s, got %s", user.Email, got.Email)
	}

	if _, err := svc.GetByID(99999); !errors.Is(err, ErrAuthUserNotFound) {
		t.Errorf("Expected ErrAuthUserNotFound, got %v", err)
	}
}
