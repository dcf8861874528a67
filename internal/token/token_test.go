package token

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-credentials"

// =============================================================================
// Issue / Verify round trip
// =============================================================================

func TestIssueVerify_RoundTrip(t *testing.T) {
	codec := NewCodec(testSecret, 7*24*time.Hour)

	credential, err := codec.Issue(42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if credential == "" {
		t.Fatal("Issue returned empty credential")
	}

	userID, issuedAt, err := codec.Verify(credential)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("Expected user ID 42, got %d", userID)
	}
	if time.Since(issuedAt) > time.Minute {
		t.Errorf("IssuedAt too far in the past: %v", issuedAt)
	}
}

func TestIssue_DistinctCredentialsPerUser(t *testing.T) {
	codec := NewCodec(testSecret, time.Hour)

	c1, err := codec.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	c2, err := codec.Issue(2)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if c1 == c2 {
		t.Error("Credentials for different users must differ")
	}
}

// =============================================================================
// Verify — failure modes all collapse to ErrInvalidCredential
// =============================================================================

func TestVerify_TamperedCredential(t *testing.T) {
	codec := NewCodec(testSecret, time.Hour)

	credential, err := codec.Issue(7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the payload segment
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, _, err := codec.Verify(tampered); err != ErrInvalidCredential {
		t.Errorf("Expected ErrInvalidCredential for tampered credential, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewCodec(testSecret, time.Hour)
	verifier := NewCodec("a-completely-different-secret", time.Hour)

	credential, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, err := verifier.Verify(credential); err != ErrInvalidCredential {
		t.Errorf("Expected ErrInvalidCredential for wrong secret, got %v", err)
	}
}

func TestVerify_ExpiredCredential(t *testing.T) {
	codec := NewCodec(testSecret, -time.Hour)

	credential, err := codec.Issue(7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, err := codec.Verify(credential); err != ErrInvalidCredential {
		t.Errorf("Expected ErrInvalidCredential for expired credential, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	codec := NewCodec(testSecret, time.Hour)

	inputs := []string{
		"",
		"not-a-credential",
		"a.b.c",
		"....",
	}
	for _, input := range inputs {
		if _, _, err := codec.Verify(input); err != ErrInvalidCredential {
			t.Errorf("Verify(%q): expected ErrInvalidCredential, got %v", input, err)
		}
	}
}
