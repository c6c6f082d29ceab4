package auth

import (
	"testing"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "64f1b7a2c9e77a0012345678"

	tok, err := GenerateToken(userID, secret)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	gotUserID, err := UserIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("UserIDFromToken error: %v", err)
	}
	if gotUserID != userID {
		t.Fatalf("userID mismatch: got %q want %q", gotUserID, userID)
	}
}

func TestGenerateToken_DistinctPerCall(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	first, err := GenerateToken("u1", secret)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	second, err := GenerateToken("u1", secret)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if first == second {
		t.Fatalf("two tokens for the same user must differ")
	}
}

func TestUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := UserIDFromToken(tok, []byte("wrong-secret")); err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestUserIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	if _, err := UserIDFromToken("not.a.jwt", []byte("k")); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
