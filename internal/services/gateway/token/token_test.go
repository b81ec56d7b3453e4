package token

import (
	"testing"
	"time"

	apperrors "github.com/blizx/zenith/internal/platform/errors"
)

func TestMintAndVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	minter, err := New([]byte("test-secret"), time.Hour, func() time.Time { return now })
	if err != nil {
		t.Fatalf("new minter: %v", err)
	}

	raw, err := minter.Mint("user-1", "ada@example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := minter.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
	if claims.Email != "ada@example.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry at issue+1h, got %v", claims.ExpiresAt)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	current := issued
	minter, err := New([]byte("test-secret"), time.Hour, func() time.Time { return current })
	if err != nil {
		t.Fatalf("new minter: %v", err)
	}

	raw, err := minter.Mint("user-1", "ada@example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	current = issued.Add(2 * time.Hour)
	_, err = minter.Verify(raw)
	if apperrors.CodeOf(err) != apperrors.CodeAuthSessionExpired {
		t.Fatalf("expected session expired code, got %v", err)
	}
}

func TestVerifyRejectsWrongSecretAndGarbage(t *testing.T) {
	minter, err := New([]byte("secret-a"), time.Hour, nil)
	if err != nil {
		t.Fatalf("new minter: %v", err)
	}
	other, err := New([]byte("secret-b"), time.Hour, nil)
	if err != nil {
		t.Fatalf("new minter: %v", err)
	}

	raw, err := other.Mint("user-1", "ada@example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := minter.Verify(raw); apperrors.CodeOf(err) != apperrors.CodeAuthSessionMissing {
		t.Fatalf("expected session missing code for foreign token, got %v", err)
	}
	if _, err := minter.Verify("not-a-token"); err == nil {
		t.Fatal("expected error for garbage token")
	}
	if _, err := minter.Verify(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(nil, time.Hour, nil); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := New([]byte{}, time.Hour, nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
