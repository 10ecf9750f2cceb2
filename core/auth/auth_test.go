package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := "8a6a1897-9fe9-4a9f-a30c-2f0e67a9b2c3"

	token, err := GenerateToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	got, err := VerifyToken(secret, token)
	if err != nil {
		t.Fatalf("verifying token: %v", err)
	}
	if got != userID {
		t.Fatalf("expected subject %q, got %q", userID, got)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("right-secret", "user", time.Hour)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := VerifyToken("wrong-secret", token); err == nil {
		t.Fatal("expected verification with the wrong secret to fail")
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", "user", -time.Minute)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := VerifyToken("secret", token); err == nil {
		t.Fatal("expected verification of an expired token to fail")
	}
}

func TestTokenGarbage(t *testing.T) {
	for _, token := range []string{"", "garbage", strings.Repeat("a.", 3)} {
		if _, err := VerifyToken("secret", token); err == nil {
			t.Fatalf("expected verification of %q to fail", token)
		}
	}
}
