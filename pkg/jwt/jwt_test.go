package jwt

import (
	"testing"
	"time"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "agentmart")

	token, err := m.GenerateToken("u1", "alice", "buyer")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.Role != "buyer" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestManagerRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour, "agentmart")
	verifier := NewManager("secret-b", time.Hour, "agentmart")

	token, err := issuer.GenerateToken("u1", "alice", "buyer")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := verifier.ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, "agentmart")

	token, err := m.GenerateToken("u1", "alice", "buyer")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := m.ValidateToken(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestManagerRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "agentmart")
	if _, err := m.ValidateToken("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
