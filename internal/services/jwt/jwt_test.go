package jwt

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("JWT_ISSUER", "test-issuer")
	os.Exit(m.Run())
}

func TestGenerateAndParse(t *testing.T) {
	srv := NewTokenService()
	ctx := context.Background()

	token, err := srv.GenerateToken(ctx, "user-123")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	claims, err := srv.ParseToken(ctx, token)
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("expected subject %q, got %q", "user-123", claims.Subject)
	}
	if claims.Issuer != "test-issuer" {
		t.Fatalf("expected issuer %q, got %q", "test-issuer", claims.Issuer)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Fatal("expected a future expiration")
	}
}

func TestGetSubjectFromToken(t *testing.T) {
	srv := NewTokenService()
	ctx := context.Background()

	token, err := srv.GenerateToken(ctx, "user-456")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	subject, err := srv.GetSubjectFromToken(ctx, token)
	if err != nil {
		t.Fatalf("extracting subject: %v", err)
	}
	if subject != "user-456" {
		t.Fatalf("expected subject %q, got %q", "user-456", subject)
	}
}

func TestParseErrors(t *testing.T) {
	srv := NewTokenService()
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		_, err := srv.ParseToken(ctx, "")
		if !errors.Is(err, ErrTokenNotFound) {
			t.Fatalf("expected ErrTokenNotFound, got %v", err)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := srv.ParseToken(ctx, "not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewTokenService()
		other.secret = []byte("different-secret")

		token, err := other.GenerateToken(ctx, "user-789")
		if err != nil {
			t.Fatalf("generating token: %v", err)
		}

		_, err = srv.ParseToken(ctx, token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenService()
		expired.expiry = -time.Hour

		token, err := expired.GenerateToken(ctx, "user-789")
		if err != nil {
			t.Fatalf("generating token: %v", err)
		}

		_, err = srv.ParseToken(ctx, token)
		if !errors.Is(err, ErrExpiredToken) {
			t.Fatalf("expected ErrExpiredToken, got %v", err)
		}
	})
}
