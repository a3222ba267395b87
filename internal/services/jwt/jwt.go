// Package jwt issues and verifies the signed, time-limited identity
// tokens handed out at registration/login and presented on every
// authenticated request.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token has expired")
	ErrTokenNotFound    = errors.New("jwt: token not found")
	ErrInvalidClaims    = errors.New("jwt: invalid claims")
	ErrTokenNotYetValid = errors.New("jwt: token not yet valid")
)

// TokenService creates and validates identity tokens. Create one
// instance and reuse it throughout the application.
type TokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	parser *jwt.Parser
}

// NewTokenService reads its configuration from environment variables:
//   - JWT_SECRET: signing key (required in production)
//   - JWT_ISSUER: token issuer name (optional, default: "contactflix")
func NewTokenService() *TokenService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-change-in-production!"
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "contactflix"
	}

	parser := jwt.NewParser(
		// Only accept HS256 - prevents "algorithm confusion" attacks
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),

		// Reject tokens without an expiration time
		jwt.WithExpirationRequired(),

		// Enforce strict base64 encoding
		jwt.WithStrictDecoding(),

		jwt.WithIssuer(issuer),
	)

	return &TokenService{
		secret: []byte(secret),
		expiry: time.Hour,
		issuer: issuer,
		parser: parser,
	}
}

// GenerateToken creates a signed token whose subject is the user's ID,
// valid for one hour.
func (s *TokenService) GenerateToken(ctx context.Context, subject string) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("creating token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token string and returns its claims.
func (s *TokenService) ParseToken(ctx context.Context, tokenString string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenNotFound
	}

	claims := &jwt.RegisteredClaims{}

	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, convertError(err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetSubjectFromToken extracts the subject (the user ID) from a token.
func (s *TokenService) GetSubjectFromToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.ParseToken(ctx, tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// convertError transforms jwt library errors into our custom errors.
func convertError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", ErrTokenNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: token is malformed", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: signature is invalid", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
