// Package hash wraps password hashing so callers never touch the digest
// scheme directly.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrFailedToHashPassword = errors.New("failed to hash password")

type HashService struct {
	cost int
}

func NewHashService() *HashService {
	return &HashService{
		cost: bcrypt.DefaultCost,
	}
}

// HashPassword derives a digest from the plaintext password.
func (hs *HashService) HashPassword(password string) ([]byte, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), hs.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return digest, nil
}

// CheckPassword reports whether the plaintext password matches the digest.
func (hs *HashService) CheckPassword(password string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(password)) == nil
}
