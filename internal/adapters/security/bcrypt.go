package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher stores user passwords as bcrypt hashes.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher uses bcrypt.DefaultCost when cost is outside bcrypt's accepted range,
// so a bad BCRYPT_ROUNDS value never disables hashing.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare returns bcrypt.ErrMismatchedHashAndPassword for a wrong password
// and a wrapped error when the stored hash itself is unreadable.
func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil || err == bcrypt.ErrMismatchedHashAndPassword {
		return err
	}
	return fmt.Errorf("compare password hash: %w", err)
}
