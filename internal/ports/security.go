package ports

import (
	"time"

	"github.com/google/uuid"
)

// PasswordHasher turns plaintext passwords into stored hashes and checks them.
// Compare returns nil only on a match.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenClaims is what a bearer token binds: the user and the validity window.
// KeyID is filled on verification from the token header.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	KeyID     string
}

// TokenSigner issues and verifies bearer tokens. Verify rejects bad signatures,
// unexpected algorithms and expired tokens.
type TokenSigner interface {
	Sign(claims TokenClaims) (string, error)
	Verify(token string) (TokenClaims, error)
	PublicJWKs() ([]map[string]any, error)
}
