package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/project-tracker/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTSignerRoundTrip(t *testing.T) {
	signer, err := NewEphemeralJWTSigner("kid-test")
	require.NoError(t, err)

	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	token, err := signer.Sign(ports.TokenClaims{
		UserID:    userID,
		Email:     "alice@example.com",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "kid-test", claims.KeyID)
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt)
}

func TestJWTSignerRejectsExpiredToken(t *testing.T) {
	signer, err := NewEphemeralJWTSigner("")
	require.NoError(t, err)

	past := time.Now().UTC().Add(-2 * time.Hour)
	token, err := signer.Sign(ports.TokenClaims{
		UserID:    uuid.New(),
		Email:     "a@example.com",
		IssuedAt:  past,
		ExpiresAt: past.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
}

func TestJWTSignerRejectsForeignKey(t *testing.T) {
	issuer, err := NewEphemeralJWTSigner("a")
	require.NoError(t, err)
	verifier, err := NewEphemeralJWTSigner("b")
	require.NoError(t, err)

	now := time.Now().UTC()
	token, err := issuer.Sign(ports.TokenClaims{UserID: uuid.New(), IssuedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)

	_, err = verifier.Verify("not-a-token")
	require.Error(t, err)
}

func TestNewJWTSignerFromPEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPEM := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))

	signer, err := NewJWTSigner("kid-pem", privPEM, pubPEM)
	require.NoError(t, err)

	jwks, err := signer.PublicJWKs()
	require.NoError(t, err)
	require.Len(t, jwks, 1)
	assert.Equal(t, "kid-pem", jwks[0]["kid"])
	assert.Equal(t, "RS256", jwks[0]["alg"])

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherDER, err := x509.MarshalPKIXPublicKey(&other.PublicKey)
	require.NoError(t, err)
	otherPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: otherDER}))
	_, err = NewJWTSigner("kid-pem", privPEM, otherPEM)
	require.Error(t, err)

	_, err = NewJWTSigner("", privPEM, pubPEM)
	require.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	require.NoError(t, h.Compare(hash, "s3cretpass"))
	require.ErrorIs(t, h.Compare(hash, "wrongpass1"), bcrypt.ErrMismatchedHashAndPassword)
}
