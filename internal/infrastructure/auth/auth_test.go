package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiolab/curio-hub/internal/domain/shared"
)

func TestJWTManager_IssueVerifyRoundtrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, "curiolab")

	token, err := m.Issue("user-1", "kid@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, email, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "kid@example.com", email)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, "curiolab")

	token, err := m.Issue("user-1", "kid@example.com")
	require.NoError(t, err)

	_, _, err = m.Verify(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
	assert.True(t, shared.IsUnauthorized(err))
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour, "curiolab")
	verifier := NewJWTManager("secret-b", time.Hour, "curiolab")

	token, err := issuer.Issue("user-1", "kid@example.com")
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestJWTManager_RejectsWrongIssuer(t *testing.T) {
	a := NewJWTManager("test-secret", time.Hour, "curiolab")
	b := NewJWTManager("test-secret", time.Hour, "someone-else")

	token, err := a.Issue("user-1", "kid@example.com")
	require.NoError(t, err)

	_, _, err = b.Verify(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, "curiolab")

	_, _, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(4) // minimum cost keeps the test fast

	hash, err := h.Hash("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.NoError(t, h.Verify(hash, "supersecret"))
	assert.Error(t, h.Verify(hash, "wrongpassword"))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	h := NewBcryptHasher(4)

	first, err := h.Hash("supersecret")
	require.NoError(t, err)
	second, err := h.Hash("supersecret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
