package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{}

	hash, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.NotContains(t, hash, "correct horse battery")

	assert.True(t, h.Verify(hash, "correct horse battery"))
	assert.False(t, h.Verify(hash, "wrong password"))
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	h := BcryptHasher{}
	// a malformed stored hash is a rejection, not a crash
	assert.False(t, h.Verify("not-a-bcrypt-hash", "anything"))
	assert.False(t, h.Verify("", "anything"))
}

func TestBcryptHasherDistinctSalts(t *testing.T) {
	h := BcryptHasher{}
	a, err := h.Hash("password123")
	require.NoError(t, err)
	b, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
