package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}

func TestVerificationToken(t *testing.T) {
	a, err := NewVerificationToken(time.Hour)
	require.NoError(t, err)
	b, err := NewVerificationToken(time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Equal(t, HashToken(a.Raw), a.Hash)
	assert.Len(t, a.Hash, 64)
	assert.NotContains(t, a.Hash, a.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), a.Exp, 5*time.Second)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashToken(""))
	assert.NotEqual(t, HashToken("a"), HashToken("b"))
}
