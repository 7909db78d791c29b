package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyPassword(t *testing.T) {
	hash, errHash := HashPassword("hunter2")
	require.NoError(t, errHash)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	first, errFirst := HashPassword("same-password")
	require.NoError(t, errFirst)
	second, errSecond := HashPassword("same-password")
	require.NoError(t, errSecond)
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	assert.False(t, VerifyPassword("", "x"))
	assert.False(t, VerifyPassword("$argon2id$v=19$broken", "x"))
	assert.False(t, VerifyPassword("$bcrypt$whatever", "x"))
}
