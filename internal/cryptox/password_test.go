package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded := HashPassword([]byte("correct horse battery staple"))
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := VerifyPassword(encoded, []byte("correct horse battery staple"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(encoded, []byte("wrong"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	a := HashPassword([]byte("pw"))
	b := HashPassword([]byte("pw"))
	assert.NotEqual(t, a, b)
}

func TestVerifyMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$salt",        // missing hash part
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", // wrong algorithm
		"$argon2id$v=19$m=65536,t=1,p=4$!!$aGFzaA",   // bad base64
	} {
		_, err := VerifyPassword(encoded, []byte("pw"))
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}
