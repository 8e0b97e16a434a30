package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *FieldCipher {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewFieldCipherFromHex(key)
	require.NoError(t, err)
	return c
}

func TestFieldCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	ciphertext, err := c.Encrypt("987654321")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ciphertext, "v1:"))
	assert.NotContains(t, ciphertext, "987654321")

	plaintext, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "987654321", plaintext)
}

func TestFieldCipher_UniqueNonces(t *testing.T) {
	c := newTestCipher(t)

	a, err := c.Encrypt("123")
	require.NoError(t, err)
	b, err := c.Encrypt("123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFieldCipher_WrongKey(t *testing.T) {
	ciphertext, err := newTestCipher(t).Encrypt("987654321")
	require.NoError(t, err)

	_, err = newTestCipher(t).Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestFieldCipher_Malformed(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"missing prefix", "abc"},
		{"bad base64", "v1:***"},
		{"too short", "v1:AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.ciphertext)
			assert.ErrorIs(t, err, ErrMalformedCiphertext)
		})
	}
}

func TestNewFieldCipher_KeyLength(t *testing.T) {
	_, err := NewFieldCipher([]byte("short"))
	assert.ErrorContains(t, err, "must be 32 bytes")

	_, err = NewFieldCipherFromHex("zz")
	assert.ErrorContains(t, err, "failed to decode")
}
