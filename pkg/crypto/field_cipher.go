package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrMalformedCiphertext is returned when a ciphertext cannot be decoded or authenticated
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// ciphertextPrefix versions the envelope so keys can be rotated later
const ciphertextPrefix = "v1:"

// FieldCipher encrypts individual sensitive fields (bank account numbers)
// for storage at rest with XChaCha20-Poly1305.
// Envelope: "v1:" + base64url(nonce || sealed).
type FieldCipher struct {
	key []byte
}

// NewFieldCipher creates a cipher from a 32-byte key
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("field cipher key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &FieldCipher{key: k}, nil
}

// NewFieldCipherFromHex creates a cipher from a hex-encoded 32-byte key
func NewFieldCipherFromHex(hexKey string) (*FieldCipher, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("failed to decode field cipher key: %w", err)
	}
	return NewFieldCipher(key)
}

// GenerateKey returns a random hex-encoded key suitable for NewFieldCipherFromHex
func GenerateKey() (string, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Encrypt seals plaintext into a storable envelope
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return ciphertextPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt
func (c *FieldCipher) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, ciphertextPrefix) {
		return "", fmt.Errorf("%w: unknown envelope version", ErrMalformedCiphertext)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(ciphertext, ciphertextPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformedCiphertext)
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrMalformedCiphertext)
	}
	return string(plaintext), nil
}
