package mocks

import (
	"errors"
	"strings"
)

// MockDecryptor is a mock implementation of Decryptor for testing.
// Ciphertexts of the form "enc:<plaintext>" decrypt to <plaintext>.
type MockDecryptor struct {
	DecryptFunc func(ciphertext string) (string, error)
	Calls       []string
}

// NewMockDecryptor creates a new mock decryptor
func NewMockDecryptor() *MockDecryptor {
	return &MockDecryptor{Calls: []string{}}
}

// Decrypt executes the mock function and captures the call
func (m *MockDecryptor) Decrypt(ciphertext string) (string, error) {
	m.Calls = append(m.Calls, ciphertext)
	if m.DecryptFunc != nil {
		return m.DecryptFunc(ciphertext)
	}
	if !strings.HasPrefix(ciphertext, "enc:") {
		return "", errors.New("mock decryptor: not a mock ciphertext")
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}
