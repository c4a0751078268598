package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// KeySize is the length in bytes of the symmetric data-at-rest key.
const KeySize = 32

// tokenVersion prefixes every sealed blob so the format can evolve without
// re-encrypting stored data.
const tokenVersion byte = 0x01

var (
	// ErrInvalidKeySize indicates the supplied key material has the wrong length.
	ErrInvalidKeySize = errors.New("security: invalid key size")
	// ErrDecryptFailed indicates the ciphertext was tampered with, truncated,
	// or sealed under a different key. No partial plaintext is ever returned.
	ErrDecryptFailed = errors.New("security: ciphertext authentication failed")
)

// Cipher seals and opens user data with AES-256-GCM. Sealed blobs are
// self-describing: version byte, nonce, then the authenticated ciphertext.
// The caller never tracks nonces.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from raw 32-byte key material.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("security: init cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("security: init gcm: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("security: generate nonce: %w", err)
	}

	out := make([]byte, 0, 1+len(nonce)+len(plaintext)+c.aead.Overhead())
	out = append(out, tokenVersion)
	out = append(out, nonce...)

	return c.aead.Seal(out, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a sealed blob produced by Encrypt.
func (c *Cipher) Decrypt(token []byte) (string, error) {
	minLen := 1 + c.aead.NonceSize() + c.aead.Overhead()
	if len(token) < minLen {
		return "", ErrDecryptFailed
	}
	if token[0] != tokenVersion {
		return "", ErrDecryptFailed
	}

	nonce := token[1 : 1+c.aead.NonceSize()]
	plain, err := c.aead.Open(nil, nonce, token[1+c.aead.NonceSize():], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plain), nil
}
