package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// marker prefixes every ciphertext so stored values are self-describing and
// a plaintext value can never be mistaken for an encrypted one.
const marker = "enc::v1::"

var (
	ErrInvalidKey = errors.New("field encryption key must be 32 hex-encoded bytes")

	// ErrCipherMismatch indicates a wrong key or a malformed marker. It is
	// distinguishable from other failures because decryption errors must
	// never be silently treated as empty data.
	ErrCipherMismatch = errors.New("ciphertext does not match field encryption key")
)

// FieldCipher encrypts individual sensitive fields with AES-256-GCM. It is
// applied by the candidate repository to diagnoses, medical history,
// accommodation needs and the therapist reference, and to nothing else.
type FieldCipher struct {
	aead cipher.AEAD
}

func NewFieldCipher(hexKey string) (*FieldCipher, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &FieldCipher{aead: aead}, nil
}

func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return marker + base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *FieldCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if !strings.HasPrefix(ciphertext, marker) {
		return "", ErrCipherMismatch
	}

	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, marker))
	if err != nil {
		return "", ErrCipherMismatch
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", ErrCipherMismatch
	}

	nonce, payload := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, payload, nil)
	if err != nil {
		return "", ErrCipherMismatch
	}

	return string(plaintext), nil
}

func IsEncrypted(s string) bool {
	return strings.HasPrefix(s, marker)
}
