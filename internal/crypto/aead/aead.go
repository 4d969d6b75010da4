// Package aead implements AES-256-GCM authenticated encryption: a fresh
// key and nonce are generated per call, and the nonce is prepended to the
// returned ciphertext so Decrypt is self-contained given only the key.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/zzenonn/shardvault/internal/apperrors"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// Encrypt generates a fresh 256-bit key and 96-bit nonce, and returns the
// key alongside nonce‖ciphertext_with_tag.
func Encrypt(plaintext []byte) (key []byte, blob []byte, err error) {
	key = make([]byte, KeySize)
	if _, err = io.ReadFull(rand.Reader, key); err != nil {
		return nil, nil, fmt.Errorf("failed to generate key: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	blob = append(nonce, ciphertext...)
	return key, blob, nil
}

// Decrypt splits the nonce prefix off blob and verifies/decrypts the
// remaining ciphertext-with-tag using key. Returns ErrAuthFailed on tamper.
func Decrypt(key, blob []byte) ([]byte, error) {
	if len(blob) < NonceSize {
		return nil, apperrors.ErrAuthFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, ciphertext := blob[:NonceSize], blob[NonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, apperrors.ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aead: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
