package util

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrDecrypt marks a payload that cannot be opened under the current key:
// wrong or rotated key, or a corrupted blob.
var ErrDecrypt = errors.New("decryption failed")

// Cipher seals profile payloads with XChaCha20-Poly1305 under one
// process-wide key. The key is read-only after construction.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a cipher from a base64 key. An empty key generates a fresh
// one for this process, which orphans every previously stored row; that is
// logged loudly so operators cannot miss it.
func NewCipher(base64Key string) (*Cipher, error) {
	var key []byte
	if base64Key == "" {
		key = make([]byte, chacha20poly1305.KeySize)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("failed to generate encryption key: %w", err)
		}
		log.Println("WARNING: PROFILE_ENCRYPTION_KEY not set; generated an ephemeral key. Profiles stored by previous runs are now permanently unreadable.")
	} else {
		decoded, err := base64.StdEncoding.DecodeString(base64Key)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		if len(decoded) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("encryption key must be %d bytes, got %d", chacha20poly1305.KeySize, len(decoded))
		}
		key = decoded
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// GenerateKey returns a fresh base64 key for PROFILE_ENCRYPTION_KEY.
func GenerateKey() (string, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt seals plaintext with a random nonce prefix.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a sealed blob. Any failure surfaces as ErrDecrypt so callers
// can distinguish "unreadable" from "never existed".
func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, ErrDecrypt
	}
	nonce, sealed := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
