package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)
	return c
}

func TestCipherRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	plaintext := []byte(`{"name":"John Smith"}`)
	sealed, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestCipherNonceVaries(t *testing.T) {
	c := newTestCipher(t)

	a, err := c.Encrypt([]byte("same input"))
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("same input"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWrongKey(t *testing.T) {
	sealed, err := newTestCipher(t).Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestCipher(t).Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptGarbage(t *testing.T) {
	c := newTestCipher(t)

	_, err := c.Decrypt([]byte("too short"))
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = c.Decrypt(make([]byte, 64))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	_, err := NewCipher("not base64!!!")
	assert.Error(t, err)

	_, err = NewCipher("c2hvcnQ=") // decodes to 5 bytes
	assert.Error(t, err)
}

func TestNewCipherEmptyKeyGeneratesEphemeral(t *testing.T) {
	c, err := NewCipher("")
	require.NoError(t, err)

	sealed, err := c.Encrypt([]byte("hello"))
	require.NoError(t, err)
	opened, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), opened)
}
