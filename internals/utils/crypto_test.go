package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef" // 32 bytes for AES-256

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipherText, err := Encrypt("my-totp-secret", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, "my-totp-secret", cipherText)

	plainText, err := Decrypt(cipherText, testKey)
	require.NoError(t, err)
	assert.Equal(t, "my-totp-secret", plainText)
}

func TestDecryptWrongKey(t *testing.T) {
	cipherText, err := Encrypt("my-totp-secret", testKey)
	require.NoError(t, err)

	_, err = Decrypt(cipherText, "fedcba9876543210fedcba9876543210")
	assert.Error(t, err)
}

func TestDecryptTamperedData(t *testing.T) {
	cipherText, err := Encrypt("my-totp-secret", testKey)
	require.NoError(t, err)

	tampered := cipherText[:len(cipherText)-2] + "00"
	if tampered == cipherText {
		tampered = cipherText[:len(cipherText)-2] + "11"
	}
	_, err = Decrypt(tampered, testKey)
	assert.Error(t, err)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	_, err := Decrypt("abcd", testKey)
	assert.Error(t, err)
}
