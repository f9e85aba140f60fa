package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCardNumber(t *testing.T) {
	number, err := GenerateCardNumber("400000", 16)
	require.NoError(t, err)
	assert.Len(t, number, 16)
	assert.Equal(t, "400000", number[:6])
	for _, r := range number {
		assert.True(t, r >= '0' && r <= '9')
	}

	_, err = GenerateCardNumber("400000", 4)
	assert.Error(t, err)
	_, err = GenerateCardNumber("400000", 20)
	assert.Error(t, err)
}

func TestFormatCardNumber(t *testing.T) {
	assert.Equal(t, "1234-5678-9012-3456", FormatCardNumber("1234567890123456"))
	// Non-16-digit input is returned untouched.
	assert.Equal(t, "123456", FormatCardNumber("123456"))
}

func TestValidateCardNumber(t *testing.T) {
	valid := []string{
		"1234-5678-9012-3456",
		"1234567890123456",
		"123456789012",
		"1234567890123456789",
	}
	for _, n := range valid {
		assert.True(t, ValidateCardNumber(n), n)
	}

	invalid := []string{
		"",
		"1234",
		"1234-5678-9012-345a",
		"-1234567890123456",
		"1234567890123456-",
		"1234--567890123456",
		"12345678901234567890",
	}
	for _, n := range invalid {
		assert.False(t, ValidateCardNumber(n), n)
	}
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "****-****-****-3456", MaskCardNumber("1234-5678-9012-3456"))
	assert.Equal(t, "************3456", MaskCardNumber("1234567890123456"))
	assert.Equal(t, "123", MaskCardNumber("123"))
}

func TestCardDigest(t *testing.T) {
	a := CardDigest("1234-5678-9012-3456", "secret")
	b := CardDigest("1234-5678-9012-3456", "secret")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, CardDigest("1234-5678-9012-3456", "other"))
	assert.NotEqual(t, a, CardDigest("1234-5678-9012-3457", "secret"))

	raw, err := hex.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	encrypted, err := Encrypt("1234-5678-9012-3456", key)
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "1234")

	decrypted, err := Decrypt(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, "1234-5678-9012-3456", decrypted)

	// Different IVs each call.
	again, err := Encrypt("1234-5678-9012-3456", key)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again)
}

func TestEncryptRejectsBadInput(t *testing.T) {
	_, err := Encrypt("", []byte("0123456789abcdef"))
	assert.Error(t, err)

	_, err = Encrypt("data", []byte("short"))
	assert.Error(t, err)

	_, err = Decrypt("zz", []byte("0123456789abcdef"))
	assert.Error(t, err)

	_, err = Decrypt("", []byte("0123456789abcdef"))
	assert.Error(t, err)
}
