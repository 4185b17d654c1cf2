package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestGenerateHash_RoundTrip(t *testing.T) {
	hashed, err := GenerateHash("s3cret-passphrase")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "$argon2id$v=19$"))

	ok, err := VerifyHash(hashed, "s3cret-passphrase")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyHash(hashed, "wrong-passphrase")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateHash_SaltsAreUnique(t *testing.T) {
	first, err := GenerateHash("same input")
	require.NoError(t, err)
	second, err := GenerateHash("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyHash_ParamsReadFromEncoding(t *testing.T) {
	// a hash minted with older, cheaper cost parameters still verifies;
	// the encoded string carries everything VerifyHash needs
	salt := []byte("0123456789abcdef")
	hash := argon2.IDKey([]byte("portable"), salt, 1, 32*1024, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		32*1024, 1, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))

	ok, err := VerifyHash(encoded, "portable")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyHash_MalformedInput(t *testing.T) {
	_, err := VerifyHash("not-a-hash", "anything")
	assert.Error(t, err)

	_, err = VerifyHash("$argon2id$v=19$m=bogus$salt$hash", "anything")
	assert.Error(t, err)
}
