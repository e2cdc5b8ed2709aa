package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

func legacyPBKDF2(t *testing.T, password, salt string, iterations int) string {
	t.Helper()
	return hex.EncodeToString(pbkdf2.Key([]byte(password), []byte(salt), iterations, 32, sha256.New))
}

func legacyScrypt(t *testing.T, password, salt string, n, r, p int) string {
	t.Helper()
	key, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, 64)
	require.NoError(t, err)
	return hex.EncodeToString(key)
}
