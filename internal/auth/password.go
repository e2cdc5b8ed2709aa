package auth

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// HashPassword returns a bcrypt hash for newly created users.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(h), nil
}

// CheckPassword verifies password against a stored hash. Besides bcrypt it
// accepts the "method$salt$hex" scrypt and pbkdf2 hashes written by the
// previous deployment, so existing accounts keep working.
func CheckPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]

	expected, err := hex.DecodeString(want)
	if err != nil {
		return false
	}

	got, err := deriveLegacy(method, []byte(salt), []byte(password))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, expected) == 1
}

func deriveLegacy(method string, salt, password []byte) ([]byte, error) {
	args := strings.Split(method, ":")
	switch args[0] {
	case "scrypt":
		n, r, p := 32768, 8, 1
		if len(args) == 4 {
			var err error
			if n, err = strconv.Atoi(args[1]); err != nil {
				return nil, err
			}
			if r, err = strconv.Atoi(args[2]); err != nil {
				return nil, err
			}
			if p, err = strconv.Atoi(args[3]); err != nil {
				return nil, err
			}
		}
		return scrypt.Key(password, salt, n, r, p, 64)
	case "pbkdf2":
		if len(args) < 2 {
			return nil, errors.New("pbkdf2 hash without digest")
		}
		var h func() hash.Hash
		switch args[1] {
		case "sha256":
			h = sha256.New
		case "sha512":
			h = sha512.New
		case "sha1":
			h = sha1.New
		default:
			return nil, errors.Errorf("unsupported pbkdf2 digest %q", args[1])
		}
		iterations := 600000
		if len(args) == 3 {
			var err error
			if iterations, err = strconv.Atoi(args[2]); err != nil {
				return nil, err
			}
		}
		return pbkdf2.Key(password, salt, iterations, h().Size(), h), nil
	default:
		return nil, errors.Errorf("unsupported hash method %q", args[0])
	}
}
