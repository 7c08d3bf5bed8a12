package credential

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptCredential signals a stored hash that bcrypt cannot parse.
var ErrCorruptCredential = errors.New("stored credential is corrupt")

// Hash derives a salted bcrypt hash from a plaintext password.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares a plaintext password against a stored hash. A mismatch is
// (false, nil); only a malformed hash is an error.
func Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrCorruptCredential
	}
}
