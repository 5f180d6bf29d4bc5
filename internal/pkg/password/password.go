// Package password hashes admin credentials with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password mismatch")

// dummyHash is compared against when the user does not exist so a miss costs
// the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("portfolio-dummy-password"), bcrypt.DefaultCost)

// Hash returns a salted bcrypt hash of plain.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password is empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare checks plain against hash. bcrypt compares in constant time.
func Compare(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}

// CompareDummy burns one comparison's worth of time and always fails.
func CompareDummy(plain string) error {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
	return ErrMismatch
}
