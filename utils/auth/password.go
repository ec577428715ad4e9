package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort = errors.New("password needs at least 8 characters")
	ErrPasswordMismatch = errors.New("wrong password")
)

// MinPasswordLength is the shortest password accepted at registration and on
// password change
const MinPasswordLength = 8

// hashCost trades login latency for brute-force resistance. 12 keeps a single
// hash around a quarter second on current hardware.
const hashCost = 12

// HashPassword returns the bcrypt hash to store for a password. The length
// floor is enforced here too so no caller can persist a shorter one.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a stored hash against a login attempt. A mismatch
// comes back as ErrPasswordMismatch; any other error means a corrupt hash.
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// IsPasswordValid reports whether a candidate password meets the length floor
func IsPasswordValid(password string) bool {
	return len(password) >= MinPasswordLength
}
