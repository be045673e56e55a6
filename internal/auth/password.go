package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the longest password accepted for hashing.
// Longer input is rejected, never silently truncated.
const MaxPasswordLength = 64

var (
	// ErrEmptyPassword is returned when an empty password is submitted for hashing
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong is returned when a password exceeds MaxPasswordLength
	ErrPasswordTooLong = fmt.Errorf("password must not be more than %d characters", MaxPasswordLength)
	// ErrInvalidHashFormat is returned when a stored hash is not a valid bcrypt hash
	ErrInvalidHashFormat = errors.New("invalid password hash format")
)

// HashPassword generates a salted bcrypt hash of the password.
// The plaintext is never logged or stored.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// ComparePassword checks the password against a stored bcrypt hash in
// constant time. A non-matching password returns (false, nil); an error is
// returned only when the stored hash is not parseable as a bcrypt hash.
func ComparePassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
}
