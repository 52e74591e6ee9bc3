package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameEmpty    = errors.New("username must not be empty")
	ErrUsernameTooLong  = errors.New("username must be at most 32 characters")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
)

const (
	maxUsernameLen = 32
	minPasswordLen = 4
)

// Passwords hashes and verifies passwords with bcrypt.
type Passwords struct {
	cost int
}

func NewPasswords(cost int) *Passwords {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Passwords{cost: cost}
}

// Hash hashes a plain text password. This is CPU-heavy at cost 12 and must
// not run on the coordinator goroutine.
func (p *Passwords) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Compare checks a plain text password against a stored hash.
func (p *Passwords) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateCredentials checks registration input before it reaches the store.
func ValidateCredentials(username, password string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if len(username) > maxUsernameLen {
		return ErrUsernameTooLong
	}
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}
