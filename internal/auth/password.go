package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsHashed reports whether a stored value is a bcrypt hash rather than a
// legacy plaintext password.
func IsHashed(stored string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(stored, prefix) {
			_, err := bcrypt.Cost([]byte(stored))
			return err == nil
		}
	}
	return false
}

// NeedsRehash reports whether a valid hash was made with a lower cost than
// wanted. Plaintext values also need rehashing.
func NeedsRehash(stored string, cost int) bool {
	if !IsHashed(stored) {
		return true
	}
	c, err := bcrypt.Cost([]byte(stored))
	return err != nil || c < cost
}
