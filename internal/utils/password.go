package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is used when a caller passes a non-positive cost.
const DefaultBcryptCost = 10

// HashPassword returns a salted bcrypt hash of plain using the given cost.
// Passwords longer than 72 bytes are rejected by bcrypt.
func HashPassword(plain string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.  An empty or
// malformed hash never matches.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
