package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost matches the work factor the storefront has always used.
const DefaultPasswordCost = 10

// PasswordHasher hashes and verifies account passwords with bcrypt. The salt is
// generated per call and embedded in the encoded hash.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = DefaultPasswordCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Verify reports whether password matches hashedPassword. A malformed hash is a
// mismatch, not an error.
func (h *PasswordHasher) Verify(password, hashedPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}
