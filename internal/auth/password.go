// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks passwords against stored hashes.
type CredentialVerifier interface {
	// CheckPassword reports whether plain matches hash.
	CheckPassword(plain, hash string) bool

	// DummyCheck does the same work as CheckPassword and always returns
	// false. It is called when the user does not exist so that unknown
	// names and wrong passwords take the same time.
	DummyCheck(plain string) bool
}

// BcryptVerifier is the bcrypt CredentialVerifier.
type BcryptVerifier struct {
	cost      int
	dummyHash []byte
}

var _ CredentialVerifier = (*BcryptVerifier)(nil)

// NewBcryptVerifier creates a verifier whose dummy hash uses cost.
// cost should match the cost of the stored hashes, otherwise DummyCheck is
// measurably faster or slower than a real comparison.
func NewBcryptVerifier(cost int) (*BcryptVerifier, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// The dummy password is random and discarded: nothing can ever match it.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate dummy password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(secret, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dummy hash: %w", err)
	}

	return &BcryptVerifier{cost: cost, dummyHash: hash}, nil
}

// CheckPassword compares plain against a bcrypt hash.
func (v *BcryptVerifier) CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DummyCheck runs a full bcrypt comparison against the dummy hash.
func (v *BcryptVerifier) DummyCheck(plain string) bool {
	_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(plain))
	return false
}

// Hash returns a bcrypt hash of plain at the verifier's cost.
func (v *BcryptVerifier) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Cost returns the bcrypt cost used for new hashes.
func (v *BcryptVerifier) Cost() int {
	return v.cost
}
