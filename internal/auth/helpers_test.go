// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/gatekeeper/internal/config"
	"github.com/tomtom215/gatekeeper/internal/models"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func newTestCodec(t *testing.T) *JWTManager {
	t.Helper()

	codec, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return codec
}

// mustToken encodes claims for role, valid for an hour.
func mustToken(t *testing.T, codec TokenCodec, role string) string {
	t.Helper()

	token, err := codec.Encode(Claims{
		ClaimID:      "u-1",
		ClaimName:    "alice",
		ClaimRole:    role,
		ClaimExpires: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return token
}

// mustHash hashes with bcrypt.MinCost to keep tests fast.
func mustHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	return string(hash)
}

// fakeStore is an in-memory UserStore.
type fakeStore struct {
	users map[string]*models.StoredUser
	err   error
}

func (s *fakeStore) FindByName(_ context.Context, name string) (*models.StoredUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[name]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// countingVerifier records how many comparisons of each kind ran.
type countingVerifier struct {
	inner CredentialVerifier
	real  atomic.Int32
	dummy atomic.Int32
}

func (v *countingVerifier) CheckPassword(plain, hash string) bool {
	v.real.Add(1)
	return v.inner.CheckPassword(plain, hash)
}

func (v *countingVerifier) DummyCheck(plain string) bool {
	v.dummy.Add(1)
	return v.inner.DummyCheck(plain)
}

func newCountingVerifier(t *testing.T) *countingVerifier {
	t.Helper()

	inner, err := NewBcryptVerifier(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptVerifier() error = %v", err)
	}
	return &countingVerifier{inner: inner}
}

// newTestUsers returns a store holding alice (admin) and bob (user).
func newTestUsers(t *testing.T) *fakeStore {
	t.Helper()

	return &fakeStore{users: map[string]*models.StoredUser{
		"alice": {
			ID:           "u-1",
			Name:         "alice",
			PasswordHash: mustHash(t, "alice-password"),
			Role:         "admin",
			Extra:        map[string]string{"email": "alice@example.com", "team": "platform"},
		},
		"bob": {
			ID:           "u-2",
			Name:         "bob",
			PasswordHash: mustHash(t, "bob-password"),
			Role:         "user",
		},
	}}
}
