// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/gatekeeper/internal/models"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong
// password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid name or password")

// TokenEnvelope is a freshly minted token and the claims inside it.
type TokenEnvelope struct {
	Token     string
	Claims    Claims
	ExpiresAt time.Time
}

// LoginConfig holds the login settings taken from security config.
type LoginConfig struct {
	// Validity is how long issued tokens stay valid.
	Validity time.Duration
	// ExtraFields are StoredUser.Extra keys copied into the claims.
	ExtraFields []string
}

// LoginService verifies credentials and mints tokens.
type LoginService struct {
	store    UserStore
	verifier CredentialVerifier
	codec    TokenCodec
	cfg      LoginConfig
	now      func() time.Time
}

// NewLoginService creates a LoginService.
func NewLoginService(store UserStore, verifier CredentialVerifier, codec TokenCodec, cfg LoginConfig) *LoginService {
	return &LoginService{
		store:    store,
		verifier: verifier,
		codec:    codec,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Login checks creds and returns a signed token.
//
// Exactly one password comparison runs per call: against the stored hash when
// the user exists, against the verifier's dummy hash when it does not. Store
// and signing failures are returned wrapped; callers map them to 500.
func (s *LoginService) Login(ctx context.Context, creds models.LoginRequest) (*TokenEnvelope, error) {
	start := time.Now()

	user, err := s.store.FindByName(ctx, creds.Name)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		RecordLogin(LoginOutcomeError, time.Since(start))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		s.verifier.DummyCheck(creds.Password)
		RecordLogin(LoginOutcomeInvalidCredentials, time.Since(start))
		return nil, ErrInvalidCredentials
	}
	if !s.verifier.CheckPassword(creds.Password, user.PasswordHash) {
		RecordLogin(LoginOutcomeInvalidCredentials, time.Since(start))
		return nil, ErrInvalidCredentials
	}

	claims := s.claimsFor(user)
	token, err := s.codec.Encode(claims)
	if err != nil {
		RecordLogin(LoginOutcomeError, time.Since(start))
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}

	RecordLogin(LoginOutcomeSuccess, time.Since(start))
	return &TokenEnvelope{
		Token:     token,
		Claims:    claims,
		ExpiresAt: claims.ExpiresAt(),
	}, nil
}

func (s *LoginService) claimsFor(user *models.StoredUser) Claims {
	claims := Claims{
		ClaimID:   user.ID,
		ClaimName: user.Name,
		ClaimRole: user.Role,
	}
	for _, field := range s.cfg.ExtraFields {
		if _, reserved := claims[field]; reserved || field == ClaimExpires {
			continue
		}
		if v, ok := user.Extra[field]; ok {
			claims[field] = v
		}
	}
	claims[ClaimExpires] = s.now().Add(s.cfg.Validity).Unix()
	return claims
}
