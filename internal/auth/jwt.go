// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/gatekeeper/internal/config"
)

// Token decode errors. Their messages are shown to clients as the reason
// for an Unauthenticated outcome, so they must stay free of detail.
var (
	ErrTokenExpired = errors.New("your session has expired, please log in again")
	ErrTokenInvalid = errors.New("invalid access token")
	ErrMissingRole  = errors.New("access token has no role")
)

// TokenCodec turns claims into an opaque signed token and back.
//
// Decode must fail when the exp claim has passed or the role claim is missing.
type TokenCodec interface {
	Encode(claims Claims) (string, error)
	Decode(token string) (Claims, error)
}

// JWTManager is the HS256 TokenCodec.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

var _ TokenCodec = (*JWTManager)(nil)

// NewJWTManager creates a JWT codec signing with cfg.JWTSecret.
//
// Security Requirements:
//   - JWT_SECRET must be at least 32 characters (enforced by config validation)
//   - Only HS256 is accepted on decode, which rules out "none" and
//     algorithm-confusion attacks
//   - exp is mandatory; tokens without it are rejected
//
// Example:
//
//	codec, err := auth.NewJWTManager(&cfg.Security)
//	if err != nil {
//	    return fmt.Errorf("token codec: %w", err)
//	}
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		now:    time.Now,
	}, nil
}

// Encode signs claims. The caller sets exp; LoginService does so from the
// configured validity window.
func (m *JWTManager) Encode(claims Claims) (string, error) {
	if claims.Role() == "" {
		return "", ErrMissingRole
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of token and returns its claims.
//
// Numeric claims are returned as int64 when integral and float64 otherwise,
// so exp round-trips as the int64 LoginService wrote.
func (m *JWTManager) Decode(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(m.now),
	)

	parsed, err := parser.Parse(token, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claims := make(Claims, len(mapClaims))
	for k, v := range mapClaims {
		claims[k] = normalizeNumber(v)
	}
	if claims.Role() == "" {
		return nil, ErrMissingRole
	}
	return claims, nil
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
