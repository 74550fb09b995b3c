// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/gatekeeper/internal/auth"
	"github.com/tomtom215/gatekeeper/internal/config"
	"github.com/tomtom215/gatekeeper/internal/logging"
	"github.com/tomtom215/gatekeeper/internal/models"
)

// ErrCostMismatch is returned when a seeded hash was not made at the
// configured bcrypt cost. The dummy comparison for unknown users runs at the
// configured cost, so a mismatch makes existing names distinguishable by timing.
var ErrCostMismatch = errors.New("password_hash cost does not match security.bcrypt_cost")

// Seed upserts the configured users into store. Every hash must be a bcrypt
// hash made at cost.
//
// A seed without an ID keeps the ID of the stored user with the same name,
// or gets a fresh UUID, so restarts do not change user IDs.
func Seed(ctx context.Context, store Store, seeds []config.UserConfig, cost int) error {
	for i := range seeds {
		seed := &seeds[i]

		hashCost, err := bcrypt.Cost([]byte(seed.PasswordHash))
		if err != nil {
			return fmt.Errorf("seed user %q: password_hash is not a bcrypt hash: %w", seed.Name, err)
		}
		if hashCost != cost {
			return fmt.Errorf("seed user %q: %w (hash cost %d, configured %d)", seed.Name, ErrCostMismatch, hashCost, cost)
		}

		id := seed.ID
		if id == "" {
			existing, err := store.FindByName(ctx, seed.Name)
			switch {
			case err == nil:
				id = existing.ID
			case errors.Is(err, auth.ErrUserNotFound):
				id = uuid.NewString()
			default:
				return fmt.Errorf("seed user %q: %w", seed.Name, err)
			}
		}

		user := &models.StoredUser{
			ID:           id,
			Name:         seed.Name,
			PasswordHash: seed.PasswordHash,
			Role:         seed.Role,
			Extra:        seed.Extra,
		}
		if err := store.Put(ctx, user); err != nil {
			return fmt.Errorf("seed user %q: %w", seed.Name, err)
		}
	}

	if len(seeds) > 0 {
		logging.Info().Int("users", len(seeds)).Msg("Seeded user store")
	}
	return nil
}
