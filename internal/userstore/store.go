// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/gatekeeper/internal/auth"
	"github.com/tomtom215/gatekeeper/internal/config"
	"github.com/tomtom215/gatekeeper/internal/models"
)

// Backend names accepted in users.store.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

var (
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("user store closed")

	// ErrInvalidUser is returned by Put for records missing a name or role.
	ErrInvalidUser = errors.New("invalid user record")
)

// Store is a user store the login flow can read and startup seeding can write.
type Store interface {
	auth.UserStore

	// Put inserts or replaces the user with the same name.
	Put(ctx context.Context, user *models.StoredUser) error

	// Delete removes a user. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all users ordered by name.
	List(ctx context.Context) ([]*models.StoredUser, error)

	Close() error
}

// New opens the backend named in cfg.
func New(cfg config.UsersConfig) (Store, error) {
	switch cfg.Store {
	case BackendBadger:
		return OpenBadger(cfg.Path)
	case BackendMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown user store %q", cfg.Store)
	}
}

func checkUser(user *models.StoredUser) error {
	if user == nil || user.Name == "" || user.Role == "" {
		return ErrInvalidUser
	}
	return nil
}

// cloneUser copies user so callers cannot mutate stored records.
func cloneUser(user *models.StoredUser) *models.StoredUser {
	cp := *user
	if user.Extra != nil {
		cp.Extra = make(map[string]string, len(user.Extra))
		for k, v := range user.Extra {
			cp.Extra[k] = v
		}
	}
	return &cp
}
