// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"context"
	"errors"

	"github.com/tomtom215/gatekeeper/internal/models"
)

// ErrUserNotFound is returned by a UserStore when no user has the given name.
var ErrUserNotFound = errors.New("user not found")

// UserStore looks users up by name. Implementations live in internal/userstore.
type UserStore interface {
	FindByName(ctx context.Context, name string) (*models.StoredUser, error)
}
