// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

/*
Package userstore provides the user stores the login flow looks users up in.

Two backends implement Store:

  - BadgerStore: persistent, backed by BadgerDB. Records are JSON under the
    key "user:<name>".
  - MemoryStore: a map guarded by a RWMutex, for development and tests.

Both return auth.ErrUserNotFound for unknown names, so the login flow can run
its dummy password comparison without knowing which backend is in use.

Usage:

	store, err := userstore.New(cfg.Users)
	if err != nil {
	    return err
	}
	defer store.Close()

	if err := userstore.Seed(ctx, store, cfg.Users.Seed, cfg.Security.BcryptCost); err != nil {
	    return err
	}
*/
package userstore
