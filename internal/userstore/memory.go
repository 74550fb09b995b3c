// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package userstore

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/gatekeeper/internal/auth"
	"github.com/tomtom215/gatekeeper/internal/models"
)

// MemoryStore is an in-process Store. Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]*models.StoredUser
	closed bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.StoredUser)}
}

// FindByName implements auth.UserStore.
func (s *MemoryStore) FindByName(_ context.Context, name string) (*models.StoredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	user, ok := s.users[name]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, user *models.StoredUser) error {
	if err := checkUser(user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.users[user.Name] = cloneUser(user)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	delete(s.users, name)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]*models.StoredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	users := make([]*models.StoredUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
