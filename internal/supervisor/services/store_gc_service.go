// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package services

import (
	"context"
	"time"

	"github.com/tomtom215/gatekeeper/internal/logging"
)

// GarbageCollector is satisfied by *userstore.BadgerStore.
type GarbageCollector interface {
	RunGC() error
}

// StoreGCService runs user store garbage collection on an interval.
//
// A failed run is logged and retried on the next tick. It does not return
// an error, because a restart would only run GC again sooner.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
	name     string
}

// NewStoreGCService creates a GC service. A non-positive interval means
// ten minutes.
func NewStoreGCService(store GarbageCollector, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		name:     "user-store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("User store GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("User store GC complete")
		}
	}
}

// String implements fmt.Stringer. Suture uses it in log messages.
func (s *StoreGCService) String() string {
	return s.name
}
