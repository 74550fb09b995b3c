// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package authz

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/tomtom215/gatekeeper/internal/config"
	"github.com/tomtom215/gatekeeper/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// ErrEnforcerClosed is returned by Enforce after Close.
var ErrEnforcerClosed = errors.New("authz enforcer closed")

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath is the path to the Casbin model file.
	// If empty, uses embedded model.
	ModelPath string

	// PolicyPath is the path to the Casbin policy file.
	// If empty, uses embedded policy.
	PolicyPath string

	// ReloadInterval is how often a file policy is reloaded. Zero disables reloading.
	ReloadInterval time.Duration

	// CacheTTL is how long decisions are cached. Zero disables caching.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		ReloadInterval: 30 * time.Second,
		CacheTTL:       time.Minute,
	}
}

// ConfigFrom builds an EnforcerConfig from the authz config section.
func ConfigFrom(cfg config.AuthzConfig) *EnforcerConfig {
	ec := DefaultEnforcerConfig()
	ec.ModelPath = cfg.ModelPath
	ec.PolicyPath = cfg.PolicyPath
	return ec
}

// Enforcer wraps the Casbin enforcer with a decision cache and metrics.
type Enforcer struct {
	config    *EnforcerConfig
	enforcer  *casbin.SyncedEnforcer
	cache     *enforcementCache
	closed    chan struct{}
	closeOnce sync.Once
}

// NewEnforcer creates an enforcer. A configured model or policy path that
// does not exist is an error rather than a silent fallback.
func NewEnforcer(ctx context.Context, cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	var m model.Model
	var err error
	if cfg.ModelPath != "" {
		if !fileExists(cfg.ModelPath) {
			return nil, fmt.Errorf("casbin model %s: %w", cfg.ModelPath, os.ErrNotExist)
		}
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if !fileExists(cfg.PolicyPath) {
			return nil, fmt.Errorf("casbin policy %s: %w", cfg.PolicyPath, os.ErrNotExist)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(embeddedPolicy))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{
		config:   cfg,
		enforcer: enforcer,
		closed:   make(chan struct{}),
	}
	if cfg.CacheTTL > 0 {
		e.cache = newEnforcementCache(cfg.CacheTTL)
	}
	if cfg.PolicyPath != "" && cfg.ReloadInterval > 0 {
		go e.reloadLoop(ctx, cfg.ReloadInterval)
	}

	logging.Info().
		Str("model", sourceName(cfg.ModelPath)).
		Str("policy", sourceName(cfg.PolicyPath)).
		Int("rules", e.policyCount()).
		Msg("Authorization policy loaded")
	return e, nil
}

// Enforce reports whether user (holding role) may perform method on path.
func (e *Enforcer) Enforce(user, role, path, method string) (bool, error) {
	select {
	case <-e.closed:
		return false, ErrEnforcerClosed
	default:
	}

	start := time.Now()
	if e.cache != nil {
		if allowed, ok := e.cache.get(user, role, path, method); ok {
			RecordAuthzCacheHit()
			RecordAuthzDecision(role, allowed, true, time.Since(start))
			return allowed, nil
		}
		RecordAuthzCacheMiss()
	}

	allowed, err := e.enforcer.Enforce(user, role, path, method)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.set(user, role, path, method, allowed)
	}
	RecordAuthzDecision(role, allowed, false, time.Since(start))
	return allowed, nil
}

// Reload reloads the policy from its source and drops cached decisions.
func (e *Enforcer) Reload() error {
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	if e.cache != nil {
		e.cache.clear()
	}
	return nil
}

// Close stops the reload loop and the cache cleanup. It is idempotent.
func (e *Enforcer) Close() {
	e.closeOnce.Do(func() {
		close(e.closed)
		if e.cache != nil {
			e.cache.stop()
		}
	})
}

func (e *Enforcer) reloadLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.closed:
			return
		case <-ticker.C:
			if err := e.Reload(); err != nil {
				logging.Warn().Err(err).Str("policy", e.config.PolicyPath).Msg("Policy reload failed; keeping previous policy")
			}
		}
	}
}

func (e *Enforcer) policyCount() int {
	rules, err := e.enforcer.GetPolicy()
	if err != nil {
		return 0
	}
	return len(rules)
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
