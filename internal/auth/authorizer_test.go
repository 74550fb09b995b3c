// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAuthorizer(t *testing.T, routes map[string][]string) (*Authorizer, *JWTManager) {
	t.Helper()

	table, err := NewRouteTable(routes)
	if err != nil {
		t.Fatalf("NewRouteTable() error = %v", err)
	}
	codec := newTestCodec(t)
	return NewAuthorizer(table, codec), codec
}

func TestAuthorize_Scenarios(t *testing.T) {
	t.Parallel()
	a, codec := newTestAuthorizer(t, map[string][]string{"/admin": {"admin"}})

	tests := []struct {
		name  string
		path  string
		token string
		want  Outcome
	}{
		{
			name:  "admin on protected path",
			path:  "/admin/reports",
			token: mustToken(t, codec, "admin"),
			want:  AuthenticatedWithMatch{Path: "/admin/reports", Prefix: "/admin"},
		},
		{
			name:  "user on protected path",
			path:  "/admin/reports",
			token: mustToken(t, codec, "user"),
			want:  Forbidden{Name: "alice", Role: "user", Reason: "you do not have permission to view /admin/reports"},
		},
		{
			name: "no token on protected path",
			path: "/admin/reports",
			want: Unauthenticated{Reason: "you have to be logged in to view /admin/reports"},
		},
		{
			name: "no token on public path",
			path: "/public",
			want: Anonymous{},
		},
		{
			name:  "token on public path",
			path:  "/public",
			token: mustToken(t, codec, "user"),
			want:  Authenticated{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			got := a.Authorize(req, tt.token, tt.token != "")

			switch want := tt.want.(type) {
			case AuthenticatedWithMatch:
				m, ok := got.(AuthenticatedWithMatch)
				if !ok {
					t.Fatalf("Authorize() = %#v, want AuthenticatedWithMatch", got)
				}
				if m.Path != want.Path || m.Prefix != want.Prefix || m.Claims.Role() != "admin" {
					t.Errorf("Authorize() = %#v, want %#v", m, want)
				}
			case Authenticated:
				m, ok := got.(Authenticated)
				if !ok {
					t.Fatalf("Authorize() = %#v, want Authenticated", got)
				}
				if m.Claims.Name() != "alice" {
					t.Errorf("Authenticated claims = %v", m.Claims)
				}
			default:
				if got != tt.want {
					t.Errorf("Authorize() = %#v, want %#v", got, tt.want)
				}
			}
		})
	}
}

func TestAuthorize_InvalidToken(t *testing.T) {
	t.Parallel()
	a, codec := newTestAuthorizer(t, map[string][]string{"/admin": {"admin"}})

	expired := mustToken(t, codec, "admin")
	codec.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	for _, path := range []string{"/admin", "/public"} {
		for name, token := range map[string]string{"garbage": "garbage", "expired": expired} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			got, ok := a.Authorize(req, token, true).(Unauthenticated)
			if !ok {
				t.Errorf("%s token on %s: Authorize() = %T, want Unauthenticated", name, path, got)
				continue
			}
			if got.Reason == "" {
				t.Errorf("%s token on %s: empty reason", name, path)
			}
		}
	}
}

// Protected paths without a token are Unauthenticated and unprotected paths
// are Anonymous, whatever the table looks like.
func TestAuthorize_NoTokenProperty(t *testing.T) {
	t.Parallel()
	a, _ := newTestAuthorizer(t, map[string][]string{
		"/admin":         {"admin"},
		"/admin/reports": {"analyst"},
		"/api":           {"user", "admin"},
	})

	protected := []string{"/admin", "/admin/", "/admin/x/y", "/admin/reports/1", "/api", "/api/v1/me", "/apiary"}
	unprotected := []string{"/", "/login", "/public/admin", "/v1/api", "/ad"}

	for _, path := range protected {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if _, ok := a.Authorize(req, "", false).(Unauthenticated); !ok {
			t.Errorf("Authorize(%q, no token) should be Unauthenticated", path)
		}
	}
	for _, path := range unprotected {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if _, ok := a.Authorize(req, "", false).(Anonymous); !ok {
			t.Errorf("Authorize(%q, no token) should be Anonymous", path)
		}
	}
}

func TestAuthorize_LongestPrefixWins(t *testing.T) {
	t.Parallel()
	a, codec := newTestAuthorizer(t, map[string][]string{
		"/admin":         {"admin"},
		"/admin/reports": {"analyst"},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/reports/q3", nil)

	// analyst is only allowed by the longer prefix
	got := a.Authorize(req, mustToken(t, codec, "analyst"), true)
	m, ok := got.(AuthenticatedWithMatch)
	if !ok || m.Prefix != "/admin/reports" {
		t.Errorf("analyst: Authorize() = %#v, want match on /admin/reports", got)
	}

	// admin is allowed by /admin but not by the more specific prefix
	got = a.Authorize(req, mustToken(t, codec, "admin"), true)
	f, ok := got.(Forbidden)
	if !ok || f.Role != "admin" {
		t.Errorf("admin: Authorize() = %#v, want Forbidden for role admin", got)
	}
}

func TestOutcomeLabels(t *testing.T) {
	outcomes := map[string]Outcome{
		"anonymous":           Anonymous{},
		"authenticated":       Authenticated{},
		"authenticated_match": AuthenticatedWithMatch{},
		"unauthenticated":     Unauthenticated{},
		"forbidden":           Forbidden{},
	}
	for want, o := range outcomes {
		if o.Label() != want {
			t.Errorf("%T.Label() = %q, want %q", o, o.Label(), want)
		}
	}
}
