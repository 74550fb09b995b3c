// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gatekeeper/internal/logging"
	"github.com/tomtom215/gatekeeper/internal/models"
	"github.com/tomtom215/gatekeeper/internal/validation"
)

const maxLoginBodyBytes = 1 << 20

// Flash messages shown to browsers.
const (
	msgInvalidCredentials = "invalid name or password"
	msgLoggedOut          = "you have been logged out"
)

// ExtraCheck is an optional route-specific check run after the role check
// passes. Its result is translated like any other outcome, so it can deny
// the request or attach a different identity.
type ExtraCheck func(r *http.Request, claims Claims, path, prefix string) Outcome

// Options are the per-mount gate options.
type Options struct {
	// Redirects sends browsers to the login page instead of returning 401,
	// and turns login/logout responses into redirects.
	Redirects bool
	// ExtraCheck is nil when no extra check applies.
	ExtraCheck ExtraCheck
}

// Landing is where a role goes after a cookie-mode login.
type Landing struct {
	Redirect string
	Message  string
}

// GateConfig holds the transport settings of the gate.
type GateConfig struct {
	Mode           StorageMode
	LoginURL       string
	LogoutRedirect string
	CookieSecure   bool
	Landing        map[string]Landing
	DefaultLanding Landing
}

// Gate is the top-level authentication middleware.
//
// The last path segment selects the action:
//   - "login" + POST: run the login flow and respond; nothing downstream runs
//   - "login", other methods: continue anonymously (the login page)
//   - "logout": drop the token and respond
//   - anything else: authorize and translate the outcome
type Gate struct {
	authorizer *Authorizer
	login      *LoginService
	cfg        GateConfig
	opts       Options
	audit      *logging.SecurityLogger
}

// NewGate creates a Gate.
func NewGate(authorizer *Authorizer, login *LoginService, cfg GateConfig, opts Options) *Gate {
	return &Gate{
		authorizer: authorizer,
		login:      login,
		cfg:        cfg,
		opts:       opts,
		audit:      logging.NewSecurityLogger(),
	}
}

// WithOptions returns a copy of g using opts, for mounting the same gate
// with different options on different route groups.
func (g *Gate) WithOptions(opts Options) *Gate {
	cp := *g
	cp.opts = opts
	return &cp
}

// Middleware wraps next with the gate.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch lastSegment(r.URL.Path) {
		case "login":
			if r.Method == http.MethodPost {
				g.handleLogin(w, r)
				return
			}
			next.ServeHTTP(w, withIdentity(r, Identity{}))
		case "logout":
			g.handleLogout(w, withIdentity(r, Identity{}))
		default:
			token, present := ExtractToken(r, g.cfg.Mode)
			g.translate(w, r, next, g.authorizer.Authorize(r, token, present), g.opts.ExtraCheck)
		}
	})
}

// translate is the only place outcomes become HTTP responses.
func (g *Gate) translate(w http.ResponseWriter, r *http.Request, next http.Handler, outcome Outcome, extra ExtraCheck) {
	if m, ok := outcome.(AuthenticatedWithMatch); ok && extra != nil {
		decided := extra(r, m.Claims, m.Path, m.Prefix)
		if f, denied := decided.(Forbidden); denied && f.Name == "" {
			f.Name = m.Claims.Name()
			decided = f
		}
		g.translate(w, r, next, decided, nil)
		return
	}
	if outcome == nil {
		logging.Ctx(r.Context()).Error().Str("path", r.URL.Path).Msg("Extra check returned no outcome")
		writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error")
		return
	}

	RecordGateDecision(outcome)

	switch o := outcome.(type) {
	case Anonymous:
		next.ServeHTTP(w, withIdentity(r, Identity{}))

	case Authenticated:
		next.ServeHTTP(w, withIdentity(r, Identity{Claims: o.Claims}))

	case AuthenticatedWithMatch:
		next.ServeHTTP(w, withIdentity(r, Identity{Claims: o.Claims, Prefix: o.Prefix}))

	case Unauthenticated:
		if g.opts.Redirects {
			target := g.cfg.LoginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
			redirectWithFlash(w, r, target, o.Reason, http.StatusFound)
			return
		}
		if g.cfg.Mode == StorageHeader {
			w.Header().Set("WWW-Authenticate", `Bearer realm="gatekeeper"`)
		}
		writeError(w, http.StatusUnauthorized, models.ErrCodeUnauthenticated, o.Reason)

	case Forbidden:
		// Never redirected: the login page would send the user straight back here.
		g.audit.LogAccessDenied(o.Name, o.Role, r.URL.Path, clientIP(r), o.Reason)
		writeError(w, http.StatusForbidden, models.ErrCodeForbidden, o.Reason)
	}
}

func (g *Gate) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := parseCredentials(w, r)
	if err != nil {
		g.loginRejected(w, r, http.StatusBadRequest, models.ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(creds); verr != nil {
		apiErr := verr.ToAPIError()
		g.loginRejected(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	envelope, err := g.login.Login(r.Context(), *creds)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		g.audit.LogLoginFailure(creds.Name, clientIP(r), r.UserAgent(), "invalid credentials")
		g.loginRejected(w, r, http.StatusUnauthorized, models.ErrCodeInvalidCredentials, msgInvalidCredentials)
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Login failed")
		writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error")
		return
	}

	claims := envelope.Claims
	g.audit.LogLoginSuccess(claims.ID(), claims.Name(), claims.Role(), clientIP(r), r.UserAgent())

	if g.cfg.Mode == StorageHeader {
		writeJSON(w, http.StatusOK, models.TokenBody{AccessToken: envelope.Token})
		return
	}

	http.SetCookie(w, g.tokenCookie(envelope.Token, envelope.ExpiresAt))

	landing := g.landingFor(claims.Role())
	if g.opts.Redirects {
		target := landing.Redirect
		if next := r.URL.Query().Get("next"); next != "" && isLocalPath(next) {
			target = next
		}
		redirectWithFlash(w, r, target, landing.Message, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.LandingResponse{
		Message:   landing.Message,
		Redirect:  landing.Redirect,
		ExpiresAt: envelope.ExpiresAt,
	}))
}

// loginRejected sends browsers back to the login page and API clients an error.
func (g *Gate) loginRejected(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	if g.opts.Redirects {
		target := g.cfg.LoginURL
		if next := r.URL.Query().Get("next"); next != "" && isLocalPath(next) {
			target += "?next=" + url.QueryEscape(next)
		}
		redirectWithFlash(w, r, target, msg, http.StatusSeeOther)
		return
	}
	writeError(w, status, code, msg)
}

func (g *Gate) handleLogout(w http.ResponseWriter, r *http.Request) {
	name := ""
	if token, ok := ExtractToken(r, g.cfg.Mode); ok {
		if claims, err := g.authorizer.codec.Decode(token); err == nil {
			name = claims.Name()
		}
	}
	g.audit.LogLogout(name, clientIP(r))

	if g.cfg.Mode == StorageCookie {
		expired := g.tokenCookie("", time.Unix(0, 0))
		expired.MaxAge = -1
		http.SetCookie(w, expired)
	}

	if g.opts.Redirects {
		redirectWithFlash(w, r, g.cfg.LogoutRedirect, msgLoggedOut, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.LogoutResponse{
		Message:   msgLoggedOut,
		DropToken: g.cfg.Mode == StorageHeader,
	}))
}

func (g *Gate) tokenCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   g.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (g *Gate) landingFor(role string) Landing {
	landing, ok := g.cfg.Landing[role]
	if !ok {
		return g.cfg.DefaultLanding
	}
	if landing.Redirect == "" {
		landing.Redirect = g.cfg.DefaultLanding.Redirect
	}
	return landing
}

// parseCredentials reads a JSON or form-encoded login body.
func parseCredentials(w http.ResponseWriter, r *http.Request) (*models.LoginRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)

	var creds models.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return nil, err
		}
		return &creds, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	creds.Name = r.PostFormValue("name")
	creds.Password = r.PostFormValue("password")
	return &creds, nil
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(ContextWithIdentity(r.Context(), id))
}

// lastSegment returns the final path segment, ignoring a trailing slash.
func lastSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	return path[strings.LastIndexByte(path, '/')+1:]
}
