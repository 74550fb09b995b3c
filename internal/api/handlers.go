// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gatekeeper/internal/auth"
	"github.com/tomtom215/gatekeeper/internal/logging"
	"github.com/tomtom215/gatekeeper/internal/models"
	"github.com/tomtom215/gatekeeper/internal/userstore"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// healthCheckName is looked up to check the user store answers. It cannot
// be a real user name.
const healthCheckName = "\x00health"

// pageData is passed to every HTML template.
type pageData struct {
	Title       string
	Flash       string
	LoginURL    string
	LoginAction string
	Path        string
	Identity    auth.Identity
	Users       []models.UserProfile
}

// Handler serves the pages and JSON endpoints behind the gate.
type Handler struct {
	store        userstore.Store
	pages        *template.Template
	loginURL     string
	storageMode  string
	userBackend  string
	authzEnabled bool
	routes       *auth.RouteTable
	startTime    time.Time
}

// HandlerConfig holds what the handlers report about the running server.
type HandlerConfig struct {
	LoginURL     string
	StorageMode  string
	UserBackend  string
	AuthzEnabled bool
	Routes       *auth.RouteTable
}

// NewHandler creates a Handler. It fails only if the embedded templates do
// not parse.
func NewHandler(store userstore.Store, cfg HandlerConfig) (*Handler, error) {
	pages, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &Handler{
		store:        store,
		pages:        pages,
		loginURL:     cfg.LoginURL,
		storageMode:  cfg.StorageMode,
		userBackend:  cfg.UserBackend,
		authzEnabled: cfg.AuthzEnabled,
		routes:       cfg.Routes,
		startTime:    time.Now(),
	}, nil
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, title string) pageData {
	return pageData{
		Title:    title,
		Flash:    auth.ReadFlash(w, r),
		LoginURL: h.loginURL,
		Path:     r.URL.Path,
		Identity: auth.IdentityFromContext(r.Context()),
	}
}

// Health reports whether the user store answers lookups.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_, err := h.store.FindByName(r.Context(), healthCheckName)
	ready := err == nil || errors.Is(err, auth.ErrUserNotFound)

	status := models.HealthStatus{
		Status:         "healthy",
		StorageMode:    h.storageMode,
		UserStore:      h.userBackend,
		UserStoreReady: ready,
		AuthzEnabled:   h.authzEnabled,
		ProtectedPaths: h.routes.Len(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}
	code := http.StatusOK
	if !ready {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("User store health check failed")
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, models.NewSuccessResponse(status))
}

// LoginPage renders the login form. Submissions never reach this handler:
// the gate answers POST .../login itself.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r, "Log in")
	data.LoginAction = r.URL.Path
	if next := r.URL.Query().Get("next"); next != "" {
		data.LoginAction += "?next=" + url.QueryEscape(next)
	}
	h.renderHTML(w, r, http.StatusOK, "login.html.tmpl", data)
}

// Home renders the landing page for anonymous and logged-in users alike.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHTML(w, r, http.StatusOK, "home.html.tmpl", h.page(w, r, "Gatekeeper"))
}

// AdminHome renders the administration page. Access is decided by the
// route table, not here.
func (h *Handler) AdminHome(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r, "Administration")

	users, err := h.store.List(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list users")
	}
	for _, u := range users {
		data.Users = append(data.Users, u.Profile())
	}
	h.renderHTML(w, r, http.StatusOK, "admin.html.tmpl", data)
}

// NotFound renders a 404 page or error depending on what the client accepts.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "not found")
		return
	}
	h.renderHTML(w, r, http.StatusNotFound, "notfound.html.tmpl", h.page(w, r, "Not found"))
}

// MethodNotAllowed answers requests for a known path with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, models.ErrCodeMethodNotAllowed, "method not allowed")
}

// Me returns the identity the gate attached to the request.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id.Anonymous() {
		respondData(w, models.IdentityResponse{Anonymous: true})
		return
	}

	resp := models.IdentityResponse{
		ID:    id.Claims.ID(),
		Name:  id.Claims.Name(),
		Role:  id.Claims.Role(),
		Extra: id.Claims.Extra(),
	}
	if exp := id.Claims.ExpiresAt(); !exp.IsZero() {
		resp.ExpiresAt = exp.Unix()
	}
	respondData(w, resp)
}

// UserProfile returns the public profile of the named user.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	user, err := h.store.FindByName(r.Context(), name)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no such user")
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to look up user")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error")
		return
	}
	respondData(w, user.Profile())
}

// ListUsers returns every user's public profile.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list users")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error")
		return
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	respondData(w, profiles)
}

// gateHandled is registered on login submission and logout routes so the
// router matches them. The gate responds before it would run.
func (h *Handler) gateHandled(w http.ResponseWriter, r *http.Request) {
	logging.Ctx(r.Context()).Error().Str("path", r.URL.Path).Msg("Login/logout route reached without the gate")
	respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
