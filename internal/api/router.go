// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/gatekeeper/internal/auth"
	"github.com/tomtom215/gatekeeper/internal/authz"
	"github.com/tomtom215/gatekeeper/internal/config"
	"github.com/tomtom215/gatekeeper/internal/middleware"
	"github.com/tomtom215/gatekeeper/internal/userstore"
)

// Dependencies are the components the router mounts.
type Dependencies struct {
	Config *config.Config

	// Gate is the browser-facing gate. The API groups derive their own
	// options from it with WithOptions.
	Gate *auth.Gate

	// Routes is the route table the gate authorizes against.
	Routes *auth.RouteTable

	Store userstore.Store

	// Enforcer adds the policy check to /api/v1/users. Nil disables it.
	Enforcer *authz.Enforcer
}

// Router wires handlers and gates onto a Chi mux.
type Router struct {
	deps          Dependencies
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(deps Dependencies) (*Router, error) {
	if deps.Config == nil || deps.Gate == nil || deps.Routes == nil || deps.Store == nil {
		return nil, errors.New("router requires config, gate, routes and store")
	}

	handler, err := NewHandler(deps.Store, HandlerConfig{
		LoginURL:     deps.Config.Security.LoginURL,
		StorageMode:  deps.Config.Security.StorageMode,
		UserBackend:  deps.Config.Users.Store,
		AuthzEnabled: deps.Enforcer != nil,
		Routes:       deps.Routes,
	})
	if err != nil {
		return nil, err
	}

	return &Router{
		deps:          deps,
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(&deps.Config.Security)),
	}, nil
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	browserGate := router.deps.Gate
	apiGate := browserGate.WithOptions(auth.Options{})
	usersGate := apiGate
	if router.deps.Enforcer != nil {
		usersGate = browserGate.WithOptions(auth.Options{ExtraCheck: router.deps.Enforcer.ExtraCheck()})
	}

	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(APISecurityHeaders())
	r.Use(router.chiMiddleware.RateLimitLogin())

	r.NotFound(browserGate.Middleware(http.HandlerFunc(h.NotFound)).ServeHTTP)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// Operational endpoints stay outside the gate
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Browser pages
	r.Group(func(r chi.Router) {
		r.Use(browserGate.Middleware)

		r.Get("/", h.Home)
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.gateHandled)
		r.HandleFunc("/logout", h.gateHandled)
		r.Get("/admin", h.AdminHome)
		r.Get("/admin/*", h.AdminHome)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apiGate.Middleware)

			r.Post("/login", h.gateHandled)
			r.HandleFunc("/logout", h.gateHandled)
			r.Get("/me", h.Me)
			r.Get("/admin/users", h.ListUsers)
		})

		r.Group(func(r chi.Router) {
			r.Use(usersGate.Middleware)

			r.Get("/users/{name}", h.UserProfile)
		})
	})

	return r
}
