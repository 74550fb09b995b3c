// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/gatekeeper/internal/logging"
	"github.com/tomtom215/gatekeeper/internal/models"
)

// recorder is a downstream handler that remembers whether and how it ran.
type recorder struct {
	called   bool
	identity Identity
}

func (h *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.identity = IdentityFromContext(r.Context())
	w.WriteHeader(http.StatusTeapot)
}

func newTestGate(t *testing.T, mode StorageMode, opts Options) (*Gate, *JWTManager) {
	t.Helper()

	table, err := NewRouteTable(map[string][]string{"/admin": {"admin"}})
	if err != nil {
		t.Fatalf("NewRouteTable() error = %v", err)
	}
	codec := newTestCodec(t)
	login := NewLoginService(newTestUsers(t), newCountingVerifier(t), codec, LoginConfig{
		Validity:    time.Hour,
		ExtraFields: []string{"email"},
	})

	gate := NewGate(NewAuthorizer(table, codec), login, GateConfig{
		Mode:           mode,
		LoginURL:       "/login",
		LogoutRedirect: "/",
		Landing: map[string]Landing{
			"admin": {Redirect: "/admin", Message: "welcome back, administrator"},
		},
		DefaultLanding: Landing{Redirect: "/", Message: "you are now logged in"},
	}, opts)
	return gate, codec
}

func serve(gate *Gate, next http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	gate.Middleware(next).ServeHTTP(rec, req)
	return rec
}

func jsonLogin(path, name, password string) *http.Request {
	body, _ := json.Marshal(models.LoginRequest{Name: name, Password: password})
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formLogin(path, name, password string) *http.Request {
	form := url.Values{"name": {name}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	c := findCookie(rec, FlashCookieName)
	if c == nil {
		return ""
	}
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		t.Fatalf("flash cookie not query-escaped: %v", err)
	}
	return msg
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *models.APIError {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	if resp.Status != "error" || resp.Error == nil {
		t.Fatalf("response is not an error envelope: %s", rec.Body.String())
	}
	return resp.Error
}

func TestGate_CookieLoginRedirectsToLanding(t *testing.T) {
	gate, codec := newTestGate(t, StorageCookie, Options{Redirects: true})
	next := &recorder{}

	rec := serve(gate, next, formLogin("/login", "alice", "alice-password"))

	if next.called {
		t.Error("login must not run downstream handlers")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Location = %q, want /admin", loc)
	}
	if msg := flashOf(t, rec); msg != "welcome back, administrator" {
		t.Errorf("flash = %q, want landing message", msg)
	}

	cookie := findCookie(rec, CookieName)
	if cookie == nil {
		t.Fatal("access_token cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("access_token cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
	claims, err := codec.Decode(cookie.Value)
	if err != nil {
		t.Fatalf("cookie holds an invalid token: %v", err)
	}
	if claims.Name() != "alice" || claims.Role() != "admin" || claims["email"] != "alice@example.com" {
		t.Errorf("token claims = %v", claims)
	}
}

func TestGate_CookieLoginDefaultLandingAndNext(t *testing.T) {
	gate, _ := newTestGate(t, StorageCookie, Options{Redirects: true})

	rec := serve(gate, &recorder{}, formLogin("/login", "bob", "bob-password"))
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want default landing /", loc)
	}
	if msg := flashOf(t, rec); msg != "you are now logged in" {
		t.Errorf("flash = %q, want default landing message", msg)
	}

	rec = serve(gate, &recorder{}, formLogin("/login?next=%2Fadmin%2Fusers", "alice", "alice-password"))
	if loc := rec.Header().Get("Location"); loc != "/admin/users" {
		t.Errorf("Location = %q, want next=/admin/users", loc)
	}

	rec = serve(gate, &recorder{}, formLogin("/login?next=%2F%2Fevil.example", "alice", "alice-password"))
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Location = %q, off-site next must be ignored", loc)
	}
}

func TestGate_CookieLoginWithoutRedirects(t *testing.T) {
	gate, _ := newTestGate(t, StorageCookie, Options{})

	rec := serve(gate, &recorder{}, jsonLogin("/api/v1/login", "alice", "alice-password"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if findCookie(rec, CookieName) == nil {
		t.Error("access_token cookie not set")
	}

	var resp struct {
		Status string                 `json:"status"`
		Data   models.LandingResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.Status != "success" || resp.Data.Message != "welcome back, administrator" || resp.Data.Redirect != "/admin" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGate_HeaderLoginReturnsTokenBody(t *testing.T) {
	gate, codec := newTestGate(t, StorageHeader, Options{Redirects: true})
	next := &recorder{}

	rec := serve(gate, next, jsonLogin("/api/login", "alice", "alice-password"))

	if next.called {
		t.Error("header-mode login must halt request processing")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if findCookie(rec, CookieName) != nil {
		t.Error("header mode must not set the access_token cookie")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(body) != 1 {
		t.Errorf("body = %s, want only access_token", rec.Body.String())
	}
	if want := `{"access_token":"` + body["access_token"] + `"}`; rec.Body.String() != want {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}
	if _, err := codec.Decode(body["access_token"]); err != nil {
		t.Errorf("returned token does not decode: %v", err)
	}
}

func TestGate_LoginFailure(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{"wrong password json", Options{}, jsonLogin("/login", "alice", "nope"), http.StatusUnauthorized, models.ErrCodeInvalidCredentials},
		{"unknown user json", Options{}, jsonLogin("/login", "mallory", "nope"), http.StatusUnauthorized, models.ErrCodeInvalidCredentials},
		{"missing password", Options{}, jsonLogin("/login", "alice", ""), http.StatusBadRequest, models.ErrCodeValidation},
		{"malformed json", Options{}, func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{"))
			r.Header.Set("Content-Type", "application/json")
			return r
		}(), http.StatusBadRequest, models.ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, _ := newTestGate(t, StorageCookie, tt.opts)
			rec := serve(gate, &recorder{}, tt.req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if apiErr := decodeError(t, rec); apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
			if findCookie(rec, CookieName) != nil {
				t.Error("failed login must not set a token")
			}
		})
	}
}

func TestGate_LoginFailureRedirectsBrowsers(t *testing.T) {
	gate, _ := newTestGate(t, StorageCookie, Options{Redirects: true})

	rec := serve(gate, &recorder{}, formLogin("/login?next=%2Fadmin", "alice", "nope"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fadmin" {
		t.Errorf("Location = %q, want back to the login page", loc)
	}
	if msg := flashOf(t, rec); msg != msgInvalidCredentials {
		t.Errorf("flash = %q, want %q", msg, msgInvalidCredentials)
	}
}

func TestGate_LoginPageIsAnonymous(t *testing.T) {
	gate, codec := newTestGate(t, StorageCookie, Options{Redirects: true})
	next := &recorder{}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: mustToken(t, codec, "admin")})
	rec := serve(gate, next, req)

	if !next.called || rec.Code != http.StatusTeapot {
		t.Fatal("GET /login should reach the login page handler")
	}
	if !next.identity.Anonymous() {
		t.Errorf("login page identity = %+v, want anonymous", next.identity)
	}
}

func TestGate_Logout(t *testing.T) {
	t.Run("cookie mode redirects", func(t *testing.T) {
		gate, codec := newTestGate(t, StorageCookie, Options{Redirects: true})
		next := &recorder{}

		req := httptest.NewRequest(http.MethodPost, "/account/logout", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: mustToken(t, codec, "admin")})
		rec := serve(gate, next, req)

		if next.called {
			t.Error("logout must not run downstream handlers")
		}
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("got %d to %q, want 303 to /", rec.Code, rec.Header().Get("Location"))
		}
		cookie := findCookie(rec, CookieName)
		if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Errorf("access_token cookie = %+v, want cleared", cookie)
		}
		if msg := flashOf(t, rec); msg != msgLoggedOut {
			t.Errorf("flash = %q, want %q", msg, msgLoggedOut)
		}
	})

	t.Run("header mode tells client to drop token", func(t *testing.T) {
		gate, _ := newTestGate(t, StorageHeader, Options{})

		rec := serve(gate, &recorder{}, httptest.NewRequest(http.MethodGet, "/api/logout/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if findCookie(rec, CookieName) != nil {
			t.Error("header mode logout must not touch cookies")
		}
		var resp struct {
			Data models.LogoutResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if !resp.Data.DropToken {
			t.Errorf("response = %s, want drop_token", rec.Body.String())
		}
	})
}

func TestGate_Unauthenticated(t *testing.T) {
	t.Run("redirects to login with next and flash", func(t *testing.T) {
		gate, _ := newTestGate(t, StorageCookie, Options{Redirects: true})
		next := &recorder{}

		rec := serve(gate, next, httptest.NewRequest(http.MethodGet, "/admin/reports?q=1", nil))

		if next.called {
			t.Error("downstream must not run")
		}
		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fadmin%2Freports%3Fq%3D1" {
			t.Errorf("Location = %q", loc)
		}
		if msg := flashOf(t, rec); msg != "you have to be logged in to view /admin/reports" {
			t.Errorf("flash = %q", msg)
		}
	})

	for _, mode := range []StorageMode{StorageCookie, StorageHeader} {
		t.Run("401 in "+string(mode)+" mode", func(t *testing.T) {
			gate, _ := newTestGate(t, mode, Options{})

			rec := serve(gate, &recorder{}, httptest.NewRequest(http.MethodGet, "/admin/reports", nil))

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			apiErr := decodeError(t, rec)
			if apiErr.Code != models.ErrCodeUnauthenticated {
				t.Errorf("code = %q", apiErr.Code)
			}
			if apiErr.Message != "you have to be logged in to view /admin/reports" {
				t.Errorf("message = %q", apiErr.Message)
			}
			hasChallenge := rec.Header().Get("WWW-Authenticate") != ""
			if hasChallenge != (mode == StorageHeader) {
				t.Errorf("WWW-Authenticate present = %v in %s mode", hasChallenge, mode)
			}
		})
	}
}

func TestGate_ForbiddenIsNeverRedirected(t *testing.T) {
	for _, redirects := range []bool{true, false} {
		gate, codec := newTestGate(t, StorageHeader, Options{Redirects: redirects})
		next := &recorder{}

		req := httptest.NewRequest(http.MethodGet, "/admin/reports", nil)
		req.Header.Set("Authorization", "Bearer "+mustToken(t, codec, "user"))
		rec := serve(gate, next, req)

		if next.called {
			t.Error("downstream must not run")
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("redirects=%v: status = %d, want 403", redirects, rec.Code)
		}
		apiErr := decodeError(t, rec)
		if apiErr.Code != models.ErrCodeForbidden || apiErr.Message != "you do not have permission to view /admin/reports" {
			t.Errorf("redirects=%v: error = %+v", redirects, apiErr)
		}
	}
}

func TestGate_AttachesIdentity(t *testing.T) {
	gate, codec := newTestGate(t, StorageCookie, Options{Redirects: true})
	token := mustToken(t, codec, "admin")

	tests := []struct {
		name       string
		path       string
		token      string
		wantAnon   bool
		wantPrefix string
	}{
		{"anonymous on public path", "/public", "", true, ""},
		{"identity on public path", "/public", token, false, ""},
		{"identity on protected path", "/admin/reports", token, false, "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &recorder{}
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.token})
			}
			rec := serve(gate, next, req)

			if !next.called || rec.Code != http.StatusTeapot {
				t.Fatalf("downstream not reached: status %d", rec.Code)
			}
			if next.identity.Anonymous() != tt.wantAnon {
				t.Errorf("Anonymous() = %v, want %v", next.identity.Anonymous(), tt.wantAnon)
			}
			if next.identity.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %q, want %q", next.identity.Prefix, tt.wantPrefix)
			}
			if !tt.wantAnon && next.identity.Claims.Name() != "alice" {
				t.Errorf("Claims = %v", next.identity.Claims)
			}
		})
	}
}

func TestGate_ExtraCheck(t *testing.T) {
	var calls []string
	deny := func(r *http.Request, claims Claims, path, prefix string) Outcome {
		calls = append(calls, path+"|"+prefix)
		if strings.HasSuffix(path, "/secret") {
			return Forbidden{Role: claims.Role(), Reason: "not your resource"}
		}
		return AuthenticatedWithMatch{Claims: claims, Path: path, Prefix: prefix}
	}

	gate, codec := newTestGate(t, StorageCookie, Options{Redirects: true, ExtraCheck: deny})
	token := mustToken(t, codec, "admin")

	request := func(path string) (*httptest.ResponseRecorder, *recorder) {
		next := &recorder{}
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		return serve(gate, next, req), next
	}

	rec, next := request("/admin/secret")
	if rec.Code != http.StatusForbidden || next.called {
		t.Errorf("extra check denial: status %d, downstream called %v", rec.Code, next.called)
	}
	if apiErr := decodeError(t, rec); apiErr.Message != "not your resource" {
		t.Errorf("message = %q", apiErr.Message)
	}

	rec, next = request("/admin/open")
	if rec.Code != http.StatusTeapot || !next.called {
		t.Errorf("extra check pass: status %d, downstream called %v", rec.Code, next.called)
	}

	_, next = request("/public")
	if !next.called {
		t.Error("unprotected path should reach downstream")
	}

	want := []string{"/admin/secret|/admin", "/admin/open|/admin"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("extra check calls = %v, want %v", calls, want)
	}
}

func TestGate_AccessDeniedAuditNamesUser(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		path  string
		extra ExtraCheck
	}{
		{name: "role check", role: "user", path: "/admin"},
		{
			name: "extra check without name",
			role: "admin",
			path: "/admin/secret",
			extra: func(r *http.Request, claims Claims, path, prefix string) Outcome {
				return Forbidden{Role: claims.Role(), Reason: "not your resource"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, codec := newTestGate(t, StorageCookie, Options{ExtraCheck: tt.extra})
			var buf bytes.Buffer
			gate.audit = logging.NewSecurityLoggerWithLogger(zerolog.New(&buf))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: mustToken(t, codec, tt.role)})
			if rec := serve(gate, &recorder{}, req); rec.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", rec.Code)
			}

			var event map[string]interface{}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &event); err != nil {
				t.Fatalf("audit output is not one JSON event: %v (%s)", err, buf.String())
			}
			if event["event"] != "access_denied" {
				t.Errorf("event = %v, want access_denied", event["event"])
			}
			if event["username"] != logging.SanitizeUsername("alice") {
				t.Errorf("username = %v, want %q", event["username"], logging.SanitizeUsername("alice"))
			}
			if event["role"] != tt.role {
				t.Errorf("role = %v, want %q", event["role"], tt.role)
			}
		})
	}
}

func TestGate_ExtraCheckResultIsNotRechecked(t *testing.T) {
	calls := 0
	again := func(r *http.Request, claims Claims, path, prefix string) Outcome {
		calls++
		return AuthenticatedWithMatch{Claims: claims, Path: path, Prefix: prefix}
	}
	gate, codec := newTestGate(t, StorageCookie, Options{ExtraCheck: again})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: mustToken(t, codec, "admin")})
	serve(gate, &recorder{}, req)

	if calls != 1 {
		t.Errorf("extra check ran %d times, want 1", calls)
	}
}

func TestGate_ExtraCheckNilOutcome(t *testing.T) {
	broken := func(*http.Request, Claims, string, string) Outcome { return nil }
	gate, codec := newTestGate(t, StorageCookie, Options{ExtraCheck: broken})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: mustToken(t, codec, "admin")})
	rec := serve(gate, &recorder{}, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGate_WithOptions(t *testing.T) {
	gate, _ := newTestGate(t, StorageCookie, Options{Redirects: true})
	api := gate.WithOptions(Options{})

	rec := serve(api, &recorder{}, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("api gate status = %d, want 401", rec.Code)
	}
	rec = serve(gate, &recorder{}, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusFound {
		t.Errorf("browser gate status = %d, want 302", rec.Code)
	}
}

func TestGate_DecisionMetrics(t *testing.T) {
	gate, _ := newTestGate(t, StorageCookie, Options{})

	before := testutil.ToFloat64(GateDecisions.WithLabelValues("unauthenticated"))
	serve(gate, &recorder{}, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if got := testutil.ToFloat64(GateDecisions.WithLabelValues("unauthenticated")) - before; got != 1 {
		t.Errorf("unauthenticated decisions delta = %v, want 1", got)
	}
}

func TestReadFlash(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: url.QueryEscape("hello, world")})
	rec := httptest.NewRecorder()

	if got := ReadFlash(rec, req); got != "hello, world" {
		t.Errorf("ReadFlash() = %q", got)
	}
	if c := findCookie(rec, FlashCookieName); c == nil || c.MaxAge >= 0 {
		t.Errorf("flash cookie = %+v, want cleared", c)
	}

	if got := ReadFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); got != "" {
		t.Errorf("ReadFlash() without cookie = %q", got)
	}
}

func TestLastSegment(t *testing.T) {
	tests := map[string]string{
		"/login":           "login",
		"/api/v1/login":    "login",
		"/api/v1/login/":   "login",
		"/logout":          "logout",
		"/admin/reports":   "reports",
		"/":                "",
		"":                 "",
		"/login/extra":     "extra",
		"/api/loginstatus": "loginstatus",
	}
	for in, want := range tests {
		if got := lastSegment(in); got != want {
			t.Errorf("lastSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsLocalPath(t *testing.T) {
	tests := map[string]bool{
		"/admin":               true,
		"/admin?x=1":           true,
		"//evil.example":       false,
		"/\\evil.example":      false,
		"https://evil.example": false,
		"admin":                false,
		"":                     false,
	}
	for in, want := range tests {
		if got := isLocalPath(in); got != want {
			t.Errorf("isLocalPath(%q) = %v, want %v", in, got, want)
		}
	}
}
