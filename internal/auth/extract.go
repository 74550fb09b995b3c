// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// StorageMode says where clients keep their token.
type StorageMode string

const (
	// StorageCookie keeps the token in the HttpOnly access_token cookie.
	StorageCookie StorageMode = "cookie"
	// StorageHeader has clients send the token in a request header.
	StorageHeader StorageMode = "header"
)

// Token transport names.
const (
	CookieName          = "access_token"
	HeaderAuthorization = "Authorization"
	HeaderAccessToken   = "Access-Token"

	bearerPrefix = "Bearer "
)

// tokenHeaders are checked in order; the first one carrying a token wins.
var tokenHeaders = []string{HeaderAuthorization, HeaderAccessToken}

// ParseStorageMode parses "cookie" or "header".
func ParseStorageMode(s string) (StorageMode, error) {
	switch mode := StorageMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case StorageCookie, StorageHeader:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown storage mode %q (want cookie or header)", s)
	}
}

// ExtractToken returns the raw token carried by r under mode.
// A missing token is reported with ok=false and is not an error.
func ExtractToken(r *http.Request, mode StorageMode) (token string, ok bool) {
	if mode == StorageCookie {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}

	// Header.Get canonicalizes, so "authorization" and "ACCESS-TOKEN" match too.
	for _, name := range tokenHeaders {
		value := strings.TrimPrefix(r.Header.Get(name), bearerPrefix)
		if value == "" {
			continue
		}
		return value, true
	}
	return "", false
}
