// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// PasswordPolicy is checked when a password hash is created, never at login.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool

	// MaxConsecutiveRepeats limits runs like "aaaa". Zero disables the check.
	MaxConsecutiveRepeats int

	ForbidCommonPasswords bool

	// ForbidNameSimilarity rejects passwords containing the user name or
	// contained in it.
	ForbidNameSimilarity bool
}

// DefaultPasswordPolicy is used for accounts with elevated roles.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             12,
		RequireUppercase:      true,
		RequireLowercase:      true,
		RequireDigit:          true,
		RequireSpecial:        true,
		MaxConsecutiveRepeats: 3,
		ForbidCommonPasswords: true,
		ForbidNameSimilarity:  true,
	}
}

// RelaxedPasswordPolicy is used for ordinary accounts.
func RelaxedPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             8,
		RequireLowercase:      true,
		RequireDigit:          true,
		MaxConsecutiveRepeats: 4,
		ForbidCommonPasswords: true,
		ForbidNameSimilarity:  true,
	}
}

// Validate returns every rule the password breaks, joined into one error,
// or nil.
func (p PasswordPolicy) Validate(password, name string) error {
	var errs []error

	if len(password) > maxPasswordBytes {
		errs = append(errs, fmt.Errorf("password must be at most %d bytes", maxPasswordBytes))
	}
	if len(password) < p.MinLength {
		errs = append(errs, fmt.Errorf("password must be at least %d characters (got %d)", p.MinLength, len(password)))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if p.RequireUppercase && !hasUpper {
		errs = append(errs, errors.New("password must contain at least one uppercase letter"))
	}
	if p.RequireLowercase && !hasLower {
		errs = append(errs, errors.New("password must contain at least one lowercase letter"))
	}
	if p.RequireDigit && !hasDigit {
		errs = append(errs, errors.New("password must contain at least one digit"))
	}
	if p.RequireSpecial && !hasSpecial {
		errs = append(errs, errors.New("password must contain at least one special character"))
	}

	if p.MaxConsecutiveRepeats > 0 && longestRun(password) > p.MaxConsecutiveRepeats {
		errs = append(errs, fmt.Errorf("password cannot have more than %d consecutive repeated characters", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommonPasswords && commonPasswords[strings.ToLower(password)] {
		errs = append(errs, errors.New("password is too common"))
	}
	if p.ForbidNameSimilarity && similarToName(password, name) {
		errs = append(errs, errors.New("password is too similar to the user name"))
	}

	return errors.Join(errs...)
}

func longestRun(s string) int {
	longest, run := 0, 0
	var last rune
	for i, r := range s {
		if i > 0 && r == last {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		last = r
	}
	return longest
}

func similarToName(password, name string) bool {
	if len(name) < 3 {
		return false
	}
	p, n := strings.ToLower(password), strings.ToLower(name)
	return strings.Contains(p, n) || strings.Contains(n, p)
}

var commonPasswords = map[string]bool{
	"123456": true, "12345678": true, "123456789": true, "1234567890": true,
	"password": true, "password1": true, "password123": true, "passw0rd": true,
	"p@ssw0rd": true, "qwerty": true, "qwerty123": true, "qwertyuiop": true,
	"abc123": true, "abcd1234": true, "1q2w3e4r": true, "1qaz2wsx": true,
	"admin": true, "admin123": true, "administrator": true, "root": true,
	"letmein": true, "welcome": true, "welcome1": true, "changeme": true,
	"secret": true, "default": true, "guest": true, "test123": true,
	"iloveyou": true, "monkey": true, "dragon": true, "trustno1": true,
	"gatekeeper": true, "gatekeeper1": true,
}
