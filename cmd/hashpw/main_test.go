// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashTo(t *testing.T) {
	var out bytes.Buffer
	if err := hashTo(&out, "horses42", "bob", bcrypt.MinCost, false, false); err != nil {
		t.Fatalf("hashTo() error = %v", err)
	}

	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("horses42")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != bcrypt.MinCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.MinCost)
	}
}

func TestHashTo_Policy(t *testing.T) {
	var out bytes.Buffer

	if err := hashTo(&out, "horses42", "", bcrypt.MinCost, true, false); err == nil {
		t.Error("strict policy accepted a password without uppercase or special characters")
	}
	if err := hashTo(&out, "password123", "", bcrypt.MinCost, false, false); err == nil {
		t.Error("relaxed policy accepted a common password")
	}
	if err := hashTo(&out, "password123", "", bcrypt.MinCost, false, true); err != nil {
		t.Errorf("-force should skip the policy, got %v", err)
	}
	if err := hashTo(&out, "horses42", "", 99, false, false); err == nil {
		t.Error("out of range cost accepted")
	}
}

func TestRun_ReadsStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte("horses42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	stdin, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer stdin.Close()

	var out, errOut bytes.Buffer
	if err := run([]string{"-cost", "4"}, stdin, &out, &errOut); err != nil {
		t.Fatalf("run() error = %v (%s)", err, errOut.String())
	}
	if !strings.HasPrefix(out.String(), "$2a$04$") {
		t.Errorf("output = %q, want a cost 4 bcrypt hash", out.String())
	}
}
