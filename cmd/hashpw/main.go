// Gatekeeper - Request-Time Authentication and Authorization Gate
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatekeeper

// Command hashpw prints a bcrypt hash for the users.seed section of the
// Gatekeeper configuration.
//
//	hashpw -name alice -strict            # prompts twice without echo
//	echo 's3cret-Pass!' | hashpw -cost 12 # reads one line from stdin
//
// The password is checked against the password policy first. -strict
// selects the policy for elevated roles, -force skips the check.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/tomtom215/gatekeeper/internal/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hashpw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost, must match security.bcrypt_cost")
	name := fs.String("name", "", "user name, rejects passwords similar to it")
	strict := fs.Bool("strict", false, "use the policy for elevated roles")
	force := fs.Bool("force", false, "skip the password policy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := readPassword(stdin, stderr)
	if err != nil {
		return err
	}
	return hashTo(stdout, password, *name, *cost, *strict, *force)
}

// hashTo validates password and writes its hash followed by a newline.
func hashTo(w io.Writer, password, name string, cost int, strict, force bool) error {
	if !force {
		policy := auth.RelaxedPasswordPolicy()
		if strict {
			policy = auth.DefaultPasswordPolicy()
		}
		if err := policy.Validate(password, name); err != nil {
			return err
		}
	}

	verifier, err := auth.NewBcryptVerifier(cost)
	if err != nil {
		return err
	}
	hash, err := verifier.Hash(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}

// readPassword prompts twice on a terminal and reads one line otherwise.
func readPassword(stdin *os.File, prompt io.Writer) (string, error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return "", errors.New("no password on stdin")
		}
		return line, nil
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	fmt.Fprint(prompt, "Repeat: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
