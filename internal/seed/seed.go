// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

// Package seed registers a fixed list of users into a Directory at startup.
//
// Seed files are YAML:
//
//	users:
//	  - name: Admin
//	    email: admin@nammatirupur.com
//	    password: change-me
//	    role: ADMIN
package seed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/authdir/authdir/internal/auth"
)

// User is one seed entry.
type User struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// File is a parsed seed file.
type File struct {
	Users []User `yaml:"users"`
}

// Registrar registers users. *auth.Directory implements it.
type Registrar interface {
	Register(ctx context.Context, name, email, password, role string) (auth.User, error)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, oops.Code("SEED_INVALID").Wrapf(err, "invalid seed file")
	}
	return f, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied seed path
	if err != nil {
		return File{}, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, oops.With("path", path).Wrap(err)
	}
	return f, nil
}

// Apply registers every user in order and stops at the first failure.
// The returned error keeps the registration code and adds the entry index.
// It returns how many users were registered.
func Apply(ctx context.Context, r Registrar, f File, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for i, u := range f.Users {
		if err := ctx.Err(); err != nil {
			return i, oops.With("index", i).Wrap(err)
		}
		user, err := r.Register(ctx, u.Name, u.Email, u.Password, u.Role)
		if err != nil {
			return i, oops.
				With("index", i).
				With("email", u.Email).
				Wrapf(err, "seed user %d", i)
		}
		logger.InfoContext(ctx, "seeded user", "user_id", user.ID, "email", user.Email, "role", user.Role.String())
	}
	return len(f.Users), nil
}
