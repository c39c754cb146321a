// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/samber/oops"
)

// SessionTokenBytes is the number of random bytes in a session token
// (64 hex characters once encoded).
const SessionTokenBytes = 32

// GenerateSessionToken creates a secure random token and its hash.
// The plaintext token goes to the caller; only the hash is kept by the Directory.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	return token, HashSessionToken(token), nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Session is a caller-held handle onto a Directory. It keeps at most one
// session token and exposes the token-free session operations for that caller.
// Two handles never share a session.
type Session struct {
	dir *Directory

	mu    sync.Mutex
	token string
}

// NewSession returns a handle with no active session.
func (d *Directory) NewSession() *Session {
	return &Session{dir: d}
}

// Login authenticates and binds the handle to the user. A previous session
// held by this handle is ended first, but only once the new login succeeded.
func (s *Session) Login(ctx context.Context, email, password string) (User, error) {
	user, token, err := s.dir.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	previous := s.token
	s.token = token
	s.mu.Unlock()

	if previous != "" {
		s.dir.endSession(previous)
	}
	return user, nil
}

// Logout ends the handle's session. It is a no-op when none is active.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.mu.Unlock()

	s.dir.Logout(ctx, token)
}

// IsLoggedIn reports whether the handle holds a live session.
func (s *Session) IsLoggedIn() bool {
	return s.dir.IsLoggedIn(s.Token())
}

// CurrentUser returns a snapshot of the logged-in user.
func (s *Session) CurrentUser() (User, bool) {
	return s.dir.CurrentUser(s.Token())
}

// IsCurrentUserAdmin reports whether the logged-in user is the administrator.
func (s *Session) IsCurrentUserAdmin() bool {
	return s.dir.IsCurrentUserAdmin(s.Token())
}

// UpdateProfile changes the logged-in user's area and contact.
func (s *Session) UpdateProfile(ctx context.Context, area, contact string) error {
	return s.dir.UpdateProfile(ctx, s.Token(), area, contact)
}

// Users lists every registered user. Admin only.
func (s *Session) Users(ctx context.Context) ([]User, error) {
	return s.dir.Users(ctx, s.Token())
}

// Stats summarizes the directory. Admin only.
func (s *Session) Stats(ctx context.Context) (Stats, error) {
	return s.dir.Stats(ctx, s.Token())
}

// Token returns the plaintext session token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
