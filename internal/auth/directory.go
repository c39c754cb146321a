// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
)

// DefaultAdminEmail is the reserved administrator address used when
// Config.AdminEmail is empty.
const DefaultAdminEmail = "admin@nammatirupur.com"

// Operation names reported to the Recorder.
const (
	OpRegister      = "register"
	OpLogin         = "login"
	OpLogout        = "logout"
	OpUpdateProfile = "update_profile"
	OpListUsers     = "list_users"
	OpStats         = "stats"
)

// OutcomeOK is the outcome reported for a successful operation. Failed
// operations report their error code.
const OutcomeOK = "ok"

// dummyPasswordHash is verified against when an email is unknown so that the
// not-registered path costs as much as a wrong password.
//
//nolint:gosec // G101: intentionally fake hash, never matches any password.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Recorder receives the outcome of every directory operation.
type Recorder interface {
	RecordAuthOperation(operation, outcome string)
	SetUsersRegistered(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthOperation(string, string) {}
func (nopRecorder) SetUsersRegistered(int)             {}

// Config holds the collaborators of a Directory.
type Config struct {
	// AdminEmail is the only address the administrator may register with.
	// Defaults to DefaultAdminEmail.
	AdminEmail string

	Validator Validator
	IDs       IdentifierGenerator
	Hasher    PasswordHasher

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
	// Recorder defaults to a no-op.
	Recorder Recorder
	// Now defaults to time.Now.
	Now func() time.Time
}

// Stats summarizes the directory contents.
type Stats struct {
	Users          int
	Admins         int
	Members        int
	ActiveSessions int
}

// Directory is the authority over registered users and their sessions.
// All methods are safe for concurrent use.
type Directory struct {
	adminEmail string
	validator  Validator
	ids        IdentifierGenerator
	hasher     PasswordHasher
	logger     *slog.Logger
	recorder   Recorder
	now        func() time.Time

	mu            sync.RWMutex
	users         map[string]*User  // case-folded email -> user
	sessions      map[string]string // token hash -> case-folded email
	adminAssigned bool
}

// NewDirectory creates an empty Directory.
// Returns an error if a required collaborator is missing.
func NewDirectory(cfg Config) (*Directory, error) {
	if cfg.Validator == nil {
		return nil, oops.Errorf("validator is required")
	}
	if cfg.IDs == nil {
		return nil, oops.Errorf("identifier generator is required")
	}
	if cfg.Hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}

	d := &Directory{
		adminEmail: foldEmail(cfg.AdminEmail),
		validator:  cfg.Validator,
		ids:        cfg.IDs,
		hasher:     cfg.Hasher,
		logger:     cfg.Logger,
		recorder:   cfg.Recorder,
		now:        cfg.Now,
		users:      make(map[string]*User),
		sessions:   make(map[string]string),
	}
	if d.adminEmail == "" {
		d.adminEmail = DefaultAdminEmail
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if d.recorder == nil {
		d.recorder = nopRecorder{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// AdminEmail returns the reserved administrator address.
func (d *Directory) AdminEmail() string {
	return d.adminEmail
}

// Register creates a user. Checks run in a fixed order and the first failure
// is returned; nothing is stored unless every check passes.
// Registering does not log the user in.
func (d *Directory) Register(ctx context.Context, name, email, password, role string) (User, error) {
	user, err := d.register(name, email, password, role)
	if err != nil {
		d.reject(ctx, OpRegister, err, "email", foldEmail(email))
		return User{}, err
	}

	d.recorder.RecordAuthOperation(OpRegister, OutcomeOK)
	d.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role.String(),
	)
	return user, nil
}

func (d *Directory) register(name, email, password, roleName string) (User, error) {
	if !d.validator.IsValidName(name) {
		return User{}, registrationError(CodeInvalidName).
			With("min", MinNameLength).
			Errorf("invalid name: must be at least %d characters", MinNameLength)
	}
	if !d.validator.IsValidEmail(email) {
		return User{}, registrationError(CodeInvalidEmail).Errorf("invalid email format")
	}
	if !d.validator.IsValidPassword(password) {
		return User{}, registrationError(CodeInvalidPassword).
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	role, err := ParseRole(roleName)
	if err != nil {
		return User{}, err
	}

	key := foldEmail(email)

	// Hash outside the lock; argon2id is deliberately slow.
	hash, err := d.hasher.Hash(password)
	if err != nil {
		return User{}, registrationError(CodeRegistrationFailed).
			With("operation", "hash password").
			Wrap(err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[key]; exists {
		return User{}, registrationError(CodeEmailAlreadyRegistered).
			With("email", key).
			Errorf("email already registered")
	}

	if role == RoleAdmin {
		if d.adminAssigned {
			return User{}, registrationError(CodeAdminAlreadyRegistered).
				Errorf("admin already registered: only one admin is allowed")
		}
		if key != d.adminEmail {
			return User{}, registrationError(CodeInvalidAdminEmail).
				With("admin_email", d.adminEmail).
				Errorf("invalid admin email: admin must use %s", d.adminEmail)
		}
		d.adminAssigned = true
	}

	now := d.now()
	user := &User{
		ID:           d.ids.NewID(role),
		Name:         strings.TrimSpace(name),
		Email:        key,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.users[key] = user
	d.recorder.SetUsersRegistered(len(d.users))

	return *user, nil
}

// Login authenticates a user and opens a session for them.
// Returns the user snapshot and the plaintext session token.
func (d *Directory) Login(ctx context.Context, email, password string) (User, string, error) {
	user, token, err := d.login(email, password)
	if err != nil {
		d.reject(ctx, OpLogin, err, "email", foldEmail(email))
		return User{}, "", err
	}

	d.recorder.RecordAuthOperation(OpLogin, OutcomeOK)
	d.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

func (d *Directory) login(email, password string) (User, string, error) {
	if !d.validator.IsValidEmail(email) {
		return User{}, "", authenticationError(CodeInvalidEmailFormat).Errorf("invalid email format")
	}

	key := foldEmail(email)

	d.mu.RLock()
	stored, exists := d.users[key]
	var targetHash string
	if exists {
		targetHash = stored.PasswordHash
	}
	d.mu.RUnlock()

	if !exists {
		_, _ = d.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing only
		return User{}, "", authenticationError(CodeEmailNotRegistered).
			With("email", key).
			Errorf("email not registered")
	}

	valid, err := d.hasher.Verify(password, targetHash)
	if err != nil {
		return User{}, "", authenticationError(CodeLoginFailed).
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return User{}, "", authenticationError(CodeIncorrectPassword).Errorf("incorrect password")
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return User{}, "", authenticationError(CodeLoginFailed).
			With("operation", "generate session token").
			Wrap(err)
	}

	d.mu.Lock()
	d.sessions[tokenHash] = key
	snapshot := *d.users[key]
	d.mu.Unlock()

	return snapshot, token, nil
}

// Logout ends the session identified by token.
// Unknown or empty tokens are ignored.
func (d *Directory) Logout(ctx context.Context, token string) {
	email, ended := d.endSession(token)
	if !ended {
		return
	}
	d.recorder.RecordAuthOperation(OpLogout, OutcomeOK)
	d.logger.InfoContext(ctx, "user logged out", "email", email)
}

func (d *Directory) endSession(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	tokenHash := HashSessionToken(token)

	d.mu.Lock()
	defer d.mu.Unlock()
	email, ok := d.sessions[tokenHash]
	if ok {
		delete(d.sessions, tokenHash)
	}
	return email, ok
}

// sessionUserLocked resolves a token to the stored user. d.mu must be held.
func (d *Directory) sessionUserLocked(token string) (*User, bool) {
	if token == "" {
		return nil, false
	}
	email, ok := d.sessions[HashSessionToken(token)]
	if !ok {
		return nil, false
	}
	user, ok := d.users[email]
	return user, ok
}

// IsLoggedIn reports whether token identifies a live session.
func (d *Directory) IsLoggedIn(token string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.sessionUserLocked(token)
	return ok
}

// CurrentUser returns a snapshot of the user bound to token.
func (d *Directory) CurrentUser(token string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.sessionUserLocked(token)
	if !ok {
		return User{}, false
	}
	return *user, true
}

// IsCurrentUserAdmin reports whether token belongs to the administrator.
func (d *Directory) IsCurrentUserAdmin(token string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.sessionUserLocked(token)
	return ok && user.IsAdmin()
}

// IsAdminRegistered reports whether the administrator account exists.
func (d *Directory) IsAdminRegistered() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.adminAssigned
}

// UpdateProfile sets the area and contact of the logged-in user.
// An empty contact clears it; a non-empty one must be ContactLength digits.
func (d *Directory) UpdateProfile(ctx context.Context, token, area, contact string) error {
	user, err := d.updateProfile(token, area, contact)
	if err != nil {
		d.reject(ctx, OpUpdateProfile, err)
		return err
	}

	d.recorder.RecordAuthOperation(OpUpdateProfile, OutcomeOK)
	d.logger.InfoContext(ctx, "profile updated", "user_id", user.ID)
	return nil
}

func (d *Directory) updateProfile(token, area, contact string) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.sessionUserLocked(token)
	if !ok {
		return User{}, authenticationError(CodeNotLoggedIn).Errorf("please login first")
	}
	if contact != "" && !d.validator.IsValidContact(contact) {
		return User{}, authenticationError(CodeInvalidContact).
			With("length", ContactLength).
			Errorf("invalid contact number: must be %d digits", ContactLength)
	}

	user.Area = area
	user.Contact = contact
	user.UpdatedAt = d.now()
	return *user, nil
}

// Users returns snapshots of every registered user, newest first.
// Only the administrator may list users.
func (d *Directory) Users(ctx context.Context, token string) ([]User, error) {
	d.mu.RLock()
	caller, ok := d.sessionUserLocked(token)
	if !ok || !caller.IsAdmin() {
		d.mu.RUnlock()
		err := authenticationError(CodeAccessDenied).Errorf("access denied: admin only")
		d.reject(ctx, OpListUsers, err)
		return nil, err
	}
	users := make([]User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, *u)
	}
	d.mu.RUnlock()

	slices.SortFunc(users, func(a, b User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Email, b.Email)
	})

	d.recorder.RecordAuthOperation(OpListUsers, OutcomeOK)
	return users, nil
}

// Stats counts users by role and open sessions. Only the administrator may
// read them.
func (d *Directory) Stats(ctx context.Context, token string) (Stats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	caller, ok := d.sessionUserLocked(token)
	if !ok || !caller.IsAdmin() {
		err := authenticationError(CodeAccessDenied).Errorf("access denied: admin only")
		d.reject(ctx, OpStats, err)
		return Stats{}, err
	}

	stats := Stats{Users: len(d.users), ActiveSessions: len(d.sessions)}
	for _, u := range d.users {
		if u.IsAdmin() {
			stats.Admins++
		} else {
			stats.Members++
		}
	}

	d.recorder.RecordAuthOperation(OpStats, OutcomeOK)
	return stats, nil
}

// reject records and logs a failed operation.
func (d *Directory) reject(ctx context.Context, op string, err error, attrs ...any) {
	code := ErrorCode(err)
	d.recorder.RecordAuthOperation(op, code)
	d.logger.DebugContext(ctx, "operation rejected",
		append([]any{"operation", op, "code", code}, attrs...)...,
	)
}
