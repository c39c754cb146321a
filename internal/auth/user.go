// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth

import (
	"strings"
	"time"
)

// Role is the privilege level assigned to a user at registration.
type Role string

// Known roles.
const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole parses a role name case-insensitively.
// Anything other than ADMIN or MEMBER is rejected with CodeInvalidRole.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", registrationError(CodeInvalidRole).
			With("role", s).
			Errorf("invalid role %q: must be ADMIN or MEMBER", s)
	}
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// User represents a registered account.
//
// Values handed out by Directory are snapshots; changing a returned User does
// not change the registry.
type User struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Email        string    `json:"email" yaml:"email"`
	PasswordHash string    `json:"-" yaml:"-"`
	Role         Role      `json:"role" yaml:"role"`
	Area         string    `json:"area,omitempty" yaml:"area,omitempty"`
	Contact      string    `json:"contact,omitempty" yaml:"contact,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// IsAdmin returns true if the user holds the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// foldEmail normalizes an email address for use as a registry key.
func foldEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
