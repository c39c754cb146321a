// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

// Package auth provides the in-process user directory: registration, login,
// sessions and the single-administrator rule.
//
// # Directory
//
// A Directory is created with NewDirectory and owns all state:
//   - users keyed by case-folded email (unique)
//   - the admin-assigned flag (set once, never reset)
//   - open sessions keyed by the sha256 of their token
//
// Login returns a plaintext token; token-taking methods (Logout, CurrentUser,
// UpdateProfile, Users, Stats) resolve the caller through it. Callers that
// prefer the one-session-per-caller style wrap a Directory with NewSession.
//
// # Snapshots
//
// Every User returned by this package is a copy. Mutations go through
// UpdateProfile, which edits the stored record, so later reads observe them.
//
// # Errors
//
// Rejections are oops errors in domain "registration" or "authentication"
// with one of the Code* constants. Use ErrorCode, IsRegistrationError and
// IsAuthenticationError to inspect them.
package auth
