// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID prefixes by role.
const (
	AdminIDPrefix  = "ADM"
	MemberIDPrefix = "USR"
)

// IdentifierGenerator produces durable user identifiers.
// Every call must return a value never returned before.
type IdentifierGenerator interface {
	NewID(role Role) string
}

// ULIDGenerator produces identifiers of the form "ADM-<ulid>" or "USR-<ulid>".
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewULIDGenerator creates a ULIDGenerator backed by monotonic crypto/rand entropy.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewID returns a fresh identifier prefixed for the role.
func (g *ULIDGenerator) NewID(role Role) string {
	g.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
	g.mu.Unlock()

	return IDPrefix(role) + "-" + id.String()
}

// IDPrefix returns the identifier prefix used for role.
func IDPrefix(role Role) string {
	if role == RoleAdmin {
		return AdminIDPrefix
	}
	return MemberIDPrefix
}
