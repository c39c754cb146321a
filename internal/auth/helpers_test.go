// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/authdir/authdir/internal/auth"
)

// plainHasher keeps tests fast; it is obviously not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", auth.ErrEmptyPassword
	}
	return "plain$" + password, nil
}

func (plainHasher) Verify(password, hash string) (bool, error) {
	return hash == "plain$"+password, nil
}

type mockHasher struct {
	mock.Mock
}

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordAuthOperation(operation, outcome string) {
	m.Called(operation, outcome)
}

func (m *mockRecorder) SetUsersRegistered(n int) {
	m.Called(n)
}

// stepClock returns a time that advances one second per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func testConfig() auth.Config {
	return auth.Config{
		Validator: auth.NewDefaultValidator(),
		IDs:       auth.NewULIDGenerator(),
		Hasher:    plainHasher{},
		Now:       newStepClock().Now,
	}
}

func newTestDirectory(t *testing.T) *auth.Directory {
	t.Helper()
	dir, err := auth.NewDirectory(testConfig())
	require.NoError(t, err)
	return dir
}
