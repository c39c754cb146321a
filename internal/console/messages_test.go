// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdir/authdir/internal/auth"
)

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))
	assert.Equal(t, "Request failed. Please try again.", Describe(errors.New("boom")))

	dir, err := auth.NewDirectory(auth.Config{
		Validator: auth.NewDefaultValidator(),
		IDs:       auth.NewULIDGenerator(),
		Hasher:    auth.NewArgon2idHasherWithParams(1024, 1, 1),
	})
	require.NoError(t, err)

	_, err = dir.Register(context.Background(), "Asha", "asha@example.com", "secret1", "root")
	require.Error(t, err)
	assert.Equal(t, "Role must be ADMIN or MEMBER.", Describe(err))

	_, _, err = dir.Login(context.Background(), "ghost@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "No account exists for that email.", Describe(err))
}

func TestFriendlyMessagesCoverEveryUserFacingCode(t *testing.T) {
	codes := []string{
		auth.CodeInvalidName,
		auth.CodeInvalidEmail,
		auth.CodeInvalidPassword,
		auth.CodeInvalidRole,
		auth.CodeEmailAlreadyRegistered,
		auth.CodeAdminAlreadyRegistered,
		auth.CodeInvalidAdminEmail,
		auth.CodeInvalidEmailFormat,
		auth.CodeEmailNotRegistered,
		auth.CodeIncorrectPassword,
		auth.CodeNotLoggedIn,
		auth.CodeInvalidContact,
		auth.CodeAccessDenied,
	}
	for _, code := range codes {
		assert.NotEmpty(t, friendlyMessages[code], code)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantCmd string
		wantArg string
	}{
		{"bare", "login", "login", ""},
		{"upper case", "WHOAMI", "whoami", ""},
		{"with glob", "users *@example.com", "users", "*@example.com"},
		{"empty", "", "", ""},
		{"whitespace", "  users   a*  ", "users", "a*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, arg := parseCommand(tt.input)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}
