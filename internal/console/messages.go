// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package console

import (
	"fmt"

	"github.com/authdir/authdir/internal/auth"
)

var friendlyMessages = map[string]string{
	auth.CodeInvalidName:            fmt.Sprintf("Name must be at least %d characters.", auth.MinNameLength),
	auth.CodeInvalidEmail:           "Please enter a valid email address.",
	auth.CodeInvalidPassword:        fmt.Sprintf("Password must be at least %d characters.", auth.MinPasswordLength),
	auth.CodeInvalidRole:            "Role must be ADMIN or MEMBER.",
	auth.CodeEmailAlreadyRegistered: "That email is already registered.",
	auth.CodeAdminAlreadyRegistered: "An administrator is already registered.",
	auth.CodeInvalidAdminEmail:      "The administrator must register with the reserved admin email.",
	auth.CodeInvalidEmailFormat:     "Please enter a valid email address.",
	auth.CodeEmailNotRegistered:     "No account exists for that email.",
	auth.CodeIncorrectPassword:      "Incorrect password.",
	auth.CodeNotLoggedIn:            "You must log in first.",
	auth.CodeInvalidContact:         fmt.Sprintf("Contact must be exactly %d digits.", auth.ContactLength),
	auth.CodeAccessDenied:           "Only the administrator can do that.",
}

// Describe turns a Directory error into a message fit for the person at the
// console. Unknown errors get a generic message; their details stay in logs.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := friendlyMessages[auth.ErrorCode(err)]; ok {
		return msg
	}
	if auth.IsRegistrationError(err) {
		return "Registration failed. Please try again."
	}
	return "Request failed. Please try again."
}
