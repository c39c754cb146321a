// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input validation constraints.
const (
	MinNameLength     = 2
	MinPasswordLength = 6
	ContactLength     = 10
)

var (
	nameTag     = fmt.Sprintf("required,min=%d", MinNameLength)
	passwordTag = fmt.Sprintf("required,min=%d", MinPasswordLength)
	contactTag  = fmt.Sprintf("required,len=%d,number", ContactLength)
)

// Validator decides whether raw user input is well formed.
// Implementations must be pure and safe for concurrent use.
type Validator interface {
	IsValidName(name string) bool
	IsValidEmail(email string) bool
	IsValidPassword(password string) bool
	IsValidContact(contact string) bool
}

// DefaultValidator implements Validator with go-playground/validator tags.
type DefaultValidator struct {
	validate *validator.Validate
}

// NewDefaultValidator creates a DefaultValidator.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// IsValidName requires at least MinNameLength characters once surrounding
// whitespace is removed.
func (v *DefaultValidator) IsValidName(name string) bool {
	return v.validate.Var(strings.TrimSpace(name), nameTag) == nil
}

// IsValidEmail requires a syntactically valid address.
func (v *DefaultValidator) IsValidEmail(email string) bool {
	return v.validate.Var(strings.TrimSpace(email), "required,email") == nil
}

// IsValidPassword requires at least MinPasswordLength characters.
func (v *DefaultValidator) IsValidPassword(password string) bool {
	return v.validate.Var(password, passwordTag) == nil
}

// IsValidContact requires exactly ContactLength ASCII digits.
func (v *DefaultValidator) IsValidContact(contact string) bool {
	return v.validate.Var(contact, contactTag) == nil
}
