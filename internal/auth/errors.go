// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth

import "github.com/samber/oops"

// Error domains. Every rejected operation carries exactly one of them.
const (
	DomainRegistration   = "registration"
	DomainAuthentication = "authentication"
)

// Registration error codes.
const (
	CodeInvalidName            = "REG_INVALID_NAME"
	CodeInvalidEmail           = "REG_INVALID_EMAIL"
	CodeInvalidPassword        = "REG_INVALID_PASSWORD"
	CodeInvalidRole            = "REG_INVALID_ROLE"
	CodeEmailAlreadyRegistered = "REG_EMAIL_TAKEN"
	CodeAdminAlreadyRegistered = "REG_ADMIN_EXISTS"
	CodeInvalidAdminEmail      = "REG_INVALID_ADMIN_EMAIL"
	CodeRegistrationFailed     = "REG_FAILED"
)

// Authentication error codes.
const (
	CodeInvalidEmailFormat = "AUTH_INVALID_EMAIL_FORMAT"
	CodeEmailNotRegistered = "AUTH_EMAIL_NOT_REGISTERED"
	CodeIncorrectPassword  = "AUTH_INCORRECT_PASSWORD"
	CodeNotLoggedIn        = "AUTH_NOT_LOGGED_IN"
	CodeInvalidContact     = "AUTH_INVALID_CONTACT"
	CodeAccessDenied       = "AUTH_ACCESS_DENIED"
	CodeLoginFailed        = "AUTH_LOGIN_FAILED"
)

func registrationError(code string) oops.OopsErrorBuilder {
	return oops.In(DomainRegistration).Code(code)
}

func authenticationError(code string) oops.OopsErrorBuilder {
	return oops.In(DomainAuthentication).Code(code)
}

// IsRegistrationError reports whether err was raised by Register.
func IsRegistrationError(err error) bool {
	return hasDomain(err, DomainRegistration)
}

// IsAuthenticationError reports whether err was raised by a login or
// session-gated operation.
func IsAuthenticationError(err error) bool {
	return hasDomain(err, DomainAuthentication)
}

// ErrorCode returns the oops code carried by err, or "" when there is none.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := any(oopsErr.Code()).(string)
	return code
}

func hasDomain(err error, domain string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Domain() == domain
}
