package users

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeTokenMissing       = "token_missing"
	TextCodeTokenExpired       = "token_expired"
	TextCodeTokenMalformed     = "token_malformed"
	TextCodeTokenNotValid      = "token_not_valid"
	TextCodeUserInactive       = "user_inactive"
	TextCodeUserNotFound       = "user_not_found"
	TextCodeEmptyValue         = "empty_value"
	TextCodePasswordMismatch   = "password_mismatch"
	TextCodeInsufficientRole   = "insufficient_role"
)

// ErrInvalidCredentials is returned for every login failure: unknown email,
// inactive account, and wrong password all collapse into this one error so
// callers cannot tell which case occurred.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMissing is returned when a request carries no bearer token.
var ErrTokenMissing = errors.New("missing or malformed bearer token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token is past its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token fails signature or shape checks.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenNotValid is returned when a verified token resolves to an account
// that no longer exists.
var ErrTokenNotValid = errors.New("token not valid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenNotValid).
	WithCode(errors.CodeUnauthorized)

// ErrUserInactive is returned when a verified token resolves to a
// deactivated account. The message deliberately differs from
// ErrTokenNotValid; login is the only flow that hides the distinction.
var ErrUserInactive = errors.New("user is inactive, talk with an admin", errors.CategoryAuth).
	WithTextCode(TextCodeUserInactive).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound is returned when a direct lookup, update, or deactivation
// targets a missing or already-inactive account.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrInsufficientRole is returned when the resolved account sits below the
// role a route demands.
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString is returned when a required value is empty.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyValue).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the low level bcrypt mismatch error.
// Login translates it into ErrInvalidCredentials before it leaves the service.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeUnauthorized)

// WrapInternal passes known rich errors through untouched and collapses
// everything else into a generic internal error, keeping store error text
// and stack detail out of responses.
func WrapInternal(err error, msg string) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}

	return errors.Wrap(err, errors.CategoryInternal, msg)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return false
}
