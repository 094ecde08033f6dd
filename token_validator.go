package users

import "strings"

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// BearerFromHeader extracts the raw token from an Authorization header
// value. A missing header, a non-Bearer scheme, or an empty token all
// report the same missing-token error.
func BearerFromHeader(authorization string) (string, error) {
	const scheme = "Bearer"

	authorization = strings.TrimSpace(authorization)
	if len(authorization) <= len(scheme)+1 {
		return "", ErrTokenMissing
	}

	if !strings.EqualFold(authorization[:len(scheme)], scheme) {
		return "", ErrTokenMissing
	}

	raw := strings.TrimSpace(authorization[len(scheme):])
	if raw == "" {
		return "", ErrTokenMissing
	}

	return raw, nil
}
