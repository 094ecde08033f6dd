package users

import (
	"github.com/goliatone/go-router"
)

// RequireRole guards a route behind a minimum role. It runs after
// ProtectedRoute, reading the account the resolver stored in the request
// locals. Role checks never trust token claims; the store is the source of
// truth for what an account may do.
func RequireRole(minimum UserRole, contextKey string, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	if contextKey == "" {
		contextKey = "user"
	}

	if errorHandler == nil {
		errorHandler = HTTPErrorHandler(nil)
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			record, ok := GetRouterUser(c, contextKey)
			if !ok {
				return errorHandler(c, ErrTokenNotValid)
			}

			if !record.Role.IsAtLeast(minimum) {
				return errorHandler(c, ErrInsufficientRole)
			}

			return c.Next()
		}
	}
}
