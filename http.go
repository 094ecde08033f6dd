package users

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users/middleware/jwtware"
)

// ErrorResponse is the JSON envelope for every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message    string            `json:"message"`
	TextCode   string            `json:"text_code,omitempty"`
	Validation map[string]string `json:"validation,omitempty"`
}

// HTTPErrorHandler maps rich errors onto JSON responses. Internal failures
// are logged with their metadata but reported with a generic message.
func HTTPErrorHandler(logger Logger) router.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c router.Context, err error) error {
		var richErr *errors.Error
		switch {
		case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
			richErr = ErrTokenMissing
		case !errors.As(err, &richErr):
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}

		status := richErr.Code
		if status == 0 {
			status = statusFromCategory(richErr.Category)
		}

		body := ErrorResponse{
			Error: ErrorBody{
				Message:  richErr.Message,
				TextCode: richErr.TextCode,
			},
		}

		if richErr.Category == errors.CategoryValidation {
			body.Error.Validation = richErr.ValidationMap()
		}

		if richErr.Category == errors.CategoryInternal {
			logger.Error(
				"request failed: %s details=%s",
				richErr.Message,
				print.MaybePrettyJSON(richErr.Metadata),
			)
			body.Error.Message = "Internal server error"
		}

		return c.JSON(status, body)
	}
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// tokenValidatorAdapter bridges the TokenService into the middleware's
// local validator interface.
type tokenValidatorAdapter struct {
	tokens TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ProtectedRoute builds the middleware guarding authenticated routes. The
// token is validated and the account it names is re-read from the store,
// so revoked or deactivated accounts are rejected even while their tokens
// are still unexpired.
func (s *Accounts) ProtectedRoute(cfg Config, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = HTTPErrorHandler(s.logger)
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: tokenValidatorAdapter{tokens: s.tokens},
		IdentityResolver: func(ctx context.Context, id string) (any, error) {
			return s.ResolveAccount(ctx, id)
		},
		ContextKey:     "claims",
		UserContextKey: cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		ContextEnricher: func(c context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(c, ac)
			}
			return c
		},
	})
}
