package jwtware_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-users/middleware/jwtware"
)

type stubClaims struct {
	subject string
}

func (c stubClaims) Subject() string     { return c.subject }
func (c stubClaims) UserID() string      { return c.subject }
func (c stubClaims) Expires() time.Time  { return time.Now().Add(time.Hour) }
func (c stubClaims) IssuedAt() time.Time { return time.Now() }

type stubValidator struct {
	claims jwtware.AuthClaims
	err    error
	seen   string
}

func (v *stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	v.seen = tokenString
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func passthroughErrorHandler(ctx router.Context, err error) error {
	return err
}

func TestJWTWare_BasicHeaderExtraction(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-1"}}

	resolved := map[string]any{"id": "user-1"}
	cfg := jwtware.Config{
		TokenValidator: validator,
		IdentityResolver: func(ctx context.Context, id string) (any, error) {
			if id != "user-1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return resolved, nil
		},
		ErrorHandler: passthroughErrorHandler,
	}

	middleware := jwtware.New(cfg)
	handler := middleware(func(ctx router.Context) error {
		return ctx.Next()
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer valid.token.here"
	ctx.On("GetString", "Authorization", "").Return("Bearer valid.token.here")
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "claims", mock.Anything).Return(nil)
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	err := handler(ctx)
	if err != nil {
		t.Fatalf("unexpected error for valid token: %v", err)
	}
	if !ctx.NextCalled {
		t.Errorf("expected NextCalled to be true, but got false")
	}
	if validator.seen != "valid.token.here" {
		t.Errorf("validator saw %q, want raw token", validator.seen)
	}
}

func TestJWTWare_MissingToken(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-1"}}

	cfg := jwtware.Config{
		TokenValidator: validator,
		IdentityResolver: func(ctx context.Context, id string) (any, error) {
			return nil, nil
		},
		ErrorHandler: passthroughErrorHandler,
	}

	middleware := jwtware.New(cfg)
	handler := middleware(nil)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := handler(ctx)
	if err == nil {
		t.Fatal("expected error for missing token, got nil")
	}
	if !strings.Contains(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		t.Errorf("expected missing token error, got: %v", err)
	}
}

func TestJWTWare_ValidatorErrorPropagates(t *testing.T) {
	wantErr := errors.New("token is expired")
	validator := &stubValidator{err: wantErr}

	cfg := jwtware.Config{
		TokenValidator: validator,
		IdentityResolver: func(ctx context.Context, id string) (any, error) {
			t.Fatal("resolver must not run for invalid tokens")
			return nil, nil
		},
		ErrorHandler: passthroughErrorHandler,
	}

	middleware := jwtware.New(cfg)
	handler := middleware(nil)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer expired.token.here"
	ctx.On("GetString", "Authorization", "").Return("Bearer expired.token.here")

	err := handler(ctx)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected validator error, got: %v", err)
	}
}

func TestJWTWare_ResolverErrorPropagates(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-1"}}
	wantErr := errors.New("user is inactive, talk with an admin")

	cfg := jwtware.Config{
		TokenValidator: validator,
		IdentityResolver: func(ctx context.Context, id string) (any, error) {
			return nil, wantErr
		},
		ErrorHandler: passthroughErrorHandler,
	}

	middleware := jwtware.New(cfg)
	handler := middleware(nil)

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer valid.token.here"
	ctx.On("GetString", "Authorization", "").Return("Bearer valid.token.here")
	ctx.On("Context").Return(context.Background())

	err := handler(ctx)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected resolver error, got: %v", err)
	}
	if ctx.NextCalled {
		t.Error("request must not proceed when the account cannot be resolved")
	}
}

func TestJWTWare_FilterSkipsAuthentication(t *testing.T) {
	validator := &stubValidator{err: errors.New("must not be called")}

	cfg := jwtware.Config{
		TokenValidator: validator,
		IdentityResolver: func(ctx context.Context, id string) (any, error) {
			t.Fatal("resolver must not run when filtered")
			return nil, nil
		},
		Filter: func(router.Context) bool {
			return true
		},
		ErrorHandler: passthroughErrorHandler,
	}

	middleware := jwtware.New(cfg)
	handler := middleware(nil)

	ctx := router.NewMockContext()

	err := handler(ctx)
	if err != nil {
		t.Fatalf("unexpected error for filtered request: %v", err)
	}
	if !ctx.NextCalled {
		t.Error("filtered requests should fall through to the next handler")
	}
	if validator.seen != "" {
		t.Error("validator must not run when filtered")
	}
}
