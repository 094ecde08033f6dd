package users

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// AccountService is the surface the HTTP boundary consumes.
type AccountService interface {
	Login(ctx context.Context, email, password string) (*UserRecord, string, error)
	Register(ctx context.Context, username, email, password string) (*UserRecord, error)
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	List(ctx context.Context) ([]*UserRecord, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*UserRecord, error)
	Deactivate(ctx context.Context, id string) (*UserRecord, error)
	AuthStatus(ctx context.Context, record *UserRecord) (*AuthStatusRecord, error)
	Authenticate(ctx context.Context, authorization string) (*UserRecord, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USERS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USERS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USERS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
