package users

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig loads runtime settings from the environment. It satisfies the
// Config interface consumed by the token service and the JWT middleware.
type EnvConfig struct {
	SigningKey      string   `env:"AUTH_SIGNING_KEY,required"`
	SigningMethod   string   `env:"AUTH_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey      string   `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	TokenExpiration int      `env:"AUTH_TOKEN_EXPIRATION" envDefault:"72"`
	TokenLookup     string   `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string   `env:"AUTH_SCHEME" envDefault:"Bearer"`
	Issuer          string   `env:"AUTH_ISSUER" envDefault:"go-users"`
	Audience        []string `env:"AUTH_AUDIENCE" envSeparator:","`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8572"`

	Persistence Persistence `envPrefix:"DB_"`
}

// Persistence holds the store connection settings.
type Persistence struct {
	Debug                 bool   `env:"DEBUG" envDefault:"false"`
	Driver                string `env:"DRIVER" envDefault:"sqlite"`
	Server                string `env:"SERVER"`
	Database              string `env:"DATABASE" envDefault:"users"`
	DSN                   string `env:"DSN" envDefault:"file:users.db?cache=shared&mode=rwc"`
	OtelIdentifier        string `env:"OTEL_ID"`
	PingTimeoutExpression string `env:"PING_TIMEOUT" envDefault:"5s"`
}

// LoadConfig parses the process environment into an EnvConfig.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to parse environment configuration")
	}
	return cfg, nil
}

func (c EnvConfig) GetSigningKey() string { return c.SigningKey }
func (c EnvConfig) GetSigningMethod() string { return c.SigningMethod }
func (c EnvConfig) GetContextKey() string { return c.ContextKey }
func (c EnvConfig) GetTokenExpiration() int { return c.TokenExpiration }
func (c EnvConfig) GetTokenLookup() string { return c.TokenLookup }
func (c EnvConfig) GetAuthScheme() string { return c.AuthScheme }
func (c EnvConfig) GetIssuer() string { return c.Issuer }
func (c EnvConfig) GetAudience() []string { return c.Audience }
func (c EnvConfig) GetHTTPAddr() string { return c.HTTPAddr }

// GetPersistence returns the store settings block.
func (c EnvConfig) GetPersistence() Persistence { return c.Persistence }

func (p Persistence) GetDebug() bool { return p.Debug }
func (p Persistence) GetDriver() string { return p.Driver }
func (p Persistence) GetServer() string { return p.Server }
func (p Persistence) GetDatabase() string { return p.Database }
func (p Persistence) GetDSN() string { return p.DSN }
func (p Persistence) GetOtelIdentifier() string { return p.OtelIdentifier }

// GetPingTimeout parses the configured ping timeout expression.
func (p Persistence) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		return 5 * time.Second
	}
	return dur
}
