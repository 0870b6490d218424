package accounts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Name() string
	Email() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*TokenPair, error)
	Logout(ctx context.Context, accountID uuid.UUID) error
	SessionFromRefreshToken(ctx context.Context, raw string) (AuthClaims, error)
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds token options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetIssuer() string
	GetAudience() []string
	GetTokenExpiration() int
	GetRefreshTokenExpiration() int
}

// TokenConfig is a plain Config implementation. Expirations are hours.
type TokenConfig struct {
	SigningKey             string
	SigningMethod          string
	Issuer                 string
	Audience               []string
	TokenExpiration        int
	RefreshTokenExpiration int
}

func (c TokenConfig) GetSigningKey() string          { return c.SigningKey }
func (c TokenConfig) GetSigningMethod() string       { return c.SigningMethod }
func (c TokenConfig) GetIssuer() string              { return c.Issuer }
func (c TokenConfig) GetAudience() []string          { return c.Audience }
func (c TokenConfig) GetTokenExpiration() int        { return c.TokenExpiration }
func (c TokenConfig) GetRefreshTokenExpiration() int { return c.RefreshTokenExpiration }

var _ Config = TokenConfig{}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
