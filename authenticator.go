package accounts

import (
	"context"
	"reflect"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenPair bundles a short lived access token and the refresh token
// whose identity is remembered server side.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Auther struct {
	provider     IdentityProvider
	refresh      *RefreshIdentityManager
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, refresh *RefreshIdentityManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetRefreshTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		refresh:      refresh,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService overrides the default token service.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies credentials and issues an access/refresh pair. The
// refresh token's jti is remembered before the pair is returned;
// issuing a new pair invalidates any previously issued refresh token
// for the account.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	var err error
	var identity Identity

	if identity, err = s.provider.VerifyIdentity(ctx, identifier, password); err != nil {
		s.logger.Error("Login verify identity error: %v", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrAccountNotFound
	}

	accountID, err := uuid.Parse(identity.ID())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "identity carries a malformed account id")
	}

	access, err := s.tokenService.Generate(identity)
	if err != nil {
		return nil, err
	}

	refreshToken, jti, err := s.tokenService.GenerateRefresh(identity)
	if err != nil {
		return nil, err
	}

	if _, err := s.refresh.Remember(ctx, accountID, jti); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the account's refresh session.
func (s *Auther) Logout(ctx context.Context, accountID uuid.UUID) error {
	_, err := s.refresh.Forget(ctx, accountID)
	return err
}

// SessionFromRefreshToken validates a presented refresh token:
// signature and expiry first, then the jti against the account's
// stored refresh identity. A mismatch reports a revoked token, never a
// missing account.
func (s *Auther) SessionFromRefreshToken(ctx context.Context, raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromRefreshToken validation failed: %v", err)
		return nil, err
	}

	accountID, err := uuid.Parse(claims.AccountID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	if err := s.refresh.Verify(ctx, accountID, claims.TokenID()); err != nil {
		return nil, err
	}

	return claims, nil
}

var _ Authenticator = (*Auther)(nil)
