package accounts_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() accounts.Identity {
	return accounts.NewIdentityFromAccount(&accounts.Account{
		ID:    uuid.New(),
		Name:  "Token User",
		Email: "token@example.com",
	})
}

func newTestTokenService(tokenExpiration int) accounts.TokenService {
	return accounts.NewTokenService(
		[]byte("test-signing-key"),
		tokenExpiration,
		tokenExpiration,
		"accounts-test",
		jwt.ClaimStrings{"accounts-clients"},
		nil,
	)
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	service := newTestTokenService(1)
	identity := testIdentity()

	token, err := service.Generate(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, identity.ID(), claims.Subject())
	assert.Equal(t, identity.ID(), claims.AccountID())
	assert.NotEmpty(t, claims.TokenID())
	assert.True(t, claims.Expires().After(claims.IssuedAt()))
}

func TestTokenServiceGenerateRefresh(t *testing.T) {
	service := newTestTokenService(1)
	identity := testIdentity()

	token, jti, err := service.GenerateRefresh(identity)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	// the returned jti is the one embedded in the token, so callers can
	// remember it server side
	assert.Equal(t, jti, claims.TokenID())

	_, jti2, err := service.GenerateRefresh(identity)
	require.NoError(t, err)
	assert.NotEqual(t, jti, jti2)
}

func TestTokenServiceValidateErrors(t *testing.T) {
	service := newTestTokenService(1)
	identity := testIdentity()

	t.Run("expired token", func(t *testing.T) {
		expired := newTestTokenService(-1)
		token, err := expired.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.Equal(t, accounts.ErrTokenExpired, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := service.Validate("not.a.token")
		require.Error(t, err)

		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich))
		assert.Equal(t, accounts.TextCodeTokenMalformed, rich.TextCode)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other := accounts.NewTokenService(
			[]byte("some-other-key"),
			1, 1,
			"accounts-test",
			jwt.ClaimStrings{"accounts-clients"},
			nil,
		)
		token, err := other.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.Error(t, err)

		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich))
		assert.Equal(t, accounts.TextCodeTokenMalformed, rich.TextCode)
	})

	t.Run("token from a different issuer", func(t *testing.T) {
		other := accounts.NewTokenService(
			[]byte("test-signing-key"),
			1, 1,
			"someone-else",
			jwt.ClaimStrings{"accounts-clients"},
			nil,
		)
		token, err := other.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.Error(t, err)
	})
}

func TestTokenServiceSignClaims(t *testing.T) {
	service := newTestTokenService(1)

	_, err := service.SignClaims(nil)
	assert.Error(t, err)
}
