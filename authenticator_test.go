package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthenticator(t *testing.T) (accounts.RepositoryManager, *accounts.Auther) {
	t.Helper()

	_, repo := setupTestDB(t)
	provider := accounts.NewAccountProvider(repo.Accounts())
	refresh := accounts.NewRefreshIdentityManager(repo)

	auther := accounts.NewAuthenticator(provider, refresh, accounts.TokenConfig{
		SigningKey:             "test-signing-key",
		Issuer:                 "accounts-test",
		TokenExpiration:        1,
		RefreshTokenExpiration: 72,
	})

	return repo, auther
}

func TestAutherLogin(t *testing.T) {
	repo, auther := setupAuthenticator(t)
	ctx := context.Background()

	account := storeAccount(t, repo, "Login User", "login@example.com", true)

	t.Run("valid credentials issue a pair and remember the jti", func(t *testing.T) {
		pair, err := auther.Login(ctx, "login@example.com", "password123")
		require.NoError(t, err)

		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

		claims, err := auther.TokenService().Validate(pair.RefreshToken)
		require.NoError(t, err)

		stored, err := repo.Accounts().FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, claims.TokenID(), stored.CurrentJTI())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auther.Login(ctx, "login@example.com", "wrong-password")
		assert.Equal(t, accounts.ErrMismatchedHashAndPassword, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := auther.Login(ctx, "nobody@example.com", "password123")
		assert.Equal(t, accounts.ErrMismatchedHashAndPassword, err)
	})
}

func TestAutherSessionFromRefreshToken(t *testing.T) {
	repo, auther := setupAuthenticator(t)
	ctx := context.Background()

	account := storeAccount(t, repo, "Session User", "session@example.com", true)

	pair, err := auther.Login(ctx, "session@example.com", "password123")
	require.NoError(t, err)

	t.Run("a remembered refresh token resolves its session", func(t *testing.T) {
		claims, err := auther.SessionFromRefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, account.ID.String(), claims.AccountID())
	})

	t.Run("a second login revokes the first refresh token", func(t *testing.T) {
		pair2, err := auther.Login(ctx, "session@example.com", "password123")
		require.NoError(t, err)

		_, err = auther.SessionFromRefreshToken(ctx, pair.RefreshToken)
		assert.Equal(t, accounts.ErrTokenRevoked, err)

		claims, err := auther.SessionFromRefreshToken(ctx, pair2.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, account.ID.String(), claims.AccountID())

		pair = pair2
	})

	t.Run("logout revokes the refresh session", func(t *testing.T) {
		require.NoError(t, auther.Logout(ctx, account.ID))

		_, err := auther.SessionFromRefreshToken(ctx, pair.RefreshToken)
		assert.Equal(t, accounts.ErrTokenRevoked, err)
	})

	t.Run("garbage tokens are malformed", func(t *testing.T) {
		_, err := auther.SessionFromRefreshToken(ctx, "not.a.token")
		require.Error(t, err)
		assert.NotEqual(t, accounts.ErrTokenRevoked, err)
	})
}

func TestAutherAccessTokenIsNotARefreshSession(t *testing.T) {
	repo, auther := setupAuthenticator(t)
	ctx := context.Background()

	storeAccount(t, repo, "Access User", "access@example.com", true)

	pair, err := auther.Login(ctx, "access@example.com", "password123")
	require.NoError(t, err)

	// the access token carries its own jti, which was never remembered
	_, err = auther.SessionFromRefreshToken(ctx, pair.AccessToken)
	assert.Equal(t, accounts.ErrTokenRevoked, err)
}
