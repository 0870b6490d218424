package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshIdentityManagerLifecycle(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	manager := accounts.NewRefreshIdentityManager(repo)

	account := storeAccount(t, repo, "Session User", "session@example.com", true)

	t.Run("remember stores the identity", func(t *testing.T) {
		updated, err := manager.Remember(ctx, account.ID, "jti-1")
		require.NoError(t, err)
		assert.Equal(t, "jti-1", updated.CurrentJTI())
		assert.NoError(t, manager.Verify(ctx, account.ID, "jti-1"))
	})

	t.Run("a newer identity revokes the previous one", func(t *testing.T) {
		_, err := manager.Remember(ctx, account.ID, "jti-2")
		require.NoError(t, err)

		assert.NoError(t, manager.Verify(ctx, account.ID, "jti-2"))

		err = manager.Verify(ctx, account.ID, "jti-1")
		assert.Equal(t, accounts.ErrTokenRevoked, err)
	})

	t.Run("forget revokes everything", func(t *testing.T) {
		cleared, err := manager.Forget(ctx, account.ID)
		require.NoError(t, err)
		assert.False(t, cleared.HasRefreshSession())

		err = manager.Verify(ctx, account.ID, "jti-2")
		assert.Equal(t, accounts.ErrTokenRevoked, err)
	})
}

func TestRefreshIdentityManagerUnknownAccount(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	manager := accounts.NewRefreshIdentityManager(repo)

	// verification against a missing account reads as revoked, not as
	// not-found, so token probes learn nothing about account existence
	err := manager.Verify(ctx, uuid.New(), "jti-x")
	assert.Equal(t, accounts.ErrTokenRevoked, err)

	// remember and forget surface the missing row as a not-found, not
	// as a persistence failure
	_, err = manager.Remember(ctx, uuid.New(), "jti-x")
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = manager.Forget(ctx, uuid.New())
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestVerifyJTI(t *testing.T) {
	jti := "trusted-jti"

	tests := []struct {
		name    string
		account *accounts.Account
		jti     string
		want    bool
	}{
		{
			name:    "Matching identity",
			account: &accounts.Account{RefreshJTI: &jti},
			jti:     "trusted-jti",
			want:    true,
		},
		{
			name:    "Mismatched identity",
			account: &accounts.Account{RefreshJTI: &jti},
			jti:     "other-jti",
			want:    false,
		},
		{
			name:    "No active session",
			account: &accounts.Account{},
			jti:     "trusted-jti",
			want:    false,
		},
		{
			name:    "Empty presented identity",
			account: &accounts.Account{RefreshJTI: &jti},
			jti:     "",
			want:    false,
		},
		{
			name:    "Nil account",
			account: nil,
			jti:     "trusted-jti",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accounts.VerifyJTI(tt.account, tt.jti))
		})
	}
}
