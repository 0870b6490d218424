package accounts

import (
	"context"
	"crypto/subtle"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// RefreshIdentityManager tracks which refresh token identity (JTI) is
// currently trusted for an account, enabling server-side revocation.
type RefreshIdentityManager struct {
	repo   RepositoryManager
	logger Logger
}

func NewRefreshIdentityManager(repo RepositoryManager) *RefreshIdentityManager {
	return &RefreshIdentityManager{
		repo:   repo,
		logger: defLogger{},
	}
}

func (m *RefreshIdentityManager) WithLogger(l Logger) *RefreshIdentityManager {
	m.logger = l
	return m
}

// Remember persists jti as the account's current refresh identity,
// replacing any prior value unconditionally. A failed write surfaces:
// silently swallowing it would mean a token was issued that the server
// can never validate.
func (m *RefreshIdentityManager) Remember(ctx context.Context, accountID uuid.UUID, jti string) (*Account, error) {
	account, err := m.repo.Accounts().RememberRefreshJTI(ctx, accountID, jti)
	if err != nil {
		m.logger.Error("failed to remember refresh identity for %s: %v", accountID, err)
		if repository.IsRecordNotFound(err) {
			return nil, err
		}
		return nil, NewPersistenceError(err, "failed to persist refresh identity")
	}
	return account, nil
}

// Forget clears the stored refresh identity. Used on logout or
// explicit revocation; same failure semantics as Remember.
func (m *RefreshIdentityManager) Forget(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	account, err := m.repo.Accounts().ForgetRefreshJTI(ctx, accountID)
	if err != nil {
		m.logger.Error("failed to forget refresh identity for %s: %v", accountID, err)
		if repository.IsRecordNotFound(err) {
			return nil, err
		}
		return nil, NewPersistenceError(err, "failed to clear refresh identity")
	}
	return account, nil
}

// Verify checks a presented JTI against the account's stored value.
// A mismatch, a missing account, or no active refresh session all
// report ErrTokenRevoked rather than a not-found, so token probes
// can't distinguish revocation from unknown accounts.
func (m *RefreshIdentityManager) Verify(ctx context.Context, accountID uuid.UUID, jti string) error {
	account, err := m.repo.Accounts().FindByID(ctx, accountID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrTokenRevoked
		}
		return NewPersistenceError(err, "failed to load account for refresh verification")
	}

	if !VerifyJTI(account, jti) {
		return ErrTokenRevoked
	}

	return nil
}

// VerifyJTI reports whether jti matches the account's trusted refresh
// identity. A nil stored value never matches.
func VerifyJTI(account *Account, jti string) bool {
	if account == nil || !account.HasRefreshSession() || jti == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(account.CurrentJTI()), []byte(jti)) == 1
}
