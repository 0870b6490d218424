package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// AccountFinder is the store we need to resolve identities
type AccountFinder interface {
	FindActiveByEmail(ctx context.Context, email string) (*Account, error)
}

// AccountProvider resolves identities against the account store
type AccountProvider struct {
	store  AccountFinder
	logger Logger
}

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountFinder) *AccountProvider {
	return &AccountProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (p *AccountProvider) WithLogger(l Logger) *AccountProvider {
	p.logger = l
	return p
}

// VerifyIdentity will find the active account, compare the password,
// and return the identity. An unknown email and a wrong password
// produce the same generic error so callers can't probe which one
// failed. Deactivated accounts are invisible to authentication.
func (p AccountProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	account, err := p.store.FindActiveByEmail(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during verification")
	}

	if err := ComparePasswordAndHash(password, account.PasswordDigest); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return NewIdentityFromAccount(account), nil
}

func (p AccountProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	account, err := p.store.FindActiveByEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return NewIdentityFromAccount(account), nil
}

type accountIdentity struct {
	id    string
	name  string
	email string
}

// NewIdentityFromAccount returns an Identity adapter for the provided
// account.
func NewIdentityFromAccount(account *Account) Identity {
	if account == nil {
		return nil
	}
	return accountIdentity{
		id:    account.ID.String(),
		name:  account.Name,
		email: account.Email,
	}
}

func (a accountIdentity) ID() string {
	return a.id
}

func (a accountIdentity) Name() string {
	return a.name
}

func (a accountIdentity) Email() string {
	return a.email
}

var _ Identity = accountIdentity{}
