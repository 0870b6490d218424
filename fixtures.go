package accounts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// AccountsActiveEmailIndexSQL backs invariant enforcement at the
// storage layer: the advisory uniqueness check can race with a
// concurrent write, so the partial index is the actual guarantee.
var AccountsActiveEmailIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS accounts_active_email_idx ON accounts (email) WHERE activated;`

// CreateSchema provisions the accounts table and its partial unique
// index. Meant for fixtures and embedded test databases; production
// schema management belongs to the storage collaborator.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, AccountsActiveEmailIndexSQL); err != nil {
		return err
	}

	return nil
}

// SeedAccounts ensures n activated accounts user0..user{n-1} at
// example.com exist with password "password", find-or-create style.
// The digest is computed once and shared; hashing per row makes large
// seeds unreasonably slow.
func SeedAccounts(ctx context.Context, repo RepositoryManager, n int) error {
	digest, err := HashPassword("password")
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("user%d", i)
		email := fmt.Sprintf("%s@example.com", name)

		_, err := repo.Accounts().FindActiveByEmail(ctx, email)
		if err == nil {
			continue
		}
		if !repository.IsRecordNotFound(err) {
			return err
		}

		account := &Account{
			Name:           name,
			Email:          email,
			PasswordDigest: digest,
			Activated:      true,
		}

		if _, err := repo.Accounts().Register(ctx, account); err != nil {
			return err
		}
	}

	return nil
}

// SeedDeactivatedAccount adds a non-activated account holding email.
// Deactivated rows sit outside the uniqueness constraint and outside
// authentication lookups, which makes them useful fixtures.
func SeedDeactivatedAccount(ctx context.Context, repo RepositoryManager, name, email string) (*Account, error) {
	account := &Account{
		Name:           name,
		Email:          email,
		PasswordDigest: RandomPasswordHash(),
		Activated:      false,
	}

	return repo.Accounts().Register(ctx, account)
}
