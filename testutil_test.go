package accounts_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*bun.DB, accounts.RepositoryManager) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// every new connection would be a fresh in-memory database
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, accounts.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db, accounts.NewRepositoryManager(db)
}

var (
	digestOnce sync.Once
	digestVal  string
)

// sharedDigest hashes a well-known secret once per test binary; bcrypt
// at production cost is too slow to run per test case.
func sharedDigest(t *testing.T) string {
	t.Helper()

	digestOnce.Do(func() {
		d, err := accounts.HashPassword("password123")
		if err != nil {
			t.Fatalf("hashing shared test secret: %v", err)
		}
		digestVal = d
	})

	return digestVal
}

func storeAccount(t *testing.T, repo accounts.RepositoryManager, name, email string, activated bool) *accounts.Account {
	t.Helper()

	account, err := repo.Accounts().Register(context.Background(), &accounts.Account{
		Name:           name,
		Email:          email,
		PasswordDigest: sharedDigest(t),
		Activated:      activated,
	})
	require.NoError(t, err)

	return account
}
