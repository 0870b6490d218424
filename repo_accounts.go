package accounts

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var RememberRefreshJTISQL = `UPDATE "accounts" AS "acc"
SET
	"refresh_jti" = ?,
	"updated_at" = ?
WHERE (
	"acc"."id" = ?
) RETURNING *;`

var ForgetRefreshJTISQL = `UPDATE "accounts" AS "acc"
SET
	"refresh_jti" = NULL,
	"updated_at" = ?
WHERE (
	"acc"."id" = ?
) RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	Register(ctx context.Context, account *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)
	FindActiveByEmail(ctx context.Context, email string) (*Account, error)
	FindActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)

	EmailTakenByAnother(ctx context.Context, accountID uuid.UUID, email string) (bool, error)
	EmailTakenByAnotherTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, email string) (bool, error)

	UpdateFields(ctx context.Context, id uuid.UUID, record *Account, columns ...string) (*Account, error)
	UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, record *Account, columns ...string) (*Account, error)

	RememberRefreshJTI(ctx context.Context, id uuid.UUID, jti string) (*Account, error)
	RememberRefreshJTITx(ctx context.Context, tx bun.IDB, id uuid.UUID, jti string) (*Account, error)
	ForgetRefreshJTI(ctx context.Context, id uuid.UUID) (*Account, error)
	ForgetRefreshJTITx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)
}

type accountsRepo struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accountsRepo)(nil)
	_ repository.Repository[*Account] = (*accountsRepo)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accountsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *accountsRepo) Register(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, account)
}

func (a *accountsRepo) RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	return a.CreateTx(ctx, tx, account)
}

func (a *accountsRepo) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accountsRepo) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accountsRepo) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.FindByIDTx(ctx, a.db, id)
}

func (a *accountsRepo) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) FindActiveByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindActiveByEmailTx(ctx, a.db, email)
}

// FindActiveByEmailTx normalizes the input so lookups observe the same
// canonical form the store writes.
func (a *accountsRepo) FindActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Where("?TableAlias.activated").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": NormalizeEmail(email),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) EmailTakenByAnother(ctx context.Context, accountID uuid.UUID, email string) (bool, error) {
	return a.EmailTakenByAnotherTx(ctx, a.db, accountID, email)
}

// EmailTakenByAnotherTx reports whether an activated account other than
// accountID already holds the normalized email. The check excludes the
// record under test so an account never collides with itself on update.
// It is advisory; the partial unique index on (email) WHERE activated
// is the last line of defense against races.
func (a *accountsRepo) EmailTakenByAnotherTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID, email string) (bool, error) {
	q := tx.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.activated").
		Where("?TableAlias.email = ?", NormalizeEmail(email))

	if accountID != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", accountID)
	}

	return q.Exists(ctx)
}

func (a *accountsRepo) UpdateFields(ctx context.Context, id uuid.UUID, record *Account, columns ...string) (*Account, error) {
	return a.UpdateFieldsTx(ctx, a.db, id, record, columns...)
}

// UpdateFieldsTx writes only the named columns, leaving everything else
// untouched. Partial updates must not clobber fields the caller never
// supplied.
func (a *accountsRepo) UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, record *Account, columns ...string) (*Account, error) {
	now := time.Now()
	record.UpdatedAt = &now
	columns = append(columns, "updated_at")

	res, err := tx.NewUpdate().
		Model(record).
		Column(columns...).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return a.FindByIDTx(ctx, tx, id)
}

func (a *accountsRepo) RememberRefreshJTI(ctx context.Context, id uuid.UUID, jti string) (*Account, error) {
	return a.RememberRefreshJTITx(ctx, a.db, id, jti)
}

// RememberRefreshJTITx overwrites the stored refresh identity
// unconditionally. Issuing a new refresh token is what invalidates all
// previous ones for the account; there is only ever one live refresh
// session. Raw SQL because ORM updates drop NULL transitions on this
// column.
func (a *accountsRepo) RememberRefreshJTITx(ctx context.Context, tx bun.IDB, id uuid.UUID, jti string) (*Account, error) {
	res, err := a.Repository.RawTx(ctx, tx, RememberRefreshJTISQL, jti, time.Now(), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *accountsRepo) ForgetRefreshJTI(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.ForgetRefreshJTITx(ctx, a.db, id)
}

// ForgetRefreshJTITx clears the refresh identity; a null value means no
// active refresh session.
func (a *accountsRepo) ForgetRefreshJTITx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	res, err := a.Repository.RawTx(ctx, tx, ForgetRefreshJTISQL, time.Now(), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
