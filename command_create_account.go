package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CreateAccountMessage struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Activated bool   `json:"activated"`
}

func (e CreateAccountMessage) Type() string { return "account.create" }

// CreateAccountHandler runs the full creation pipeline: normalize,
// validate, check uniqueness, hash, persist. Any failure aborts the
// whole operation with no partial write.
type CreateAccountHandler struct {
	repo RepositoryManager
}

func NewCreateAccountHandler(repo RepositoryManager) *CreateAccountHandler {
	return &CreateAccountHandler{repo: repo}
}

func (h *CreateAccountHandler) Execute(ctx context.Context, event CreateAccountMessage) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateAccountHandler) execute(ctx context.Context, event CreateAccountMessage) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	payload := AccountPayload{
		Name:      &event.Name,
		Email:     &email,
		Password:  &event.Password,
		Activated: &event.Activated,
	}

	if err := payload.Validate(ValidationContext{IsNew: true}); err != nil {
		return nil, err
	}

	account := &Account{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if event.Activated {
			taken, err := h.repo.Accounts().EmailTakenByAnotherTx(ctx, tx, uuid.Nil, email)
			if err != nil {
				return NewPersistenceError(err, "failed to check email uniqueness")
			}
			if taken {
				return validation.Errors{"email": ErrEmailTaken}
			}
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return validation.Errors{"password": richErr}
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		account.Name = event.Name
		account.Email = email
		account.PasswordDigest = hash
		account.Activated = event.Activated

		if account, err = h.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			// lost the race: a concurrent writer claimed the email
			// after our advisory check, so the constraint reports it
			if IsUniqueViolation(err) {
				return validation.Errors{"email": ErrEmailTaken}
			}
			return NewPersistenceError(err, "could not create account")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return account, nil
}
