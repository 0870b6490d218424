package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UpdateAccountMessage struct {
	ID      uuid.UUID      `json:"id"`
	Payload AccountPayload `json:"payload"`
}

func (e UpdateAccountMessage) Type() string { return "account.update" }

// UpdateAccountHandler applies a partial update. Only supplied fields
// are validated and written; a nil password means leave unchanged.
type UpdateAccountHandler struct {
	repo RepositoryManager
}

func NewUpdateAccountHandler(repo RepositoryManager) *UpdateAccountHandler {
	return &UpdateAccountHandler{repo: repo}
}

func (h *UpdateAccountHandler) Execute(ctx context.Context, event UpdateAccountMessage) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateAccountHandler) execute(ctx context.Context, event UpdateAccountMessage) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	payload := event.Payload
	if payload.Email != nil {
		email := NormalizeEmail(*payload.Email)
		payload.Email = &email
	}

	if err := payload.Validate(ValidationContext{IsNew: false}); err != nil {
		return nil, err
	}

	var account *Account

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := h.repo.Accounts().FindByIDTx(ctx, tx, event.ID)
		if err != nil {
			return err
		}

		targetEmail := current.Email
		if payload.Email != nil {
			targetEmail = *payload.Email
		}

		targetActivated := current.Activated
		if payload.Activated != nil {
			targetActivated = *payload.Activated
		}

		if targetActivated {
			taken, err := h.repo.Accounts().EmailTakenByAnotherTx(ctx, tx, current.ID, targetEmail)
			if err != nil {
				return NewPersistenceError(err, "failed to check email uniqueness")
			}
			if taken {
				return validation.Errors{"email": ErrEmailTaken}
			}
		}

		record := &Account{}
		columns := make([]string, 0, 4)

		if payload.Name != nil {
			record.Name = *payload.Name
			columns = append(columns, "name")
		}

		if payload.Email != nil {
			record.Email = targetEmail
			columns = append(columns, "email")
		}

		if payload.Activated != nil {
			record.Activated = targetActivated
			columns = append(columns, "activated")
		}

		if payload.Password != nil {
			hash, err := HashPassword(*payload.Password)
			if err != nil {
				var richErr *goerrors.Error
				if goerrors.As(err, &richErr) {
					return validation.Errors{"password": richErr}
				}
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
			}
			record.PasswordDigest = hash
			columns = append(columns, "password_digest")
		}

		if len(columns) == 0 {
			account = current
			return nil
		}

		if account, err = h.repo.Accounts().UpdateFieldsTx(ctx, tx, current.ID, record, columns...); err != nil {
			if IsUniqueViolation(err) {
				return validation.Errors{"email": ErrEmailTaken}
			}
			return NewPersistenceError(err, "could not update account")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return account, nil
}
