package accounts

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes let API layers map structured errors to responses without
// string matching.
const (
	TextCodeMissingField    = "MISSING_FIELD"
	TextCodeFieldTooLong    = "FIELD_TOO_LONG"
	TextCodeFieldTooShort   = "FIELD_TOO_SHORT"
	TextCodeInvalidFormat   = "INVALID_FORMAT"
	TextCodeInvalidPassword = "INVALID_PASSWORD"
	TextCodeEmailTaken      = "EMAIL_TAKEN"
	TextCodePersistence     = "PERSISTENCE_ERROR"
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword   = "EMPTY_PASSWORD"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeTokenMalformed  = "TOKEN_MALFORMED"
	TextCodeTokenRevoked    = "TOKEN_REVOKED"
)

// Field validation sentinels. The validator collects these into a
// validation.Errors map keyed by field name.
var (
	ErrMissingField    = goerrors.New("can't be blank", goerrors.CategoryValidation).WithTextCode(TextCodeMissingField)
	ErrFieldTooLong    = goerrors.New("is too long", goerrors.CategoryValidation).WithTextCode(TextCodeFieldTooLong)
	ErrFieldTooShort   = goerrors.New("is too short", goerrors.CategoryValidation).WithTextCode(TextCodeFieldTooShort)
	ErrInvalidFormat   = goerrors.New("is not a valid address", goerrors.CategoryValidation).WithTextCode(TextCodeInvalidFormat)
	ErrInvalidPassword = goerrors.New("only letters, digits, underscore, and hyphen are allowed", goerrors.CategoryValidation).WithTextCode(TextCodeInvalidPassword)
	ErrEmailTaken      = goerrors.New("has already been taken", goerrors.CategoryConflict).WithTextCode(TextCodeEmailTaken)
)

// ErrAccountNotFound is the error we return for non found accounts
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound)

// ErrMismatchedHashAndPassword covers unknown identifiers and wrong
// passwords alike so callers can't tell which one failed
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty secrets before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).WithTextCode(TextCodeEmptyPassword)

// ErrTokenExpired is returned for tokens past their expiration
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens we cannot parse or verify
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).WithTextCode(TextCodeTokenMalformed)

// ErrTokenRevoked is returned when a refresh token's identity no longer
// matches the account's stored value, including after a Forget
var ErrTokenRevoked = goerrors.New("refresh token is no longer valid", goerrors.CategoryAuth).WithTextCode(TextCodeTokenRevoked)

// NewPersistenceError wraps a store failure. These always surface to
// the caller; retry policy belongs to the storage collaborator.
func NewPersistenceError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodePersistence)
}

// IsPersistenceError will check for wrapped store failures
func IsPersistenceError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodePersistence
	}
	return false
}

// IsUniqueViolation will check for storage-level uniqueness constraint
// errors across the drivers we support. The repository layer wraps
// driver errors behind a generic message, so we walk the unwrap chain
// down to the driver error before matching.
func IsUniqueViolation(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value violates unique constraint") ||
			strings.Contains(msg, "SQLSTATE 23505") {
			return true
		}

		var rich *goerrors.Error
		if errors.As(e, &rich) && rich.Source != nil && rich.Source != e {
			if IsUniqueViolation(rich.Source) {
				return true
			}
		}
	}
	return false
}
