package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the persisted account model. PasswordDigest and
// RefreshJTI never serialize outward; use Public for API responses.
type Account struct {
	bun.BaseModel  `bun:"table:accounts,alias:acc"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name           string     `bun:"name,notnull" json:"name,omitempty"`
	Email          string     `bun:"email,notnull" json:"email,omitempty"`
	PasswordDigest string     `bun:"password_digest,notnull" json:"-"`
	RefreshJTI     *string    `bun:"refresh_jti,nullzero" json:"-"`
	Activated      bool       `bun:"activated,notnull,default:false" json:"activated,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicAccount is the outward JSON shape exposed by API layers.
type PublicAccount struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at"`
}

// Public returns the serializable view of the account. Credential and
// refresh session fields stay inside the process boundary.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

// HasRefreshSession reports whether the account currently trusts a
// refresh token identity.
func (a *Account) HasRefreshSession() bool {
	return a.RefreshJTI != nil && *a.RefreshJTI != ""
}

// CurrentJTI returns the trusted refresh token identity, empty when no
// refresh session is active.
func (a *Account) CurrentJTI() string {
	if a.RefreshJTI == nil {
		return ""
	}
	return *a.RefreshJTI
}
