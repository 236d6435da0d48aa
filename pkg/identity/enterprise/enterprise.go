package enterprise

import (
	"time"

	"github.com/ledgerline/identity/pkg/kernel"
)

// Enterprise is a tenant organization. The owner reference is immutable
// after creation.
type Enterprise struct {
	ID      kernel.EnterpriseID `db:"id" json:"id"`
	Name    string              `db:"name" json:"name"`
	OwnerID kernel.UserID       `db:"owner_id" json:"owner_id"`

	Email    *string `db:"email" json:"email,omitempty"`
	Address  *string `db:"address" json:"address,omitempty"`
	IsActive bool    `db:"is_active" json:"is_active"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsOwnedBy reports whether userID owns this enterprise.
func (e *Enterprise) IsOwnedBy(userID kernel.UserID) bool {
	return e.OwnerID == userID
}
