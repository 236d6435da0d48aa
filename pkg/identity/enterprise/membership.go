package enterprise

import (
	"time"

	"github.com/ledgerline/identity/pkg/kernel"
)

// Kind distinguishes staff memberships from client memberships.
type Kind string

const (
	KindStaff  Kind = "staff"
	KindClient Kind = "client"
)

// Role is the staff role within an enterprise. Client memberships carry
// RoleClient and are not further differentiated.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleCPA       Role = "cpa"
	RoleReviewer  Role = "reviewer"
	RoleClient    Role = "client"
)

// ValidStaffRole reports whether r is one of the staff roles.
func ValidStaffRole(r Role) bool {
	return r == RoleAssistant || r == RoleCPA || r == RoleReviewer
}

// Membership joins a User to an Enterprise. At most one row exists per
// (user, enterprise) pair, enforced by a unique constraint.
//
// Lifecycle: created pending (is_active=false, invite_token set), activated
// exactly once on acceptance (is_active=true, token cleared), never back to
// pending. An expired pending token stays pending but is unacceptable; a
// new invitation must be issued.
type Membership struct {
	ID           kernel.MembershipID `db:"id" json:"id"`
	UserID       kernel.UserID       `db:"user_id" json:"user_id"`
	EnterpriseID kernel.EnterpriseID `db:"enterprise_id" json:"enterprise_id"`
	Kind         Kind                `db:"kind" json:"kind"`
	Role         Role                `db:"role" json:"role"`
	IsActive     bool                `db:"is_active" json:"is_active"`

	InviterID            *kernel.UserID `db:"inviter_id" json:"inviter_id,omitempty"`
	InviteToken          *string        `db:"invite_token" json:"-"`
	InviteTokenExpiresAt *time.Time     `db:"invite_token_expires_at" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsPending reports whether the membership awaits acceptance.
func (m *Membership) IsPending() bool {
	return !m.IsActive && m.InviteToken != nil
}

// InviteExpired reports whether the pending invitation is past its window.
// False when no invitation is pending.
func (m *Membership) InviteExpired(now time.Time) bool {
	return m.InviteTokenExpiresAt != nil && now.After(*m.InviteTokenExpiresAt)
}
