package enterprise

import (
	"context"

	"github.com/ledgerline/identity/pkg/kernel"
)

// Repository is the persistence contract for enterprises.
type Repository interface {
	Create(ctx context.Context, e *Enterprise) error
	FindByID(ctx context.Context, id kernel.EnterpriseID) (*Enterprise, error)
	FindByName(ctx context.Context, name string) (*Enterprise, error)
}

// MembershipRepository is the persistence contract for memberships. The
// (user, enterprise) uniqueness is a database constraint; Create translates
// a violation into ErrAlreadyMember.
type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	FindByUserAndEnterprise(ctx context.Context, userID kernel.UserID, enterpriseID kernel.EnterpriseID) (*Membership, error)
	FindByInviteToken(ctx context.Context, tokenValue string) (*Membership, error)

	// Accept atomically activates the membership (clearing its invite token)
	// and the owning user in one transaction.
	Accept(ctx context.Context, membershipID kernel.MembershipID, userID kernel.UserID) error

	// HasActiveMembership reports whether userID holds any active membership
	// in enterpriseID.
	HasActiveMembership(ctx context.Context, userID kernel.UserID, enterpriseID kernel.EnterpriseID) (bool, error)

	// HasActiveStaffMembership reports whether userID holds an active
	// KindStaff membership in enterpriseID.
	HasActiveStaffMembership(ctx context.Context, userID kernel.UserID, enterpriseID kernel.EnterpriseID) (bool, error)
}
