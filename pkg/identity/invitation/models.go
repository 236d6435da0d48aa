// Package invitation defines the inputs and results of the enterprise
// invitation workflow. The service implementation lives in invitationsrv.
package invitation

import (
	"github.com/ledgerline/identity/pkg/identity/enterprise"
	"github.com/ledgerline/identity/pkg/kernel"
)

// CreateEnterpriseInput creates a tenant owned by the calling user.
type CreateEnterpriseInput struct {
	Name    string
	Email   *string
	Address *string
}

// InviteInput invites one email address into an enterprise. Role is
// required for staff invitations and ignored for client ones.
type InviteInput struct {
	EnterpriseID kernel.EnterpriseID
	Email        string
	Kind         enterprise.Kind
	Role         enterprise.Role
}

// InviteResult reports one issued invitation. Provisioned is true when a
// placeholder account was created for the address. Warning is set when the
// invitation exists but its email could not be delivered.
type InviteResult struct {
	MembershipID kernel.MembershipID `json:"membership_id"`
	Email        string              `json:"email"`
	Provisioned  bool                `json:"provisioned"`
	Warning      string              `json:"warning,omitempty"`
}

// BatchItem is one address in a batch invitation.
type BatchItem struct {
	Email string
	Kind  enterprise.Kind
	Role  enterprise.Role
}

// BatchItemResult reports one batch entry, in input order.
type BatchItemResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// BatchResult reports a whole batch. Items preserve input order; the batch
// as a whole fails only when every item failed.
type BatchResult struct {
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// AcceptResult reports an accepted invitation.
type AcceptResult struct {
	MembershipID kernel.MembershipID `json:"membership_id"`
	EnterpriseID kernel.EnterpriseID `json:"enterprise_id"`
	UserID       kernel.UserID       `json:"user_id"`
}
