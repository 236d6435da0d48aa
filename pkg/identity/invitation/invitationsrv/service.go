// Package invitationsrv implements enterprise creation and the invitation
// workflow: inviting existing or brand-new users into a tenant, batch
// invitations, and acceptance.
package invitationsrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/identity/credential"
	"github.com/ledgerline/identity/pkg/identity/enterprise"
	"github.com/ledgerline/identity/pkg/identity/invitation"
	"github.com/ledgerline/identity/pkg/identity/mailer"
	"github.com/ledgerline/identity/pkg/identity/onetime"
	"github.com/ledgerline/identity/pkg/identity/user"
	"github.com/ledgerline/identity/pkg/kernel"
	"github.com/ledgerline/identity/pkg/logx"
)

// Mailer is the outbound-mail dependency of the invitation service.
type Mailer interface {
	SendInvitation(ctx context.Context, inv mailer.InvitationEmail) error
}

// Service orchestrates enterprise creation and invitations.
type Service struct {
	users       user.Repository
	enterprises enterprise.Repository
	memberships enterprise.MembershipRepository
	vault       *credential.Vault
	mail        Mailer
	inviteTTL   time.Duration
}

// NewService wires the invitation service.
func NewService(
	users user.Repository,
	enterprises enterprise.Repository,
	memberships enterprise.MembershipRepository,
	vault *credential.Vault,
	mail Mailer,
	cfg config.AuthConfig,
) *Service {
	inviteTTL := cfg.Invitation.TTL
	if inviteTTL == 0 {
		inviteTTL = 7 * 24 * time.Hour
	}

	return &Service{
		users:       users,
		enterprises: enterprises,
		memberships: memberships,
		vault:       vault,
		mail:        mail,
		inviteTTL:   inviteTTL,
	}
}

// CreateEnterprise creates a tenant owned by ownerID and enrolls the owner
// as an active CPA staff member in the same breath.
func (s *Service) CreateEnterprise(ctx context.Context, ownerID kernel.UserID, input invitation.CreateEnterpriseInput) (*enterprise.Enterprise, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	now := time.Now()
	e := &enterprise.Enterprise{
		ID:        kernel.NewEnterpriseID(uuid.NewString()),
		Name:      strings.TrimSpace(input.Name),
		OwnerID:   ownerID,
		Email:     input.Email,
		Address:   input.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.enterprises.Create(ctx, e); err != nil {
		return nil, err
	}

	m := &enterprise.Membership{
		ID:           kernel.NewMembershipID(uuid.NewString()),
		UserID:       ownerID,
		EnterpriseID: e.ID,
		Kind:         enterprise.KindStaff,
		Role:         enterprise.RoleCPA,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, err
	}

	return e, nil
}

// Invite invites one email address into an enterprise. An unknown address
// gets a placeholder account: inactive, unverified, with a temporary
// password that travels only in the invitation email. The membership is
// created pending; delivery failure leaves it pending and surfaces as a
// warning, not a rollback.
func (s *Service) Invite(ctx context.Context, inviterID kernel.UserID, input invitation.InviteInput) (*invitation.InviteResult, error) {
	e, err := s.enterprises.FindByID(ctx, input.EnterpriseID)
	if err != nil {
		return nil, err
	}

	inviter, err := s.users.FindByID(ctx, inviterID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == inviter.Email {
		return nil, enterprise.ErrSelfInvite()
	}

	allowed, err := s.hasInvitePermission(ctx, inviter, e)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, enterprise.ErrNotAuthorized()
	}

	kind, role := input.Kind, input.Role
	switch kind {
	case enterprise.KindClient:
		role = enterprise.RoleClient
	case enterprise.KindStaff:
		if !enterprise.ValidStaffRole(role) {
			return nil, enterprise.ErrInvalidRole().WithDetail("role", string(role))
		}
	default:
		return nil, enterprise.ErrInvalidKind().WithDetail("kind", string(kind))
	}

	invitee, tempSecret, err := s.findOrProvision(ctx, email)
	if err != nil {
		return nil, err
	}

	if _, err := s.memberships.FindByUserAndEnterprise(ctx, invitee.ID, e.ID); err == nil {
		return nil, enterprise.ErrAlreadyMember().WithDetail("email", email)
	}

	tokenValue, err := onetime.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(s.inviteTTL)
	m := &enterprise.Membership{
		ID:                   kernel.NewMembershipID(uuid.NewString()),
		UserID:               invitee.ID,
		EnterpriseID:         e.ID,
		Kind:                 kind,
		Role:                 role,
		IsActive:             false,
		InviterID:            &inviterID,
		InviteToken:          &tokenValue,
		InviteTokenExpiresAt: &expiresAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, err
	}

	result := &invitation.InviteResult{
		MembershipID: m.ID,
		Email:        email,
		Provisioned:  tempSecret != "",
	}

	sendErr := s.mail.SendInvitation(ctx, mailer.InvitationEmail{
		To:             email,
		EnterpriseName: e.Name,
		InviterName:    inviter.FullName(),
		TokenValue:     tokenValue,
		TempPassword:   tempSecret,
		TTL:            s.inviteTTL,
	})
	if sendErr != nil {
		logx.WithError(sendErr).WithField("membership_id", m.ID.String()).
			Warn("invitation: email delivery failed")
		result.Warning = "Invitation created, but the email could not be sent."
	}

	return result, nil
}

// InviteBatch issues each invitation independently, in input order, and
// reports per-item outcomes in that same order. Sequential processing keeps
// duplicate addresses within one batch deterministic: the first occurrence
// wins and later ones fail as already-member. One failure never aborts the
// rest; the batch itself fails only when every item failed.
func (s *Service) InviteBatch(ctx context.Context, inviterID kernel.UserID, enterpriseID kernel.EnterpriseID, items []invitation.BatchItem) (*invitation.BatchResult, error) {
	if len(items) == 0 {
		return nil, invitation.ErrEmptyBatch()
	}

	result := &invitation.BatchResult{Items: make([]invitation.BatchItemResult, 0, len(items))}
	for _, item := range items {
		itemResult := invitation.BatchItemResult{Email: item.Email}

		_, err := s.Invite(ctx, inviterID, invitation.InviteInput{
			EnterpriseID: enterpriseID,
			Email:        item.Email,
			Kind:         item.Kind,
			Role:         item.Role,
		})
		if err == nil {
			itemResult.Success = true
			result.Succeeded++
		} else {
			itemResult.Reason = err.Error()
			result.Failed++
		}
		result.Items = append(result.Items, itemResult)
	}

	if result.Succeeded == 0 {
		return result, invitation.ErrAllInvitesFailed().WithDetail("failed", result.Failed)
	}

	return result, nil
}

// Accept redeems an invitation token. An expired token fails without
// touching the membership; acceptance activates the membership and the
// invited account atomically and can happen at most once per invitation.
func (s *Service) Accept(ctx context.Context, tokenValue string) (*invitation.AcceptResult, error) {
	m, err := s.memberships.FindByInviteToken(ctx, tokenValue)
	if err != nil {
		return nil, err
	}

	if !m.IsPending() {
		return nil, enterprise.ErrInvalidInvite()
	}
	if m.InviteExpired(time.Now()) {
		return nil, enterprise.ErrInviteExpired()
	}

	if err := s.memberships.Accept(ctx, m.ID, m.UserID); err != nil {
		return nil, err
	}

	return &invitation.AcceptResult{
		MembershipID: m.ID,
		EnterpriseID: m.EnterpriseID,
		UserID:       m.UserID,
	}, nil
}

// HasPermission reports whether userID may act on the enterprise: platform
// superusers, the owner, and active members of either kind all qualify.
func (s *Service) HasPermission(ctx context.Context, userID kernel.UserID, enterpriseID kernel.EnterpriseID) (bool, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	e, err := s.enterprises.FindByID(ctx, enterpriseID)
	if err != nil {
		return false, err
	}

	if u.IsSuperuser || e.IsOwnedBy(u.ID) {
		return true, nil
	}
	return s.memberships.HasActiveMembership(ctx, u.ID, e.ID)
}

// hasInvitePermission is the stricter gate for issuing invitations: the
// owner, a superuser, or an active staff member. Client members can act on
// the enterprise but never invite into it.
func (s *Service) hasInvitePermission(ctx context.Context, u *user.User, e *enterprise.Enterprise) (bool, error) {
	if u.IsSuperuser || e.IsOwnedBy(u.ID) {
		return true, nil
	}
	return s.memberships.HasActiveStaffMembership(ctx, u.ID, e.ID)
}

// findOrProvision returns the account for email, creating an inactive
// placeholder when none exists. The returned secret is empty for existing
// accounts and carries the temporary password for provisioned ones.
func (s *Service) findOrProvision(ctx context.Context, email string) (*user.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return u, "", nil
	}

	tempSecret, err := onetime.GenerateTempSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := s.vault.Hash(tempSecret)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	u = &user.User{
		ID:               kernel.NewUserID(uuid.NewString()),
		Email:            email,
		Username:         usernameFor(email),
		PasswordHash:     hash,
		IsActive:         false,
		SubscriptionTier: user.TierFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.users.Create(ctx, u)
	if err != nil && errx.HasCode(err, user.CodeUsernameTaken) {
		// local part collided with someone else's username, retry once
		// with a random suffix
		suffix, sErr := onetime.GenerateTempSecret()
		if sErr != nil {
			return nil, "", sErr
		}
		u.Username = u.Username + "-" + suffix
		err = s.users.Create(ctx, u)
	}
	if err != nil {
		return nil, "", err
	}

	return u, tempSecret, nil
}

func usernameFor(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
