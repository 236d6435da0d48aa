// Package accountsrv implements the account lifecycle service: register,
// verify, the login variants, recovery, refresh, and profile management.
package accountsrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/identity/account"
	"github.com/ledgerline/identity/pkg/identity/credential"
	"github.com/ledgerline/identity/pkg/identity/onetime"
	"github.com/ledgerline/identity/pkg/identity/token"
	"github.com/ledgerline/identity/pkg/identity/user"
	"github.com/ledgerline/identity/pkg/kernel"
	"github.com/ledgerline/identity/pkg/logx"
	"github.com/nyaruka/phonenumbers"
)

// Mailer is the outbound-mail dependency of the account service. Delivery
// failures degrade to warnings; they never roll back account state.
type Mailer interface {
	SendVerification(ctx context.Context, email, name, tokenValue string, ttl time.Duration) error
	SendWelcome(ctx context.Context, email, name string) error
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

// IssueGate throttles code issuance per contact address.
type IssueGate interface {
	Allow(ctx context.Context, contact string) bool
}

// Service orchestrates the account lifecycle over the user repository and
// the credential, token and one-time-secret engines.
type Service struct {
	users   user.Repository
	vault   *credential.Vault
	issuer  *token.Issuer
	secrets *onetime.Manager
	gate    IssueGate
	mail    Mailer
	cfg     config.AuthConfig
}

// NewService wires the account service.
func NewService(
	users user.Repository,
	vault *credential.Vault,
	issuer *token.Issuer,
	secrets *onetime.Manager,
	gate IssueGate,
	mail Mailer,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		users:   users,
		vault:   vault,
		issuer:  issuer,
		secrets: secrets,
		gate:    gate,
		mail:    mail,
		cfg:     cfg,
	}
}

// Register creates an account with an unverified email and issues the
// verification token. The account is committed before any email is sent:
// a notification failure surfaces as a warning on the result, never as a
// rollback.
func (s *Service) Register(ctx context.Context, input account.RegisterInput) (*account.RegisterResult, error) {
	if err := s.vault.ValidateStrength(input.Password); err != nil {
		return nil, err
	}

	hash, err := s.vault.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:               kernel.NewUserID(uuid.NewString()),
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		Username:         strings.TrimSpace(input.Username),
		PasswordHash:     hash,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		IsActive:         true,
		SubscriptionTier: user.TierFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	result := &account.RegisterResult{User: u.Summarize()}

	tokenValue, err := s.secrets.IssueVerificationToken(ctx, u)
	if err == nil {
		err = s.mail.SendVerification(ctx, u.Email, u.FullName(), tokenValue, s.cfg.Verification.TTL)
	}
	if err != nil {
		logx.WithError(err).WithField("user_id", u.ID.String()).
			Warn("account: registration succeeded but verification email failed")
		result.Warning = "Account created, but the verification email could not be sent. Request a new one."
	}

	return result, nil
}

// ResendVerification issues a fresh verification token for an unverified
// account and mails it. The response is identical whether or not the address
// has an account, so the endpoint cannot be used to probe for registrations.
func (s *Service) ResendVerification(ctx context.Context, email string) {
	if !s.gate.Allow(ctx, email) {
		return
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil || u.EmailVerified {
		return
	}

	tokenValue, err := s.secrets.IssueVerificationToken(ctx, u)
	if err == nil {
		err = s.mail.SendVerification(ctx, u.Email, u.FullName(), tokenValue, s.cfg.Verification.TTL)
	}
	if err != nil {
		logx.WithError(err).WithField("user_id", u.ID.String()).
			Warn("account: verification resend failed")
	}
}

// VerifyEmail consumes a verification token, marks the email verified, and
// logs the user straight in with a fresh token pair. The welcome email is
// best-effort.
func (s *Service) VerifyEmail(ctx context.Context, tokenValue string) (*account.AuthResult, error) {
	u, err := s.secrets.ConsumeVerificationToken(ctx, tokenValue)
	if err != nil {
		return nil, err
	}

	if err := s.mail.SendWelcome(ctx, u.Email, u.FullName()); err != nil {
		logx.WithError(err).WithField("user_id", u.ID.String()).
			Warn("account: welcome email failed")
	}

	pair, err := s.issuer.IssuePair(u.ID)
	if err != nil {
		return nil, err
	}

	return &account.AuthResult{User: u.Summarize(), Tokens: pair}, nil
}

// Login authenticates by password against exactly one of email or username.
// Unknown identifier and wrong password produce the same error; the disabled
// check runs only after the password has matched so it leaks nothing to
// guessers.
func (s *Service) Login(ctx context.Context, input account.LoginInput) (*account.AuthResult, error) {
	var u *user.User
	var err error

	switch {
	case input.Email != "" && input.Username != "":
		return nil, account.ErrIdentifierRequired()
	case input.Email != "":
		u, err = s.users.FindByEmail(ctx, input.Email)
	case input.Username != "":
		u, err = s.users.FindByUsername(ctx, input.Username)
	default:
		return nil, account.ErrIdentifierRequired()
	}

	if err != nil {
		return nil, account.ErrInvalidCredentials()
	}
	if !s.vault.Verify(input.Password, u.PasswordHash) {
		return nil, account.ErrInvalidCredentials()
	}
	if !u.IsActive {
		return nil, account.ErrAccountDisabled()
	}

	return s.finishLogin(ctx, u)
}

// RequestRecoveryCode starts the password-recovery flow. It always returns
// the same acknowledgement: throttled requests, unknown addresses, and
// delivery failures are indistinguishable from success to the caller. The
// throttle runs before the lookup so its timing carries no signal either.
func (s *Service) RequestRecoveryCode(ctx context.Context, email string) *account.RecoveryAck {
	ack := &account.RecoveryAck{Message: account.RecoveryAckMessage}

	if !s.gate.Allow(ctx, email) {
		return ack
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return ack
	}

	code, err := s.secrets.IssueOTP(ctx, u)
	if err == nil {
		err = s.mail.SendOTP(ctx, u.Email, code, s.cfg.OTP.TTL)
	}
	if err != nil {
		logx.WithError(err).WithField("user_id", u.ID.String()).
			Warn("account: recovery code issuance failed")
	}

	return ack
}

// LoginWithCode authenticates with a pending one-time code. The code is
// cleared only after the login has fully succeeded; a failed attempt leaves
// it pending for retry within its window.
func (s *Service) LoginWithCode(ctx context.Context, email, code string) (*account.AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, account.ErrInvalidCode()
	}
	if !s.secrets.VerifyOTP(u, code) {
		return nil, account.ErrInvalidCode()
	}
	if !u.IsActive {
		return nil, account.ErrAccountDisabled()
	}

	result, err := s.finishLogin(ctx, u)
	if err != nil {
		return nil, err
	}

	if err := s.secrets.ClearOTP(ctx, u); err != nil {
		logx.WithError(err).WithField("user_id", u.ID.String()).
			Warn("account: OTP clear failed after code login")
	}

	return result, nil
}

// ResetPassword redeems a recovery code for a new password. The code
// survives a rejected new password so the user can retry; it is cleared
// only once the password has actually been replaced.
func (s *Service) ResetPassword(ctx context.Context, input account.ResetPasswordInput) error {
	u, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return account.ErrInvalidCode()
	}
	if !s.secrets.VerifyOTP(u, input.Code) {
		return account.ErrInvalidCode()
	}

	if err := s.vault.ValidateStrength(input.NewPassword); err != nil {
		return err
	}
	hash, err := s.vault.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	if err := s.secrets.ClearOTP(ctx, u); err != nil {
		logx.WithError(err).WithField("user_id", u.ID.String()).
			Warn("account: OTP clear failed after password reset")
	}

	return nil
}

// Refresh verifies a refresh token and mints a new pair. Tokens are
// stateless, so the account is re-fetched to stop disabled or deleted users
// from refreshing forever.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	claims, err := s.issuer.Verify(refreshToken, token.PurposeRefresh)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, account.ErrInvalidCredentials()
	}
	if !u.IsActive {
		return nil, account.ErrAccountDisabled()
	}

	return s.issuer.IssuePair(u.ID)
}

// ChangePassword rotates the password of an authenticated user after
// re-checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID kernel.UserID, input account.ChangePasswordInput) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.vault.Verify(input.CurrentPassword, u.PasswordHash) {
		return account.ErrInvalidCredentials()
	}

	if err := s.vault.ValidateStrength(input.NewPassword); err != nil {
		return err
	}
	hash, err := s.vault.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, hash)
}

// UpdateProfile applies a partial profile update. A phone number in the
// patch is normalized to E.164 before it is stored.
func (s *Service) UpdateProfile(ctx context.Context, userID kernel.UserID, p user.Patch) (*user.Summary, error) {
	if p.PhoneNumber != nil {
		normalized, err := normalizePhone(*p.PhoneNumber)
		if err != nil {
			return nil, err
		}
		p.PhoneNumber = &normalized
	}

	if err := s.users.ApplyPatch(ctx, userID, p); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := u.Summarize()
	return &summary, nil
}

// Me returns the caller-visible projection of the authenticated account.
func (s *Service) Me(ctx context.Context, userID kernel.UserID) (*user.Summary, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := u.Summarize()
	return &summary, nil
}

func (s *Service) finishLogin(ctx context.Context, u *user.User) (*account.AuthResult, error) {
	pair, err := s.issuer.IssuePair(u.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.StampLastLogin(ctx, u.ID, now); err != nil {
		logx.WithError(err).WithField("user_id", u.ID.String()).
			Warn("account: last-login stamp failed")
	} else {
		u.LastLogin = &now
	}

	return &account.AuthResult{User: u.Summarize(), Tokens: pair}, nil
}

func normalizePhone(raw string) (string, error) {
	region := ""
	if !strings.HasPrefix(strings.TrimSpace(raw), "+") {
		region = "US"
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", account.ErrInvalidPhone().WithDetail("phone_number", raw)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
