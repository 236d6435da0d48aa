package onetime

import (
	"context"
	"time"

	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/identity/credential"
	"github.com/ledgerline/identity/pkg/identity/user"
)

// Manager owns the three one-time-secret flows sharing one mechanism:
// email verification tokens (plaintext, looked up by exact match), login and
// recovery OTPs (hashed at rest), and opaque invitation tokens. Issuing a
// fresh secret always orphans the previous one for that user; the slot holds
// at most one pending secret.
type Manager struct {
	users           user.Repository
	vault           *credential.Vault
	verificationTTL time.Duration
	otpLength       int
	otpTTL          time.Duration
}

// NewManager wires the manager from immutable configuration.
func NewManager(users user.Repository, vault *credential.Vault, cfg config.AuthConfig) *Manager {
	verificationTTL := cfg.Verification.TTL
	if verificationTTL == 0 {
		verificationTTL = time.Hour
	}
	otpTTL := cfg.OTP.TTL
	if otpTTL == 0 {
		otpTTL = 10 * time.Minute
	}
	otpLength := cfg.OTP.Length
	if otpLength == 0 {
		otpLength = 6
	}

	return &Manager{
		users:           users,
		vault:           vault,
		verificationTTL: verificationTTL,
		otpLength:       otpLength,
		otpTTL:          otpTTL,
	}
}

// IssueVerificationToken generates an opaque token, stores it in plaintext
// with its expiry on the user, and returns it for out-of-band delivery.
// The token is mailed to the user and later looked up by exact match, which
// is why it is not hashed.
func (m *Manager) IssueVerificationToken(ctx context.Context, u *user.User) (string, error) {
	tokenValue, err := GenerateOpaqueToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(m.verificationTTL)
	if err := m.users.SetVerificationToken(ctx, u.ID, tokenValue, expiresAt); err != nil {
		return "", err
	}

	return tokenValue, nil
}

// ConsumeVerificationToken looks the token up by exact match and, when it is
// still within its window, clears it and marks the email verified in one
// atomic update. An expired token fails without clearing so a fresh one can
// be reissued rather than the stale one being treated as consumed.
func (m *Manager) ConsumeVerificationToken(ctx context.Context, tokenValue string) (*user.User, error) {
	u, err := m.users.FindByVerificationToken(ctx, tokenValue)
	if err != nil {
		return nil, ErrVerificationNotFound()
	}

	if u.VerificationExpired(time.Now()) {
		return nil, ErrVerificationExpired()
	}

	if err := m.users.ConsumeVerificationToken(ctx, u.ID); err != nil {
		return nil, err
	}

	u.EmailVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpiresAt = nil
	return u, nil
}

// IssueOTP generates a fresh numeric code, stores its hash and expiry on the
// user, and returns the plaintext for out-of-band delivery only. The
// plaintext is never persisted.
func (m *Manager) IssueOTP(ctx context.Context, u *user.User) (string, error) {
	code, err := GenerateNumericCode(m.otpLength)
	if err != nil {
		return "", err
	}

	codeHash, err := m.vault.Hash(code)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(m.otpTTL)
	if err := m.users.SetOTP(ctx, u.ID, codeHash, expiresAt); err != nil {
		return "", err
	}

	u.OTPCode = &codeHash
	u.OTPCodeExpiresAt = &expiresAt
	return code, nil
}

// VerifyOTP reports whether candidate matches the user's pending code. It
// does not clear state on success: clearing is a separate explicit step so
// the same code can gate the primary action and only be invalidated once
// that action succeeds.
func (m *Manager) VerifyOTP(u *user.User, candidate string) bool {
	if !u.HasOTP() {
		return false
	}
	if u.OTPExpired(time.Now()) {
		return false
	}
	return m.vault.Verify(candidate, *u.OTPCode)
}

// ClearOTP unconditionally nulls the code and expiry. Clearing an
// already-clear slot is a no-op.
func (m *Manager) ClearOTP(ctx context.Context, u *user.User) error {
	if err := m.users.ClearOTP(ctx, u.ID); err != nil {
		return err
	}
	u.OTPCode = nil
	u.OTPCodeExpiresAt = nil
	return nil
}
