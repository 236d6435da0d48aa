package user

import (
	"context"
	"time"

	"github.com/ledgerline/identity/pkg/kernel"
)

// Repository is the persistence contract for users. Uniqueness of email and
// username is enforced by database constraints; Create translates a
// constraint violation into ErrEmailTaken / ErrUsernameTaken, which is the
// authoritative signal under concurrent duplicate registrations.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)

	// SetVerificationToken stores the plaintext token and expiry, replacing
	// any previous pending token (single slot).
	SetVerificationToken(ctx context.Context, id kernel.UserID, token string, expiresAt time.Time) error

	// ConsumeVerificationToken atomically clears the token pair and flips
	// email_verified in one update.
	ConsumeVerificationToken(ctx context.Context, id kernel.UserID) error

	// SetOTP stores the hashed one-time code and expiry, replacing any
	// previous pending code (single slot).
	SetOTP(ctx context.Context, id kernel.UserID, codeHash string, expiresAt time.Time) error

	// ClearOTP nulls both OTP fields. Clearing an already-clear slot is a no-op.
	ClearOTP(ctx context.Context, id kernel.UserID) error

	UpdatePassword(ctx context.Context, id kernel.UserID, passwordHash string) error
	StampLastLogin(ctx context.Context, id kernel.UserID, at time.Time) error
	ApplyPatch(ctx context.Context, id kernel.UserID, p Patch) error

	// PurgeExpiredSecrets nulls verification tokens and one-time codes whose
	// expiry is before cutoff, returning the number of rows touched. Expired
	// secrets are already unusable; this is housekeeping, not enforcement.
	PurgeExpiredSecrets(ctx context.Context, cutoff time.Time) (int64, error)
}
