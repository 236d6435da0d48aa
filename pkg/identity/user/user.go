package user

import (
	"time"

	"github.com/ledgerline/identity/pkg/kernel"
)

// SubscriptionTier is the account's billing plan.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierPro      SubscriptionTier = "pro"
	TierBusiness SubscriptionTier = "business"
)

// User is the identity record. Email and username are globally unique.
// The verification-token and OTP field pairs are set and cleared together:
// a non-nil expiry always has a non-nil secret beside it.
type User struct {
	ID           kernel.UserID `db:"id" json:"id"`
	Email        string        `db:"email" json:"email"`
	Username     string        `db:"username" json:"username"`
	PasswordHash string        `db:"password_hash" json:"-"`

	FirstName   *string `db:"first_name" json:"first_name,omitempty"`
	LastName    *string `db:"last_name" json:"last_name,omitempty"`
	PhoneNumber *string `db:"phone_number" json:"phone_number,omitempty"`

	EmailVerified              bool       `db:"email_verified" json:"email_verified"`
	VerificationToken          *string    `db:"verification_token" json:"-"`
	VerificationTokenExpiresAt *time.Time `db:"verification_token_expires_at" json:"-"`

	OTPCode          *string    `db:"otp_code" json:"-"`
	OTPCodeExpiresAt *time.Time `db:"otp_code_expires_at" json:"-"`

	IsActive    bool       `db:"is_active" json:"is_active"`
	IsSuperuser bool       `db:"is_superuser" json:"-"`
	LastLogin   *time.Time `db:"last_login" json:"last_login,omitempty"`

	SubscriptionTier SubscriptionTier `db:"subscription_tier" json:"subscription_tier"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the profile name fields, tolerating missing parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.LastName != nil:
		return *u.LastName
	default:
		return u.Username
	}
}

// HasPendingVerification reports whether an unconsumed verification token is set.
func (u *User) HasPendingVerification() bool {
	return u.VerificationToken != nil && u.VerificationTokenExpiresAt != nil
}

// VerificationExpired reports whether the pending verification token is past
// its window. False when no token is set.
func (u *User) VerificationExpired(now time.Time) bool {
	return u.VerificationTokenExpiresAt != nil && now.After(*u.VerificationTokenExpiresAt)
}

// HasOTP reports whether an unconsumed one-time code is set.
func (u *User) HasOTP() bool {
	return u.OTPCode != nil && u.OTPCodeExpiresAt != nil
}

// OTPExpired reports whether the pending one-time code is past its window.
// False when no code is set.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPCodeExpiresAt != nil && now.After(*u.OTPCodeExpiresAt)
}

// Summary is the caller-visible projection of a User.
type Summary struct {
	ID               kernel.UserID    `json:"id"`
	Email            string           `json:"email"`
	Username         string           `json:"username"`
	FirstName        *string          `json:"first_name,omitempty"`
	LastName         *string          `json:"last_name,omitempty"`
	EmailVerified    bool             `json:"email_verified"`
	IsActive         bool             `json:"is_active"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier"`
	LastLogin        *time.Time       `json:"last_login,omitempty"`
}

// Summarize builds the caller-visible projection.
func (u *User) Summarize() Summary {
	return Summary{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		EmailVerified:    u.EmailVerified,
		IsActive:         u.IsActive,
		SubscriptionTier: u.SubscriptionTier,
		LastLogin:        u.LastLogin,
	}
}

// Patch is the explicit set of profile fields a caller may update.
// Nil fields are left untouched; there is no update-by-attribute-name path.
type Patch struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// IsEmpty reports whether the patch carries no changes.
func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil
}
