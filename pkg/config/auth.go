package config

import "time"

// AuthConfig groups every credential-lifecycle knob.
type AuthConfig struct {
	JWT          JWTConfig
	Password     PasswordConfig
	OTP          OTPConfig
	Verification VerificationConfig
	Invitation   InvitationConfig
	Links        LinksConfig
}

// JWTConfig configures the token issuer.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// PasswordConfig configures password hashing.
type PasswordConfig struct {
	BcryptCost int
}

// OTPConfig configures one-time login/recovery codes.
type OTPConfig struct {
	Length          int
	TTL             time.Duration
	ReissueCooldown time.Duration
}

// VerificationConfig configures email verification tokens.
type VerificationConfig struct {
	TTL time.Duration
}

// InvitationConfig configures enterprise invitation tokens.
type InvitationConfig struct {
	TTL time.Duration
}

// LinksConfig holds the frontend URLs that tokens are embedded into.
// These are opaque configuration; the core never validates them.
type LinksConfig struct {
	VerificationURL string
	RecoveryURL     string
	InvitationURL   string
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
			Issuer:     getEnv("JWT_ISSUER", "ledgerline-identity"),
			AccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 30*time.Minute),
			RefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Password: PasswordConfig{
			BcryptCost: getEnvInt("PASSWORD_BCRYPT_COST", 12),
		},
		OTP: OTPConfig{
			Length:          getEnvInt("OTP_LENGTH", 6),
			TTL:             getEnvDuration("OTP_TTL", 10*time.Minute),
			ReissueCooldown: getEnvDuration("OTP_REISSUE_COOLDOWN", time.Minute),
		},
		Verification: VerificationConfig{
			TTL: getEnvDuration("VERIFICATION_TTL", time.Hour),
		},
		Invitation: InvitationConfig{
			TTL: getEnvDuration("INVITATION_TTL", 7*24*time.Hour),
		},
		Links: LinksConfig{
			VerificationURL: getEnv("LINK_VERIFICATION_URL", "http://localhost:3000/verify-email"),
			RecoveryURL:     getEnv("LINK_RECOVERY_URL", "http://localhost:3000/recover"),
			InvitationURL:   getEnv("LINK_INVITATION_URL", "http://localhost:3000/accept-invitation"),
		},
	}
}
