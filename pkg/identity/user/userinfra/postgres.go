package userinfra

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/identity/user"
	"github.com/ledgerline/identity/pkg/kernel"
	"github.com/lib/pq"
)

const userColumns = `
		id, email, username, password_hash, first_name, last_name, phone_number,
		email_verified, verification_token, verification_token_expires_at,
		otp_code, otp_code_expires_at, is_active, is_superuser, last_login,
		subscription_tier, created_at, updated_at`

// PostgresUserRepository is the PostgreSQL implementation of user.Repository.
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository creates a new user repository.
func NewPostgresUserRepository(db *sqlx.DB) user.Repository {
	return &PostgresUserRepository{db: db}
}

// Create inserts a new user row. A unique-constraint violation is mapped to
// the domain conflict error naming the colliding field.
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, email, username, password_hash, first_name, last_name, phone_number,
			email_verified, verification_token, verification_token_expires_at,
			otp_code, otp_code_expires_at, is_active, is_superuser, last_login,
			subscription_tier, created_at, updated_at
		) VALUES (
			:id, :email, :username, :password_hash, :first_name, :last_name, :phone_number,
			:email_verified, :verification_token, :verification_token_expires_at,
			:otp_code, :otp_code_expires_at, :is_active, :is_superuser, :last_login,
			:subscription_tier, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			if strings.Contains(pqErr.Constraint, "username") {
				return user.ErrUsernameTaken().WithDetail("field", "username")
			}
			return user.ErrEmailTaken().WithDetail("field", "email")
		}
		return errx.Wrap(err, "failed to create user", errx.TypeInternal).
			WithDetail("user_id", u.ID.String())
	}

	return nil
}

// FindByID looks up a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id.String())
}

// FindByEmail looks up a user by email.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// FindByUsername looks up a user by username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// FindByVerificationToken looks up a user by exact plaintext token match.
func (r *PostgresUserRepository) FindByVerificationToken(ctx context.Context, tokenValue string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	return r.getOne(ctx, query, tokenValue)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	err := r.db.GetContext(ctx, &u, query, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound()
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal)
	}
	return &u, nil
}

// SetVerificationToken stores a fresh verification token, orphaning any
// previous pending one.
func (r *PostgresUserRepository) SetVerificationToken(ctx context.Context, id kernel.UserID, tokenValue string, expiresAt time.Time) error {
	query := `
		UPDATE users SET
			verification_token = $2,
			verification_token_expires_at = $3,
			updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, query, "failed to set verification token", id.String(), tokenValue, expiresAt)
}

// ConsumeVerificationToken clears the token pair and marks the email
// verified in a single update.
func (r *PostgresUserRepository) ConsumeVerificationToken(ctx context.Context, id kernel.UserID) error {
	query := `
		UPDATE users SET
			email_verified = TRUE,
			verification_token = NULL,
			verification_token_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, query, "failed to consume verification token", id.String())
}

// SetOTP stores a fresh hashed one-time code, orphaning any previous one.
func (r *PostgresUserRepository) SetOTP(ctx context.Context, id kernel.UserID, codeHash string, expiresAt time.Time) error {
	query := `
		UPDATE users SET
			otp_code = $2,
			otp_code_expires_at = $3,
			updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, query, "failed to set OTP", id.String(), codeHash, expiresAt)
}

// ClearOTP nulls both OTP fields unconditionally.
func (r *PostgresUserRepository) ClearOTP(ctx context.Context, id kernel.UserID) error {
	query := `
		UPDATE users SET
			otp_code = NULL,
			otp_code_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, query, "failed to clear OTP", id.String())
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id kernel.UserID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, "failed to update password", id.String(), passwordHash)
}

// StampLastLogin records a successful authentication.
func (r *PostgresUserRepository) StampLastLogin(ctx context.Context, id kernel.UserID, at time.Time) error {
	query := `UPDATE users SET last_login = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, "failed to stamp last login", id.String(), at)
}

// ApplyPatch updates only the profile fields present in the patch.
func (r *PostgresUserRepository) ApplyPatch(ctx context.Context, id kernel.UserID, p user.Patch) error {
	if p.IsEmpty() {
		return nil
	}

	query := `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone_number = COALESCE($4, phone_number),
			updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, query, "failed to patch user", id.String(), p.FirstName, p.LastName, p.PhoneNumber)
}

// PurgeExpiredSecrets nulls every expired verification token and OTP in two
// bulk updates.
func (r *PostgresUserRepository) PurgeExpiredSecrets(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64

	queries := []string{
		`UPDATE users SET
			verification_token = NULL,
			verification_token_expires_at = NULL,
			updated_at = NOW()
		WHERE verification_token_expires_at < $1`,
		`UPDATE users SET
			otp_code = NULL,
			otp_code_expires_at = NULL,
			updated_at = NOW()
		WHERE otp_code_expires_at < $1`,
	}

	for _, query := range queries {
		result, err := r.db.ExecContext(ctx, query, cutoff)
		if err != nil {
			return total, errx.Wrap(err, "failed to purge expired secrets", errx.TypeInternal)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return total, errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
		}
		total += rowsAffected
	}

	return total, nil
}

func (r *PostgresUserRepository) execOne(ctx context.Context, query, failMsg string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errx.Wrap(err, failMsg, errx.TypeInternal)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return user.ErrUserNotFound()
	}

	return nil
}
