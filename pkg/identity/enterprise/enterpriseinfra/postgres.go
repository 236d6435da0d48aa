package enterpriseinfra

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/identity/enterprise"
	"github.com/ledgerline/identity/pkg/kernel"
	"github.com/lib/pq"
)

const enterpriseColumns = `
		id, name, owner_id, email, address, is_active, created_at, updated_at`

const membershipColumns = `
		id, user_id, enterprise_id, kind, role, is_active,
		inviter_id, invite_token, invite_token_expires_at, created_at, updated_at`

// PostgresEnterpriseRepository is the PostgreSQL implementation of
// enterprise.Repository.
type PostgresEnterpriseRepository struct {
	db *sqlx.DB
}

// NewPostgresEnterpriseRepository creates a new enterprise repository.
func NewPostgresEnterpriseRepository(db *sqlx.DB) enterprise.Repository {
	return &PostgresEnterpriseRepository{db: db}
}

// Create inserts a new enterprise row. A unique-constraint violation on the
// name is mapped to the domain conflict error.
func (r *PostgresEnterpriseRepository) Create(ctx context.Context, e *enterprise.Enterprise) error {
	query := `
		INSERT INTO enterprises (
			id, name, owner_id, email, address, is_active, created_at, updated_at
		) VALUES (
			:id, :name, :owner_id, :email, :address, :is_active, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, e)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return enterprise.ErrNameTaken().WithDetail("name", e.Name)
		}
		return errx.Wrap(err, "failed to create enterprise", errx.TypeInternal).
			WithDetail("enterprise_id", e.ID.String())
	}

	return nil
}

// FindByID looks up an enterprise by primary key.
func (r *PostgresEnterpriseRepository) FindByID(ctx context.Context, id kernel.EnterpriseID) (*enterprise.Enterprise, error) {
	query := `SELECT ` + enterpriseColumns + ` FROM enterprises WHERE id = $1`
	return r.getOne(ctx, query, id.String())
}

// FindByName looks up an enterprise by its unique name.
func (r *PostgresEnterpriseRepository) FindByName(ctx context.Context, name string) (*enterprise.Enterprise, error) {
	query := `SELECT ` + enterpriseColumns + ` FROM enterprises WHERE name = $1`
	return r.getOne(ctx, query, name)
}

func (r *PostgresEnterpriseRepository) getOne(ctx context.Context, query string, arg any) (*enterprise.Enterprise, error) {
	var e enterprise.Enterprise
	err := r.db.GetContext(ctx, &e, query, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, enterprise.ErrEnterpriseNotFound()
		}
		return nil, errx.Wrap(err, "failed to find enterprise", errx.TypeInternal)
	}
	return &e, nil
}

// PostgresMembershipRepository is the PostgreSQL implementation of
// enterprise.MembershipRepository.
type PostgresMembershipRepository struct {
	db *sqlx.DB
}

// NewPostgresMembershipRepository creates a new membership repository.
func NewPostgresMembershipRepository(db *sqlx.DB) enterprise.MembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

// Create inserts a new membership row. A unique-constraint violation on the
// (user, enterprise) pair is mapped to the domain conflict error.
func (r *PostgresMembershipRepository) Create(ctx context.Context, m *enterprise.Membership) error {
	query := `
		INSERT INTO memberships (
			id, user_id, enterprise_id, kind, role, is_active,
			inviter_id, invite_token, invite_token_expires_at, created_at, updated_at
		) VALUES (
			:id, :user_id, :enterprise_id, :kind, :role, :is_active,
			:inviter_id, :invite_token, :invite_token_expires_at, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return translateMembershipInsertErr(err, m)
	}

	return nil
}

// translateMembershipInsertErr maps a unique violation on the (user,
// enterprise) constraint to the domain conflict. Any other violation, such
// as a primary-key collision, is not a membership conflict and surfaces as
// an internal error.
func translateMembershipInsertErr(err error, m *enterprise.Membership) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
		if strings.Contains(pqErr.Constraint, "user_enterprise") {
			return enterprise.ErrAlreadyMember().
				WithDetail("user_id", m.UserID.String()).
				WithDetail("enterprise_id", m.EnterpriseID.String())
		}
	}
	return errx.Wrap(err, "failed to create membership", errx.TypeInternal).
		WithDetail("membership_id", m.ID.String())
}

// FindByUserAndEnterprise looks up the single membership for a (user,
// enterprise) pair.
func (r *PostgresMembershipRepository) FindByUserAndEnterprise(ctx context.Context, userID kernel.UserID, enterpriseID kernel.EnterpriseID) (*enterprise.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE user_id = $1 AND enterprise_id = $2`
	return r.getOne(ctx, query, userID.String(), enterpriseID.String())
}

// FindByInviteToken looks up a membership by exact plaintext token match.
func (r *PostgresMembershipRepository) FindByInviteToken(ctx context.Context, tokenValue string) (*enterprise.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE invite_token = $1`
	var m enterprise.Membership
	err := r.db.GetContext(ctx, &m, query, tokenValue)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, enterprise.ErrInvalidInvite()
		}
		return nil, errx.Wrap(err, "failed to find membership", errx.TypeInternal)
	}
	return &m, nil
}

func (r *PostgresMembershipRepository) getOne(ctx context.Context, query string, args ...any) (*enterprise.Membership, error) {
	var m enterprise.Membership
	err := r.db.GetContext(ctx, &m, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, enterprise.ErrMembershipNotFound()
		}
		return nil, errx.Wrap(err, "failed to find membership", errx.TypeInternal)
	}
	return &m, nil
}

// Accept activates the membership and the invited user in one transaction.
// The membership update clears the invite token so the transition cannot
// repeat; a second acceptance finds no pending row and fails.
func (r *PostgresMembershipRepository) Accept(ctx context.Context, membershipID kernel.MembershipID, userID kernel.UserID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin transaction", errx.TypeInternal)
	}
	defer tx.Rollback()

	membershipQuery := `
		UPDATE memberships SET
			is_active = TRUE,
			invite_token = NULL,
			invite_token_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1 AND is_active = FALSE`

	result, err := tx.ExecContext(ctx, membershipQuery, membershipID.String())
	if err != nil {
		return errx.Wrap(err, "failed to activate membership", errx.TypeInternal)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return enterprise.ErrMembershipNotFound()
	}

	userQuery := `UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, userQuery, userID.String()); err != nil {
		return errx.Wrap(err, "failed to activate user", errx.TypeInternal)
	}

	if err := tx.Commit(); err != nil {
		return errx.Wrap(err, "failed to commit acceptance", errx.TypeInternal)
	}

	return nil
}

// HasActiveMembership reports whether the user holds any active membership
// in the enterprise.
func (r *PostgresMembershipRepository) HasActiveMembership(ctx context.Context, userID kernel.UserID, enterpriseID kernel.EnterpriseID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM memberships
			WHERE user_id = $1 AND enterprise_id = $2 AND is_active = TRUE
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID.String(), enterpriseID.String()); err != nil {
		return false, errx.Wrap(err, "failed to check membership", errx.TypeInternal)
	}
	return exists, nil
}

// HasActiveStaffMembership reports whether the user holds an active staff
// membership in the enterprise. Client memberships do not count.
func (r *PostgresMembershipRepository) HasActiveStaffMembership(ctx context.Context, userID kernel.UserID, enterpriseID kernel.EnterpriseID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM memberships
			WHERE user_id = $1 AND enterprise_id = $2 AND kind = $3 AND is_active = TRUE
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID.String(), enterpriseID.String(), string(enterprise.KindStaff)); err != nil {
		return false, errx.Wrap(err, "failed to check staff membership", errx.TypeInternal)
	}
	return exists, nil
}
