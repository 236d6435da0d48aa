package enterpriseinfra

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/identity/enterprise"
	"github.com/ledgerline/identity/pkg/kernel"
)

func membershipFixture() *enterprise.Membership {
	return &enterprise.Membership{
		ID:           kernel.NewMembershipID("m-1"),
		UserID:       kernel.NewUserID("u-1"),
		EnterpriseID: kernel.NewEnterpriseID("e-1"),
	}
}

func TestTranslateMembershipInsertErr_UserEnterpriseConflict(t *testing.T) {
	cause := &pq.Error{Code: "23505", Constraint: "memberships_user_enterprise_key"}

	err := translateMembershipInsertErr(cause, membershipFixture())
	if !errx.HasCode(err, enterprise.CodeAlreadyMember) {
		t.Fatalf("expected already-member, got %v", err)
	}

	var e *errx.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errx.Error, got %T", err)
	}
	if e.Details["user_id"] != "u-1" || e.Details["enterprise_id"] != "e-1" {
		t.Fatalf("expected user and enterprise details, got %v", e.Details)
	}
}

func TestTranslateMembershipInsertErr_OtherUniqueViolation(t *testing.T) {
	// a primary-key collision is a bug, not a membership conflict
	cause := &pq.Error{Code: "23505", Constraint: "memberships_pkey"}

	err := translateMembershipInsertErr(cause, membershipFixture())
	if errx.HasCode(err, enterprise.CodeAlreadyMember) {
		t.Fatalf("pkey violation must not map to already-member: %v", err)
	}

	var e *errx.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errx.Error, got %T", err)
	}
	if e.Type != errx.TypeInternal {
		t.Fatalf("expected internal error, got %s", e.Type)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the driver error to stay in the chain")
	}
}

func TestTranslateMembershipInsertErr_NonDriverError(t *testing.T) {
	cause := errors.New("connection reset")

	err := translateMembershipInsertErr(cause, membershipFixture())
	if errx.HasCode(err, enterprise.CodeAlreadyMember) {
		t.Fatalf("plain errors must not map to already-member: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to stay in the chain")
	}
}
