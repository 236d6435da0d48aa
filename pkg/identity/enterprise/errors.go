package enterprise

import (
	"net/http"

	"github.com/ledgerline/identity/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ENTERPRISE")

var (
	CodeEnterpriseNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Enterprise not found")
	CodeNameTaken          = ErrRegistry.Register("NAME_TAKEN", errx.TypeConflict, http.StatusConflict, "Enterprise name already in use")
	CodeSelfInvite         = ErrRegistry.Register("SELF_INVITE", errx.TypeValidation, http.StatusBadRequest, "You cannot invite yourself")
	CodeNotAuthorized      = ErrRegistry.Register("NOT_AUTHORIZED", errx.TypeForbidden, http.StatusForbidden, "You do not have permission to invite users to this enterprise")
	CodeAlreadyMember      = ErrRegistry.Register("ALREADY_MEMBER", errx.TypeConflict, http.StatusConflict, "User is already a member of this enterprise")
	CodeInvalidInvite      = ErrRegistry.Register("INVALID_INVITE", errx.TypeValidation, http.StatusBadRequest, "Invalid invitation token")
	CodeInviteExpired      = ErrRegistry.Register("INVITE_EXPIRED", errx.TypeExpired, http.StatusBadRequest, "Invitation token has expired")
	CodeMembershipNotFound = ErrRegistry.Register("MEMBERSHIP_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Membership not found")
	CodeInvalidRole        = ErrRegistry.Register("INVALID_ROLE", errx.TypeValidation, http.StatusBadRequest, "Invalid staff role")
	CodeInvalidKind        = ErrRegistry.Register("INVALID_KIND", errx.TypeValidation, http.StatusBadRequest, "Invalid membership kind")
)

func ErrEnterpriseNotFound() *errx.Error { return ErrRegistry.New(CodeEnterpriseNotFound) }
func ErrNameTaken() *errx.Error          { return ErrRegistry.New(CodeNameTaken) }
func ErrSelfInvite() *errx.Error         { return ErrRegistry.New(CodeSelfInvite) }
func ErrNotAuthorized() *errx.Error      { return ErrRegistry.New(CodeNotAuthorized) }
func ErrAlreadyMember() *errx.Error      { return ErrRegistry.New(CodeAlreadyMember) }
func ErrInvalidInvite() *errx.Error      { return ErrRegistry.New(CodeInvalidInvite) }
func ErrInviteExpired() *errx.Error      { return ErrRegistry.New(CodeInviteExpired) }
func ErrMembershipNotFound() *errx.Error { return ErrRegistry.New(CodeMembershipNotFound) }
func ErrInvalidRole() *errx.Error        { return ErrRegistry.New(CodeInvalidRole) }
func ErrInvalidKind() *errx.Error        { return ErrRegistry.New(CodeInvalidKind) }
