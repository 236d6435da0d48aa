package account

import (
	"net/http"

	"github.com/ledgerline/identity/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ACCOUNT")

var (
	// CodeInvalidCredentials covers unknown identifier and wrong password
	// alike; callers never learn which check failed.
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid credentials")
	CodeAccountDisabled    = ErrRegistry.Register("DISABLED", errx.TypeForbidden, http.StatusForbidden, "Account is disabled")
	CodeIdentifierRequired = ErrRegistry.Register("IDENTIFIER_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Provide exactly one of email or username")
	CodeAlreadyVerified    = ErrRegistry.Register("ALREADY_VERIFIED", errx.TypeConflict, http.StatusConflict, "Email is already verified")
	CodeInvalidCode        = ErrRegistry.Register("INVALID_CODE", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid or expired code")
	CodeInvalidPhone       = ErrRegistry.Register("INVALID_PHONE", errx.TypeValidation, http.StatusBadRequest, "Invalid phone number")
)

func ErrInvalidCredentials() *errx.Error { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrAccountDisabled() *errx.Error    { return ErrRegistry.New(CodeAccountDisabled) }
func ErrIdentifierRequired() *errx.Error { return ErrRegistry.New(CodeIdentifierRequired) }
func ErrAlreadyVerified() *errx.Error    { return ErrRegistry.New(CodeAlreadyVerified) }
func ErrInvalidCode() *errx.Error        { return ErrRegistry.New(CodeInvalidCode) }
func ErrInvalidPhone() *errx.Error       { return ErrRegistry.New(CodeInvalidPhone) }
