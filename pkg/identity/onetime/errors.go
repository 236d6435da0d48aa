package onetime

import (
	"net/http"

	"github.com/ledgerline/identity/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ONETIME")

var (
	CodeVerificationNotFound = ErrRegistry.Register("VERIFICATION_NOT_FOUND", errx.TypeValidation, http.StatusBadRequest, "Invalid verification token")
	CodeVerificationExpired  = ErrRegistry.Register("VERIFICATION_EXPIRED", errx.TypeExpired, http.StatusBadRequest, "Verification token has expired")
)

func ErrVerificationNotFound() *errx.Error { return ErrRegistry.New(CodeVerificationNotFound) }
func ErrVerificationExpired() *errx.Error  { return ErrRegistry.New(CodeVerificationExpired) }
