package credential

import (
	"net/http"

	"github.com/ledgerline/identity/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("CREDENTIAL")

var (
	CodeWeakPassword  = ErrRegistry.Register("WEAK_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Password does not meet strength requirements")
	CodeEmptyPassword = ErrRegistry.Register("EMPTY_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Password must not be empty")
	CodeHashFailed    = ErrRegistry.Register("HASH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Password hashing failed")
)

func ErrWeakPassword(reason string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeWeakPassword, reason)
}

func ErrEmptyPassword() *errx.Error {
	return ErrRegistry.New(CodeEmptyPassword)
}

func ErrHashFailed() *errx.Error {
	return ErrRegistry.New(CodeHashFailed)
}
