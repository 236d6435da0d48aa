package token

import (
	"net/http"

	"github.com/ledgerline/identity/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("TOKEN")

var (
	CodeInvalidToken     = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid token")
	CodeExpiredToken     = ErrRegistry.Register("EXPIRED_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Token has expired")
	CodeWrongPurpose     = ErrRegistry.Register("WRONG_PURPOSE", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid token type")
	CodeGenerationFailed = ErrRegistry.Register("GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
)

func ErrInvalidToken() *errx.Error     { return ErrRegistry.New(CodeInvalidToken) }
func ErrExpiredToken() *errx.Error     { return ErrRegistry.New(CodeExpiredToken) }
func ErrWrongPurpose() *errx.Error     { return ErrRegistry.New(CodeWrongPurpose) }
func ErrGenerationFailed() *errx.Error { return ErrRegistry.New(CodeGenerationFailed) }
