package invitation

import (
	"net/http"

	"github.com/ledgerline/identity/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("INVITATION")

var (
	CodeAllInvitesFailed = ErrRegistry.Register("ALL_FAILED", errx.TypeValidation, http.StatusBadRequest, "All invitations failed")
	CodeEmptyBatch       = ErrRegistry.Register("EMPTY_BATCH", errx.TypeValidation, http.StatusBadRequest, "No invitations provided")
)

func ErrAllInvitesFailed() *errx.Error { return ErrRegistry.New(CodeAllInvitesFailed) }
func ErrEmptyBatch() *errx.Error       { return ErrRegistry.New(CodeEmptyBatch) }
