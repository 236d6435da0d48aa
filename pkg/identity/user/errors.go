package user

import (
	"net/http"

	"github.com/ledgerline/identity/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeEmailTaken    = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeConflict, http.StatusConflict, "Email already registered")
	CodeUsernameTaken = ErrRegistry.Register("USERNAME_TAKEN", errx.TypeConflict, http.StatusConflict, "Username already registered")
)

func ErrUserNotFound() *errx.Error  { return ErrRegistry.New(CodeUserNotFound) }
func ErrEmailTaken() *errx.Error    { return ErrRegistry.New(CodeEmailTaken) }
func ErrUsernameTaken() *errx.Error { return ErrRegistry.New(CodeUsernameTaken) }
