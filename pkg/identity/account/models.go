// Package account defines the inputs and results of the account lifecycle:
// registration, verification, the login variants, recovery, and profile
// management. The service implementation lives in accountsrv.
package account

import (
	"github.com/ledgerline/identity/pkg/identity/token"
	"github.com/ledgerline/identity/pkg/identity/user"
)

// RegisterInput is a self-service registration request.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
}

// RegisterResult reports a completed registration. Warning is set when the
// account was created but the verification email could not be issued or
// delivered; registration itself never rolls back on notification failure.
type RegisterResult struct {
	User    user.Summary `json:"user"`
	Warning string       `json:"warning,omitempty"`
}

// LoginInput authenticates by password against exactly one identifier.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// AuthResult is a successful authentication: the caller-visible account
// projection plus a fresh token pair.
type AuthResult struct {
	User   user.Summary `json:"user"`
	Tokens *token.Pair  `json:"tokens"`
}

// RecoveryAck is the fixed acknowledgement for recovery-code requests. The
// same value is returned whether or not the address has an account.
type RecoveryAck struct {
	Message string `json:"message"`
}

// RecoveryAckMessage is the single acknowledgement text for every
// recovery-code request outcome.
const RecoveryAckMessage = "If an account exists for that address, a code has been sent."

// ResetPasswordInput redeems a recovery code for a new password.
type ResetPasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}

// ChangePasswordInput rotates the password of an authenticated user.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}
