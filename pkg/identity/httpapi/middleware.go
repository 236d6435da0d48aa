// Package httpapi carries the pieces shared by the HTTP handler packages:
// the bearer-token middleware and request plumbing helpers.
package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/identity/account"
	"github.com/ledgerline/identity/pkg/identity/token"
	"github.com/ledgerline/identity/pkg/identity/user"
	"github.com/ledgerline/identity/pkg/kernel"
)

const authLocalKey = "auth"

// AuthMiddleware authenticates requests with a bearer access token and
// injects the caller's AuthContext into the request locals.
type AuthMiddleware struct {
	issuer *token.Issuer
	users  user.Repository
}

// NewAuthMiddleware creates the middleware.
func NewAuthMiddleware(issuer *token.Issuer, users user.Repository) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer, users: users}
}

// Authenticate validates the access token and loads the account behind it.
// A token for a disabled or deleted account is rejected even when the
// signature still checks out.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return token.ErrInvalidToken()
		}

		claims, err := m.issuer.Verify(tokenString, token.PurposeAccess)
		if err != nil {
			return err
		}

		u, err := m.users.FindByID(c.Context(), claims.UserID)
		if err != nil {
			return token.ErrInvalidToken()
		}
		if !u.IsActive {
			return account.ErrAccountDisabled()
		}

		c.Locals(authLocalKey, &kernel.AuthContext{
			UserID:      u.ID,
			Email:       u.Email,
			IsSuperuser: u.IsSuperuser,
		})

		return c.Next()
	}
}

// bearerToken extracts the token from the Authorization header, falling
// back to the access_token cookie.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1]
		}
	}
	return c.Cookies("access_token")
}

// Auth returns the AuthContext injected by Authenticate, or an
// authorization error when the route was wired without it.
func Auth(c *fiber.Ctx) (*kernel.AuthContext, error) {
	ac, ok := c.Locals(authLocalKey).(*kernel.AuthContext)
	if !ok || ac == nil || !ac.IsValid() {
		return nil, errx.Unauthorized("Authentication required")
	}
	return ac, nil
}
