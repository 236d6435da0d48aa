// Package accountapi exposes the account lifecycle over HTTP.
package accountapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ledgerline/identity/pkg/identity/account"
	"github.com/ledgerline/identity/pkg/identity/account/accountsrv"
	"github.com/ledgerline/identity/pkg/identity/httpapi"
	"github.com/ledgerline/identity/pkg/identity/user"
)

// Handlers bundles the account HTTP handlers.
type Handlers struct {
	svc *accountsrv.Service
}

// NewHandlers creates the account handlers.
func NewHandlers(svc *accountsrv.Service) *Handlers {
	return &Handlers{svc: svc}
}

// RegisterRoutes mounts the account routes on the app.
func (h *Handlers) RegisterRoutes(app *fiber.App, auth *httpapi.AuthMiddleware) {
	grp := app.Group("/auth")

	grp.Post("/register", h.register)
	grp.Post("/verify-email", h.verifyEmail)
	grp.Post("/resend-verification", h.resendVerification)
	grp.Post("/login", h.login)
	grp.Post("/login/code", h.loginWithCode)
	grp.Post("/recovery", h.requestRecoveryCode)
	grp.Post("/reset-password", h.resetPassword)
	grp.Post("/refresh", h.refresh)

	grp.Get("/me", auth.Authenticate(), h.me)
	grp.Post("/change-password", auth.Authenticate(), h.changePassword)
	grp.Patch("/profile", auth.Authenticate(), h.updateProfile)
}

func (h *Handlers) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	result, err := h.svc.Register(c.Context(), account.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *Handlers) verifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	result, err := h.svc.VerifyEmail(c.Context(), req.Token)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *Handlers) resendVerification(c *fiber.Ctx) error {
	var req emailRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	h.svc.ResendVerification(c.Context(), req.Email)

	return c.JSON(fiber.Map{"message": account.RecoveryAckMessage})
}

func (h *Handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	result, err := h.svc.Login(c.Context(), account.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *Handlers) loginWithCode(c *fiber.Ctx) error {
	var req codeLoginRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	result, err := h.svc.LoginWithCode(c.Context(), req.Email, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *Handlers) requestRecoveryCode(c *fiber.Ctx) error {
	var req emailRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	return c.JSON(h.svc.RequestRecoveryCode(c.Context(), req.Email))
}

func (h *Handlers) resetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	if err := h.svc.ResetPassword(c.Context(), account.ResetPasswordInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *Handlers) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	pair, err := h.svc.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(pair)
}

func (h *Handlers) me(c *fiber.Ctx) error {
	ac, err := httpapi.Auth(c)
	if err != nil {
		return err
	}

	summary, err := h.svc.Me(c.Context(), ac.UserID)
	if err != nil {
		return err
	}

	return c.JSON(summary)
}

func (h *Handlers) changePassword(c *fiber.Ctx) error {
	ac, err := httpapi.Auth(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	if err := h.svc.ChangePassword(c.Context(), ac.UserID, account.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *Handlers) updateProfile(c *fiber.Ctx) error {
	ac, err := httpapi.Auth(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	summary, err := h.svc.UpdateProfile(c.Context(), ac.UserID, user.Patch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(summary)
}
