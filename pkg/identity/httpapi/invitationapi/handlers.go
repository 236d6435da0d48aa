// Package invitationapi exposes enterprise creation and the invitation
// workflow over HTTP.
package invitationapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ledgerline/identity/pkg/identity/enterprise"
	"github.com/ledgerline/identity/pkg/identity/httpapi"
	"github.com/ledgerline/identity/pkg/identity/invitation"
	"github.com/ledgerline/identity/pkg/identity/invitation/invitationsrv"
	"github.com/ledgerline/identity/pkg/kernel"
)

// Handlers bundles the enterprise and invitation HTTP handlers.
type Handlers struct {
	svc *invitationsrv.Service
}

// NewHandlers creates the invitation handlers.
func NewHandlers(svc *invitationsrv.Service) *Handlers {
	return &Handlers{svc: svc}
}

// RegisterRoutes mounts the enterprise and invitation routes on the app.
// Acceptance is public: the invitee usually has no session yet.
func (h *Handlers) RegisterRoutes(app *fiber.App, auth *httpapi.AuthMiddleware) {
	grp := app.Group("/api/v1")

	grp.Post("/enterprises", auth.Authenticate(), h.createEnterprise)
	grp.Post("/enterprises/:id/invitations", auth.Authenticate(), h.invite)
	grp.Post("/enterprises/:id/invitations/batch", auth.Authenticate(), h.inviteBatch)

	grp.Post("/invitations/accept", h.accept)
}

func (h *Handlers) createEnterprise(c *fiber.Ctx) error {
	ac, err := httpapi.Auth(c)
	if err != nil {
		return err
	}

	var req createEnterpriseRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	e, err := h.svc.CreateEnterprise(c.Context(), ac.UserID, invitation.CreateEnterpriseInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(e)
}

func (h *Handlers) invite(c *fiber.Ctx) error {
	ac, err := httpapi.Auth(c)
	if err != nil {
		return err
	}

	var req inviteRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	result, err := h.svc.Invite(c.Context(), ac.UserID, invitation.InviteInput{
		EnterpriseID: kernel.NewEnterpriseID(c.Params("id")),
		Email:        req.Email,
		Kind:         enterprise.Kind(req.Kind),
		Role:         enterprise.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *Handlers) inviteBatch(c *fiber.Ctx) error {
	ac, err := httpapi.Auth(c)
	if err != nil {
		return err
	}

	var req batchInviteRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	items := make([]invitation.BatchItem, 0, len(req.Invitations))
	for _, item := range req.Invitations {
		items = append(items, invitation.BatchItem{
			Email: item.Email,
			Kind:  enterprise.Kind(item.Kind),
			Role:  enterprise.Role(item.Role),
		})
	}

	result, err := h.svc.InviteBatch(c.Context(), ac.UserID, kernel.NewEnterpriseID(c.Params("id")), items)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *Handlers) accept(c *fiber.Ctx) error {
	var req acceptRequest
	if err := httpapi.ParseBody(c, &req); err != nil {
		return err
	}

	result, err := h.svc.Accept(c.Context(), req.Token)
	if err != nil {
		return err
	}

	return c.JSON(result)
}
