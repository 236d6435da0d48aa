package invitationapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type createEnterpriseRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

func (r createEnterpriseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.Email, is.Email),
	)
}

type inviteRequest struct {
	Email string `json:"email"`
	Kind  string `json:"kind"`
	Role  string `json:"role"`
}

func (r inviteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Kind, validation.Required, validation.In("staff", "client")),
		validation.Field(&r.Role, validation.In("assistant", "cpa", "reviewer", "client")),
	)
}

type batchInviteRequest struct {
	Invitations []inviteRequest `json:"invitations"`
}

func (r batchInviteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Invitations, validation.Required),
	)
}

type acceptRequest struct {
	Token string `json:"token"`
}

func (r acceptRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}
