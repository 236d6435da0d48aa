package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ledgerline/identity/pkg/errx"
)

// Validatable is a request body that can validate itself.
type Validatable interface {
	Validate() error
}

// ParseBody decodes the JSON body into req and runs its validation rules.
// Both failure modes surface as 400 validation errors.
func ParseBody(c *fiber.Ctx, req Validatable) error {
	if err := c.BodyParser(req); err != nil {
		return errx.Validation("Invalid request body").WithDetail("error", err.Error())
	}
	if err := req.Validate(); err != nil {
		return errx.Validation("Validation failed").WithDetail("error", err.Error())
	}
	return nil
}
