package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/controllers/helpers"
)

// CurrentTenant pulls the authenticated tenant and user out of the request
// locals set by the auth middleware.
func CurrentTenant(c *fiber.Ctx) (tenantID, uid string, ok bool) {
	tenantID, _ = c.Locals("TenantID").(string)
	uid, _ = c.Locals("UID").(string)
	return tenantID, uid, tenantID != ""
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(500).JSON(helpers.Errors{
		Errors: []string{"jwt.decode_and_verify"},
	})
}
