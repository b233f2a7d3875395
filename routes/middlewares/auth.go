package middlewares

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/controllers/helpers"
)

var (
	AuthzInvalidSession = "authz.invalid_session"
	JwtDecodeAndVerify  = "jwt.decode_and_verify"
)

// Auth represents the parsed JWT claims issued by the identity service.
// Tenant provisioning happens there; this core only scopes by tenant_id.
type Auth struct {
	TenantID string `json:"tenant_id"`
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Role     string `json:"role"`

	jwt.StandardClaims
}

func Authenticate(c *fiber.Ctx) error {
	token := c.Get("Authorization")
	if !strings.HasPrefix(token, "Bearer ") {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{AuthzInvalidSession},
		})
	}
	token = strings.TrimPrefix(token, "Bearer ")

	auth := &Auth{}
	_, err := jwt.ParseWithClaims(token, auth, func(t *jwt.Token) (interface{}, error) {
		pem, err := base64.StdEncoding.DecodeString(os.Getenv("JWT_PUBLIC_KEY"))
		if err != nil {
			return nil, err
		}
		return jwt.ParseRSAPublicKeyFromPEM(pem)
	})
	if err != nil || auth.TenantID == "" {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{JwtDecodeAndVerify},
		})
	}

	c.Locals("TenantID", auth.TenantID)
	c.Locals("UID", auth.UID)
	c.Locals("Role", auth.Role)

	return c.Next()
}
