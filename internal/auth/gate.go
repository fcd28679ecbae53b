package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/fakturera/internal/response"
)

const (
	tokenLocal    = "user"
	identityLocal = "identity"

	msgBadHeader = "Missing or invalid authorization header"
	msgBadToken  = "Invalid or expired token"
)

// Gate returns middleware that lets a request through only with a valid
// "Authorization: Bearer <token>" header. Rejections are written here and the
// wrapped handler does not run.
func Gate(issuer *Issuer) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey:    issuer.secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    tokenLocal,
		TokenLookup:   "header:" + fiber.HeaderAuthorization,
		AuthScheme:    "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return response.Unauthorized(c, msgBadToken)
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			tok, ok := c.Locals(tokenLocal).(*jwt.Token)
			if !ok {
				return response.Unauthorized(c, msgBadToken)
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return response.Unauthorized(c, msgBadToken)
			}
			id, err := issuer.validate(claims)
			if err != nil {
				return response.Unauthorized(c, msgBadToken)
			}
			c.Locals(identityLocal, id)
			return c.Next()
		},
	})

	return func(c *fiber.Ctx) error {
		if _, ok := bearer(c.Get(fiber.HeaderAuthorization)); !ok {
			return response.Unauthorized(c, msgBadHeader)
		}
		return verify(c)
	}
}

// IdentityFromCtx returns the identity stored by Gate.
func IdentityFromCtx(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityLocal).(Identity)
	return id, ok
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
