package router

import "github.com/gofiber/fiber/v2"

// BindJSON decodes the request body into v using the app's JSON decoder,
// regardless of the Content-Type header. An empty body leaves v untouched.
func BindJSON(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	return c.App().Config().JSONDecoder(body, v)
}
