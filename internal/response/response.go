// Package response formats the JSON envelopes returned by every route.
package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/fakturera/internal/database"
	"github.com/wichananm65/fakturera/internal/validate"
)

// Error types used in the "error" field of the envelope.
const (
	TypeBadRequest    = "Bad Request"
	TypeUnauthorized  = "Unauthorized"
	TypeNotFound      = "Not Found"
	TypeInvalidJSON   = "Invalid JSON"
	TypeDatabase      = "Database Error"
	TypeInternal      = "Internal Server Error"
	ConnectionMessage = "PostgreSQL is not running or not accessible. Please start PostgreSQL service."
	ConnectionHint    = "Run: sudo systemctl start postgresql"
	ConfigHint        = "Check your database configuration in .env file"
)

// JSON writes payload with the given status.
func JSON(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(payload)
}

// HTML writes an HTML document.
func HTML(c *fiber.Ctx, status int, body string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).SendString(body)
}

// Error writes {error, message, ...extra}. extra may not replace error or
// message.
func Error(c *fiber.Ctx, status int, errType, message string, extra fiber.Map) error {
	body := fiber.Map{}
	for k, v := range extra {
		body[k] = v
	}
	body["error"] = errType
	body["message"] = message
	return c.Status(status).JSON(body)
}

// Invalid renders a validation failure as a 400 naming the allowed values and
// echoing the offending input.
func Invalid(c *fiber.Ctx, err error) error {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return Error(c, fiber.StatusBadRequest, verr.Type, verr.Error(), fiber.Map{"provided": verr.Provided})
	}
	return Error(c, fiber.StatusBadRequest, TypeBadRequest, err.Error(), nil)
}

// Store renders a data-access failure as a 500. Connectivity failures get an
// operator hint instead of the raw driver message.
func Store(c *fiber.Ctx, err error) error {
	if database.IsConnectionError(err) {
		return Error(c, fiber.StatusInternalServerError, TypeDatabase, ConnectionMessage, fiber.Map{"hint": ConnectionHint})
	}
	return Error(c, fiber.StatusInternalServerError, TypeDatabase, err.Error(), nil)
}

// NotFound renders a 404 for a missing resource.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, TypeNotFound, message, nil)
}

// Unauthorized renders a 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, TypeUnauthorized, message, nil)
}
