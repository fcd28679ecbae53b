package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/fakturera/internal/response"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Route is one entry of the dispatch table. Auth routes run behind the gate.
type Route struct {
	Method  string
	Path    string
	Handler fiber.Handler
	Auth    bool
}

// Table is evaluated in declaration order; the first matching route wins.
type Table []Route

// Mount registers every route on r in order, interposing gate in front of
// routes that require authentication, and finishes with a 404 fallback.
func Mount(r fiber.Router, table Table, gate fiber.Handler) {
	for _, rt := range table {
		if rt.Auth {
			r.Add(rt.Method, rt.Path, gate, rt.Handler)
			continue
		}
		r.Add(rt.Method, rt.Path, rt.Handler)
	}
	r.Use(notFound)
}

// Builtin returns the routes owned by the router itself.
func Builtin() Table {
	return Table{
		{Method: fiber.MethodGet, Path: "/health", Handler: health},
		{Method: fiber.MethodGet, Path: "/", Handler: root},
	}
}

func health(c *fiber.Ctx) error {
	return response.JSON(c, fiber.StatusOK, fiber.Map{
		"status":    "OK",
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func root(c *fiber.Ctx) error {
	return response.JSON(c, fiber.StatusOK, fiber.Map{
		"message": "Fakturera API",
		"version": Version,
		"docs":    "/api-docs",
	})
}

func notFound(c *fiber.Ctx) error {
	return response.NotFound(c, "Route "+c.Path()+" not found")
}
