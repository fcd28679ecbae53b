// Package example serves the sample endpoint and the database connectivity
// probe.
package example

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/database"
	"github.com/wichananm65/fakturera/internal/response"
	"github.com/wichananm65/fakturera/internal/router"
)

var errNoDatabase = errors.New("database is not configured")

// Clock reports the database server time.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// DBClock reads NOW() from q.
type DBClock struct {
	q database.Querier
}

func NewDBClock(q database.Querier) *DBClock {
	return &DBClock{q: q}
}

func (d *DBClock) Now(ctx context.Context) (time.Time, error) {
	return database.Now(ctx, d.q)
}

type Handler struct {
	clock Clock
	log   *zap.Logger
	now   func() time.Time
}

// NewHandler builds the handler. A nil clock makes the database probe report
// a configuration failure.
func NewHandler(clock Clock, log *zap.Logger) *Handler {
	return &Handler{clock: clock, log: log, now: time.Now}
}

func (h *Handler) Routes() router.Table {
	return router.Table{
		{Method: fiber.MethodGet, Path: "/api/example", Handler: h.example},
		{Method: fiber.MethodGet, Path: "/api/db/test", Handler: h.dbTest},
	}
}

func (h *Handler) example(c *fiber.Ctx) error {
	return response.JSON(c, fiber.StatusOK, fiber.Map{
		"message":   "This is an example endpoint",
		"timestamp": h.now().UTC(),
	})
}

func (h *Handler) dbTest(c *fiber.Ctx) error {
	if h.clock == nil {
		return response.Error(c, fiber.StatusInternalServerError, response.TypeDatabase, errNoDatabase.Error(),
			fiber.Map{"hint": response.ConfigHint})
	}

	ts, err := h.clock.Now(c.UserContext())
	if err != nil {
		h.log.Warn("database probe failed", zap.Error(err))
		if database.IsConnectionError(err) {
			return response.Error(c, fiber.StatusInternalServerError, response.TypeDatabase, response.ConnectionMessage,
				fiber.Map{"hint": response.ConnectionHint})
		}
		return response.Error(c, fiber.StatusInternalServerError, response.TypeDatabase, err.Error(),
			fiber.Map{"hint": response.ConfigHint})
	}

	return response.JSON(c, fiber.StatusOK, fiber.Map{
		"message":   "Database connection successful",
		"timestamp": ts,
		"database":  "connected",
	})
}
