package terms

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/language"
	"github.com/wichananm65/fakturera/internal/response"
	"github.com/wichananm65/fakturera/internal/router"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(s *Service, log *zap.Logger) *Handler {
	return &Handler{service: s, log: log}
}

func (h *Handler) Routes() router.Table {
	return router.Table{
		{Method: fiber.MethodGet, Path: "/api/terms", Handler: h.getTerms},
	}
}

func (h *Handler) getTerms(c *fiber.Ctx) error {
	lang, err := language.Parse(c.Query("lang"))
	if err != nil {
		return response.Invalid(c, err)
	}

	t, err := h.service.Get(c.UserContext(), lang)
	if errors.Is(err, ErrNotFound) {
		return response.NotFound(c, "Terms content not found for language: "+lang.String())
	}
	if err != nil {
		h.log.Error("get terms", zap.Stringer("lang", lang), zap.Error(err))
		return response.Store(c, err)
	}
	return response.JSON(c, fiber.StatusOK, t)
}
