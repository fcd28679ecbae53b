package product

import (
	"errors"
	"fmt"
	"strconv"

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

type listResponse struct {
	LanguageCode language.Code `json:"language_code"`
	Products     []Product     `json:"products"`
	Count        int           `json:"count"`
}

type updateResponse struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes are all behind the auth gate.
func (h *Handler) Routes() router.Table {
	return router.Table{
		{Method: fiber.MethodGet, Path: "/api/products", Handler: h.getProducts, Auth: true},
		{Method: fiber.MethodGet, Path: "/api/products/:id", Handler: h.getProduct, Auth: true},
		{Method: fiber.MethodPut, Path: "/api/products/:id", Handler: h.updateProduct, Auth: true},
	}
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	q, err := ParseListQuery(c.Query("lang"), c.Query("sort"), c.Query("order"))
	if err != nil {
		return response.Invalid(c, err)
	}

	products, err := h.service.List(c.UserContext(), q)
	if err != nil {
		h.log.Error("list products", zap.Error(err))
		return response.Store(c, err)
	}
	return response.JSON(c, fiber.StatusOK, listResponse{
		LanguageCode: q.Lang,
		Products:     products,
		Count:        len(products),
	})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.Invalid(c, err)
	}
	lang, err := language.Parse(c.Query("lang"))
	if err != nil {
		return response.Invalid(c, err)
	}

	p, err := h.service.GetByID(c.UserContext(), id, lang)
	if errors.Is(err, ErrNotFound) {
		return response.NotFound(c, notFoundMessage(id))
	}
	if err != nil {
		h.log.Error("get product", zap.Int("id", id), zap.Error(err))
		return response.Store(c, err)
	}
	return response.JSON(c, fiber.StatusOK, p)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.Invalid(c, err)
	}
	lang, err := language.Parse(c.Query("lang"))
	if err != nil {
		return response.Invalid(c, err)
	}
	patch, err := ParsePatch(c.Body())
	if err != nil {
		return response.Invalid(c, err)
	}

	p, err := h.service.Update(c.UserContext(), id, lang, patch)
	switch {
	case errors.Is(err, ErrNoFields):
		return response.Error(c, fiber.StatusBadRequest, response.TypeBadRequest, "No fields provided", fiber.Map{"allowed": Fields()})
	case errors.Is(err, ErrNotFound):
		return response.NotFound(c, notFoundMessage(id))
	case err != nil:
		h.log.Error("update product", zap.Int("id", id), zap.Error(err))
		return response.Store(c, err)
	}

	h.log.Info("product updated", zap.Int("id", id), zap.Int("fields", len(patch)))
	return response.JSON(c, fiber.StatusOK, updateResponse{Message: "Product updated successfully", Product: p})
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, invalidID(raw)
	}
	return id, nil
}

func notFoundMessage(id int) string {
	return fmt.Sprintf("Product with id %d not found", id)
}
