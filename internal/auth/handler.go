package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/response"
	"github.com/wichananm65/fakturera/internal/router"
)

type Handler struct {
	issuer *Issuer
	users  Authenticator
	log    *zap.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

func NewHandler(issuer *Issuer, users Authenticator, log *zap.Logger) *Handler {
	return &Handler{issuer: issuer, users: users, log: log}
}

func (h *Handler) Routes() router.Table {
	return router.Table{
		{Method: fiber.MethodPost, Path: "/api/auth/login", Handler: h.login},
		{Method: fiber.MethodGet, Path: "/api/auth/verify", Handler: h.verify, Auth: true},
	}
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := router.BindJSON(c, payload); err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.TypeInvalidJSON, "Request body must be valid JSON", nil)
	}
	if payload.Username == "" || payload.Password == "" {
		return response.Error(c, fiber.StatusBadRequest, response.TypeBadRequest, "Username and password are required", nil)
	}

	user, err := h.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		h.log.Info("login rejected", zap.String("username", payload.Username))
		return response.Unauthorized(c, "Invalid username or password")
	}

	token, err := h.issuer.Issue(user.ID, user.Username)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, response.TypeInternal, "failed to generate token", nil)
	}

	return response.JSON(c, fiber.StatusOK, loginResponse{Token: token, User: user})
}

func (h *Handler) verify(c *fiber.Ctx) error {
	id, ok := IdentityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, msgBadToken)
	}
	return response.JSON(c, fiber.StatusOK, fiber.Map{"valid": true, "user": id})
}
