package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/majewskibartosz/railway-support-lab/internal/api/dto"
	"github.com/majewskibartosz/railway-support-lab/internal/auth"
	apperrors "github.com/majewskibartosz/railway-support-lab/pkg/util"
)

// AuthHandler issues admin tokens for the debug surface.
type AuthHandler struct {
	tokens       *auth.TokenManager
	passwordHash string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, passwordHash string) *AuthHandler {
	return &AuthHandler{tokens: tokens, passwordHash: passwordHash}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	if req.Password == "" {
		return apperrors.NewInvalidInput("password required", nil)
	}

	if err := auth.ComparePassword(h.passwordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.LoginResponse{Token: token, ExpiresAt: expiresAt})
}
