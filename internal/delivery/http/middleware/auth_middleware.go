package middleware

import (
	"errors"
	"strings"

	"velocity/internal/pkg/jwt"
	"velocity/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxUserIDKey = "auth.user_id"
	CtxEmailKey  = "auth.email"
)

type AuthMiddleware struct {
	tokens jwt.Service
}

func NewAuthMiddleware(tokens jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return response.Error(c, fiber.StatusUnauthorized, response.MessageUnauthorized, nil)
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Error(c, fiber.StatusUnauthorized, "token expired", nil)
			}
			return response.Error(c, fiber.StatusUnauthorized, response.MessageUnauthorized, nil)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)
		return c.Next()
	}
}

func bearerTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
