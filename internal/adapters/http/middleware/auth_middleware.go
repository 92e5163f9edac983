package middleware

import (
	"strings"

	"credit-app/internal/config"
	"credit-app/internal/core/domain"
	"credit-app/internal/core/services"
	"credit-app/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// identityKey is the fiber locals key holding the caller's domain.Identity
const identityKey = "identity"

// ExtractToken returns the session token of the request: the session cookie
// first, then an Authorization Bearer header.
func ExtractToken(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware rejects requests without a valid, unrevoked session token
func AuthMiddleware(authService *services.AuthService, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c, cfg.Cookie.Name)
		if token == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		identity, err := authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return response.FromError(c, err, "Failed to verify session")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RoleMiddleware allows only the given roles. It must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		for _, role := range allowedRoles {
			if identity.Role == role {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// GetIdentity returns the identity stored by AuthMiddleware
func GetIdentity(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
