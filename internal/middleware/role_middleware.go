package middleware

import (
	"strings"

	"insurance/internal/apierrors"
	"insurance/internal/models"
	"insurance/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserRoleKey is the request-context key the decoded role is stored under.
const UserRoleKey = "userRole"

// RoleRequired is a Fiber middleware that verifies the bearer token, attaches
// the decoded role to the request context, and rejects non-GET requests whose
// token does not carry the admin role. Verification failures are normalized
// to a single message; the underlying cause is not surfaced to the caller.
func RoleRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apierrors.Unauthorized("No token found")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			return apierrors.Unauthorized("Invalid token format")
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return apierrors.Unauthorized("Invalid or expired token")
		}

		if claims.Role == "" {
			return apierrors.Unauthorized("No role found in token")
		}

		// Attach the role for downstream handlers
		c.Locals(UserRoleKey, claims.Role)

		if c.Method() != fiber.MethodGet && claims.Role != models.RoleAdmin {
			return apierrors.Unauthorized("Only admin can access this route")
		}

		return c.Next()
	}
}
