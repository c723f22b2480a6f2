package middleware

import (
	"strings"

	"classquiz/internal/logger"
	"classquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	UserRoleKey         = "userRole"
)

// Protected is a middleware function that protects routes by requiring a valid JWT.
// It validates the token and sets the user's ID and role in the context.
func Protected(tokenService service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_AUTH_HEADER",
				Message: "Authorization header is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_AUTH_SCHEME",
				Message: "Authorization scheme is not Bearer",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenString := strings.TrimPrefix(authHeader, BearerSchema)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "EMPTY_TOKEN",
				Message: "Token is empty",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: err.Error(),
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(UserRoleKey, claims.Role)

		return c.Next()
	}
}

// OptionalAuth optionally authenticates a user. If a valid access token is
// provided, the user's ID and role are set in the context; otherwise the
// request proceeds anonymously.
func OptionalAuth(tokenService service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerSchema) {
			return c.Next()
		}

		tokenString := strings.TrimPrefix(authHeader, BearerSchema)
		if tokenString == "" {
			return c.Next()
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			logger.Get().Debug("OptionalAuth: JWT validation failed, proceeding as anonymous", zap.Error(err))
			return c.Next()
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(UserRoleKey, claims.Role)

		return c.Next()
	}
}

// RequireRole rejects requests whose authenticated role does not match.
// It must run after Protected.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if got, _ := c.Locals(UserRoleKey).(string); got != role {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "Insufficient role for this operation",
				Status:  fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}
