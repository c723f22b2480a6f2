package middleware

import (
	"classquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParam validates a ULID path parameter before the handler runs.
// The validated value is stored in context locals under "validated_"+param.
func (vm *ValidationMiddleware) ValidateIDParam(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Params(param)
		if errs := vm.validator.ValidateIDParam(param, value); len(errs) > 0 {
			return errs // handled by ErrorHandler middleware
		}
		c.Locals("validated_"+param, value)
		return c.Next()
	}
}
