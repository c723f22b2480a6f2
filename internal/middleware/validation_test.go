package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"classquiz/internal/domain"
	"classquiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIDParam(t *testing.T) {
	const validID = "01HZXW5VJ0QZK8Y3TQF9GQ0001"

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "Valid ULID",
			path:           "/quizzes/" + validID,
			expectedStatus: fiber.StatusOK,
			expectNext:     true,
		},
		{
			name:           "Malformed ID",
			path:           "/quizzes/not-a-ulid",
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Wrong Length",
			path:           "/quizzes/01HZXW5VJ0",
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := middleware.NewValidationMiddleware()
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})

			nextCalled := false
			app.Get("/quizzes/:id", vm.ValidateIDParam("id"), func(c *fiber.Ctx) error {
				nextCalled = true
				assert.Equal(t, validID, c.Locals("validated_id"))
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, tt.expectNext, nextCalled)

			if tt.expectedStatus == fiber.StatusBadRequest {
				var body middleware.ValidationErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, string(domain.ErrInvalidInput), body.Code)
				assert.NotEmpty(t, body.Errors)
			}
		})
	}
}
