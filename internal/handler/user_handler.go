package handler

import (
	"classquiz/internal/dto"
	"classquiz/internal/logger"
	"classquiz/internal/middleware"
	"classquiz/internal/service"
	"classquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles registration and profile HTTP requests.
type UserHandler struct {
	userService service.UserService
	validator   *validation.Validator
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validation.NewValidator(),
	}
}

// Register creates a new user account and returns an access token.
// @Summary Register a user
// @Description Creates a student or faculty account and issues a JWT.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User details"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateCreateUserRequest(&req); len(errs) > 0 {
		return errs
	}

	profile, token, err := h.userService.Register(c.Context(), &req)
	if err != nil {
		return err
	}

	logger.Get().Info("User registered",
		zap.String("userID", profile.ID),
		zap.String("role", profile.Role),
	)
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		User:        *profile,
		AccessToken: token,
	})
}

// GetMyProfile retrieves the profile of the authenticated user.
// @Summary Get my profile
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}
	profile, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// GetMyDashboard summarizes the authenticated student's past attempts.
// @Summary Get my dashboard
// @Description Returns attempt count, average score, and bucket distribution.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me/dashboard [get]
func (h *UserHandler) GetMyDashboard(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}
	dashboard, err := h.userService.GetDashboard(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dashboard)
}
