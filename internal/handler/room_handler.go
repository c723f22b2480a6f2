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

// RoomHandler handles classroom room HTTP requests.
type RoomHandler struct {
	roomService service.RoomService
	validator   *validation.Validator
}

func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		validator:   validation.NewValidator(),
	}
}

// CreateRoom creates a classroom room owned by the requesting faculty member.
// @Summary Create a room
// @Tags rooms
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateRoomRequest true "Room details"
// @Success 201 {object} dto.RoomResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /rooms [post]
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	facultyID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || facultyID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}

	var req dto.CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateCreateRoomRequest(&req); len(errs) > 0 {
		return errs
	}

	room, err := h.roomService.CreateRoom(c.Context(), facultyID, &req)
	if err != nil {
		return err
	}

	logger.Get().Info("Room created",
		zap.String("roomID", room.ID),
		zap.String("facultyID", facultyID),
	)
	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetRoom returns a room by ID.
// @Summary Get a room
// @Tags rooms
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} dto.RoomResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	roomID := c.Params("id")
	room, err := h.roomService.GetRoom(c.Context(), roomID)
	if err != nil {
		return err
	}
	return c.JSON(room)
}
