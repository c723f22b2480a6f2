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

// QuizHandler handles quiz HTTP requests.
type QuizHandler struct {
	quizService        service.QuizService
	leaderboardService service.LeaderboardService
	validator          *validation.Validator
}

func NewQuizHandler(quizService service.QuizService, leaderboardService service.LeaderboardService) *QuizHandler {
	return &QuizHandler{
		quizService:        quizService,
		leaderboardService: leaderboardService,
		validator:          validation.NewValidator(),
	}
}

// CreateQuiz generates a quiz from a document and schedules it.
// @Summary Create a quiz
// @Description Generates questions from the document text via the configured LLM and schedules the quiz window.
// @Tags quizzes
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Quiz details"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse "Question generation failed"
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	creatorID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || creatorID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}

	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateCreateQuizRequest(&req); len(errs) > 0 {
		return errs
	}

	quiz, err := h.quizService.CreateQuiz(c.Context(), creatorID, &req)
	if err != nil {
		return err
	}

	logger.Get().Info("Quiz created",
		zap.String("quizID", quiz.ID),
		zap.String("roomID", req.RoomID),
		zap.Int("questionCount", req.QuestionCount),
	)
	return c.Status(fiber.StatusCreated).JSON(quiz)
}

// ListRoomQuizzes lists the quizzes in a room with live availability.
// @Summary List room quizzes
// @Tags quizzes
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} dto.QuizListResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /rooms/{id}/quizzes [get]
func (h *QuizHandler) ListRoomQuizzes(c *fiber.Ctx) error {
	roomID := c.Params("id")
	studentID, _ := c.Locals(middleware.UserIDKey).(string)

	quizzes, err := h.quizService.ListRoomQuizzes(c.Context(), roomID, studentID)
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// GetQuiz returns a quiz with its current availability.
// @Summary Get a quiz
// @Tags quizzes
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quizID := c.Params("id")
	studentID, _ := c.Locals(middleware.UserIDKey).(string)

	quiz, err := h.quizService.GetQuiz(c.Context(), quizID, studentID)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// GetResult returns the requester's graded submission for a quiz, with
// correct answers revealed.
// @Summary Get my quiz result
// @Tags quizzes
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/result [get]
func (h *QuizHandler) GetResult(c *fiber.Ctx) error {
	quizID := c.Params("id")
	studentID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || studentID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}

	result, err := h.quizService.GetResult(c.Context(), quizID, studentID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetLeaderboard returns the ranked leaderboard for a quiz.
// @Summary Get quiz leaderboard
// @Description Entries are ranked by score descending, then earliest submission, then student ID.
// @Tags quizzes
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/leaderboard [get]
func (h *QuizHandler) GetLeaderboard(c *fiber.Ctx) error {
	quizID := c.Params("id")
	board, err := h.leaderboardService.GetLeaderboard(c.Context(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(board)
}
