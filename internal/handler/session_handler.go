package handler

import (
	"classquiz/internal/dto"
	"classquiz/internal/logger"
	"classquiz/internal/middleware"
	"classquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHandler handles quiz session HTTP requests. Sessions are
// in-memory state machines; every endpoint requires the authenticated
// student who started the session.
type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) requesterID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}
	return userID, nil
}

// Start begins a quiz session for the authenticated student.
// @Summary Start a quiz session
// @Description Fails with 409 INELIGIBLE_TO_START outside the quiz window, after a prior submission, or while another session is running.
// @Tags sessions
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 201 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quizzes/{id}/session [post]
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	quizID := c.Params("id")
	studentID, err := h.requesterID(c)
	if err != nil {
		return err
	}

	session, err := h.sessionService.Start(c.Context(), quizID, studentID)
	if err != nil {
		return err
	}

	logger.Get().Info("Session started",
		zap.String("sessionID", session.SessionID),
		zap.String("quizID", quizID),
		zap.String("studentID", studentID),
	)
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Get returns the current state of a session.
// @Summary Get session state
// @Tags sessions
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	requesterID, err := h.requesterID(c)
	if err != nil {
		return err
	}

	session, err := h.sessionService.Get(c.Context(), sessionID, requesterID)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// SelectAnswer records or overwrites an answer in a running session.
// @Summary Select an answer
// @Tags sessions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SelectAnswerRequest true "Question and option indices"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid answer index"
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/answer [post]
func (h *SessionHandler) SelectAnswer(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	requesterID, err := h.requesterID(c)
	if err != nil {
		return err
	}

	var req dto.SelectAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := h.sessionService.SelectAnswer(c.Context(), sessionID, requesterID, req.QuestionIndex, req.OptionIndex)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// Navigate moves the session's current-question cursor.
// @Summary Navigate between questions
// @Description Out-of-range targets are clamped to the question range.
// @Tags sessions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.NavigateRequest true "Target question index"
// @Success 200 {object} dto.SessionResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/navigate [post]
func (h *SessionHandler) Navigate(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	requesterID, err := h.requesterID(c)
	if err != nil {
		return err
	}

	var req dto.NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := h.sessionService.Navigate(c.Context(), sessionID, requesterID, req.Index)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// Submit finalizes a session, grades it, and persists the result.
// @Summary Submit a session
// @Description Grades the answers, records the submission once, and posts the score to the leaderboard.
// @Tags sessions
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Duplicate submission"
// @Failure 503 {object} middleware.ErrorResponse "Storage unavailable, retry later"
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) Submit(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	requesterID, err := h.requesterID(c)
	if err != nil {
		return err
	}

	result, err := h.sessionService.Submit(c.Context(), sessionID, requesterID)
	if err != nil {
		return err
	}

	logger.Get().Info("Session submitted",
		zap.String("sessionID", sessionID),
		zap.String("quizID", result.QuizID),
		zap.Int("score", result.Score),
	)
	return c.JSON(result)
}
