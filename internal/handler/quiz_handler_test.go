package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"classquiz/internal/domain"
	"classquiz/internal/dto"
	"classquiz/internal/handler"
	"classquiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testQuizID = "01HZXW5VJ0QZK8Y3TQF9GQ0001"
	testRoomID = "01HZXW5VJ0QZK8Y3TQF9GQ0003"
)

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeBody(t *testing.T, resp io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp).Decode(v))
}

func TestCreateQuiz_Success(t *testing.T) {
	quizSvc := new(MockQuizService)
	boardSvc := new(MockLeaderboardService)
	h := handler.NewQuizHandler(quizSvc, boardSvc)
	tokens := newTestTokens()
	facultyToken, err := tokens.GenerateToken("faculty-1", domain.RoleFaculty)
	require.NoError(t, err)

	app := newTestApp()
	app.Post("/api/quizzes", middleware.Protected(tokens), h.CreateQuiz)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	reqBody := dto.CreateQuizRequest{
		RoomID:        testRoomID,
		DocumentID:    "01HZXW5VJ0QZK8Y3TQF9GQ0004",
		DocumentText:  "The mitochondria is the powerhouse of the cell.",
		Title:         "Cell Biology",
		QuestionCount: 5,
		StartAt:       start,
		EndAt:         start.Add(time.Hour),
		DurationMin:   10,
	}
	quizSvc.On("CreateQuiz", mock.Anything, "faculty-1", mock.MatchedBy(func(r *dto.CreateQuizRequest) bool {
		return r.Title == "Cell Biology" && r.QuestionCount == 5
	})).Return(&dto.QuizResponse{
		ID: testQuizID, Title: "Cell Biology", RoomID: testRoomID,
		QuestionCount: 5, StartAt: start, EndAt: start.Add(time.Hour),
		DurationMin: 10, Availability: string(domain.AvailabilityUpcoming),
	}, nil)

	req := httptest.NewRequest("POST", "/api/quizzes", jsonBody(t, reqBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+facultyToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.QuizResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, testQuizID, body.ID)
	quizSvc.AssertExpectations(t)
}

func TestCreateQuiz_ValidationFailure(t *testing.T) {
	quizSvc := new(MockQuizService)
	h := handler.NewQuizHandler(quizSvc, new(MockLeaderboardService))
	tokens := newTestTokens()
	facultyToken, err := tokens.GenerateToken("faculty-1", domain.RoleFaculty)
	require.NoError(t, err)

	app := newTestApp()
	app.Post("/api/quizzes", middleware.Protected(tokens), h.CreateQuiz)

	// missing title, text, and schedule
	req := httptest.NewRequest("POST", "/api/quizzes", jsonBody(t, dto.CreateQuizRequest{
		RoomID:        testRoomID,
		QuestionCount: 5,
	}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+facultyToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, string(domain.ErrInvalidInput), body.Code)
	assert.NotEmpty(t, body.Errors)
	quizSvc.AssertNotCalled(t, "CreateQuiz")
}

func TestCreateQuiz_RequiresAuth(t *testing.T) {
	h := handler.NewQuizHandler(new(MockQuizService), new(MockLeaderboardService))
	app := newTestApp()
	app.Post("/api/quizzes", middleware.Protected(newTestTokens()), h.CreateQuiz)

	req := httptest.NewRequest("POST", "/api/quizzes", jsonBody(t, dto.CreateQuizRequest{}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetQuiz_NotFound(t *testing.T) {
	quizSvc := new(MockQuizService)
	h := handler.NewQuizHandler(quizSvc, new(MockLeaderboardService))
	tokens := newTestTokens()
	studentToken, err := tokens.GenerateToken("student-1", domain.RoleStudent)
	require.NoError(t, err)

	app := newTestApp()
	app.Get("/api/quizzes/:id", middleware.Protected(tokens), validateID(), h.GetQuiz)

	quizSvc.On("GetQuiz", mock.Anything, testQuizID, "student-1").
		Return(nil, domain.NewQuizNotFoundError(testQuizID))

	req := httptest.NewRequest("GET", "/api/quizzes/"+testQuizID, nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body middleware.ErrorResponse
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, string(domain.ErrNotFound), body.Code)
}

func TestGetQuiz_RejectsMalformedID(t *testing.T) {
	quizSvc := new(MockQuizService)
	h := handler.NewQuizHandler(quizSvc, new(MockLeaderboardService))
	tokens := newTestTokens()
	studentToken, err := tokens.GenerateToken("student-1", domain.RoleStudent)
	require.NoError(t, err)

	app := newTestApp()
	app.Get("/api/quizzes/:id", middleware.Protected(tokens), validateID(), h.GetQuiz)

	req := httptest.NewRequest("GET", "/api/quizzes/not-a-ulid", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The middleware stops the request before the handler runs.
	quizSvc.AssertNotCalled(t, "GetQuiz")
}

func TestGetLeaderboard_Success(t *testing.T) {
	boardSvc := new(MockLeaderboardService)
	h := handler.NewQuizHandler(new(MockQuizService), boardSvc)
	tokens := newTestTokens()
	studentToken, err := tokens.GenerateToken("student-1", domain.RoleStudent)
	require.NoError(t, err)

	app := newTestApp()
	app.Get("/api/quizzes/:id/leaderboard", middleware.Protected(tokens), validateID(), h.GetLeaderboard)

	submittedAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	boardSvc.On("GetLeaderboard", mock.Anything, testQuizID).Return(&dto.LeaderboardResponse{
		QuizID: testQuizID,
		Entries: []dto.LeaderboardEntryResponse{
			{Rank: 1, StudentID: "s1", DisplayName: "Alice", Score: 90, SubmittedAt: submittedAt},
			{Rank: 2, StudentID: "s2", DisplayName: "Bob", Score: 75, SubmittedAt: submittedAt},
		},
	}, nil)

	req := httptest.NewRequest("GET", "/api/quizzes/"+testQuizID+"/leaderboard", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.LeaderboardResponse
	decodeBody(t, resp.Body, &body)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, 1, body.Entries[0].Rank)
	assert.Equal(t, "Alice", body.Entries[0].DisplayName)
}

func TestGetResult_GenerationFailedMapsTo502(t *testing.T) {
	quizSvc := new(MockQuizService)
	h := handler.NewQuizHandler(quizSvc, new(MockLeaderboardService))
	tokens := newTestTokens()
	facultyToken, err := tokens.GenerateToken("faculty-1", domain.RoleFaculty)
	require.NoError(t, err)

	app := newTestApp()
	app.Post("/api/quizzes", middleware.Protected(tokens), h.CreateQuiz)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	quizSvc.On("CreateQuiz", mock.Anything, "faculty-1", mock.Anything).
		Return(nil, domain.NewGenerationFailedError(assert.AnError))

	req := httptest.NewRequest("POST", "/api/quizzes", jsonBody(t, dto.CreateQuizRequest{
		RoomID:        testRoomID,
		DocumentID:    "01HZXW5VJ0QZK8Y3TQF9GQ0004",
		DocumentText:  "text",
		Title:         "T",
		QuestionCount: 3,
		StartAt:       start,
		EndAt:         start.Add(time.Hour),
		DurationMin:   10,
	}))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+facultyToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
