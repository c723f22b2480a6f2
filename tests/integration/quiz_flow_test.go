package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"classquiz/internal/dto"
	"classquiz/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, displayName, role string) (dto.UserProfileResponse, string) {
	t.Helper()
	// unique email per run so re-running the suite does not collide
	email := fmt.Sprintf("%s-%s@example.edu", role, util.NewULID())
	resp := doJSON(t, "POST", "/api/users", "", dto.CreateUserRequest{
		DisplayName: displayName,
		Email:       email,
		Role:        role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body dto.RegisterResponse
	decode(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.User, body.AccessToken
}

func TestQuizLifecycle(t *testing.T) {
	requireIntegration(t)

	_, facultyToken := registerUser(t, "Prof. Rivera", "faculty")
	student, studentToken := registerUser(t, "Alice Chen", "student")

	// Faculty sets up a room with one document.
	resp := doJSON(t, "POST", "/api/rooms", facultyToken, dto.CreateRoomRequest{Name: "Biology 101"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var room dto.RoomResponse
	decode(t, resp, &room)

	resp = doJSON(t, "POST", "/api/documents", facultyToken, dto.CreateDocumentRequest{
		RoomID:      room.ID,
		Title:       "Week 1: Cell Structure",
		StoragePath: "s3://classquiz-docs/bio101/week1.pdf",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var doc dto.DocumentResponse
	decode(t, resp, &doc)

	// Students may not create rooms.
	resp = doJSON(t, "POST", "/api/rooms", studentToken, dto.CreateRoomRequest{Name: "Rogue Room"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Quiz window is already open so the student can start right away.
	now := time.Now()
	resp = doJSON(t, "POST", "/api/quizzes", facultyToken, dto.CreateQuizRequest{
		RoomID:        room.ID,
		DocumentID:    doc.ID,
		DocumentText:  "The cell is the basic structural unit of all organisms.",
		Title:         "Cell Structure Check",
		QuestionCount: 3,
		StartAt:       now.Add(-time.Minute),
		EndAt:         now.Add(time.Hour),
		DurationMin:   10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var quiz dto.QuizResponse
	decode(t, resp, &quiz)
	assert.Equal(t, "active", quiz.Availability)

	// The linked document is now locked for the student, but not its owner.
	resp = doJSON(t, "GET", "/api/documents/"+doc.ID, studentToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "GET", "/api/documents/"+doc.ID, facultyToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Student sees the quiz in the room listing.
	resp = doJSON(t, "GET", "/api/rooms/"+room.ID+"/quizzes", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var quizzes dto.QuizListResponse
	decode(t, resp, &quizzes)
	require.Len(t, quizzes.Quizzes, 1)
	assert.False(t, quizzes.Quizzes[0].Submitted)

	// Start a session; questions come without correct answers.
	resp = doJSON(t, "POST", "/api/quizzes/"+quiz.ID+"/session", studentToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session dto.SessionResponse
	decode(t, resp, &session)
	require.Len(t, session.Questions, 3)
	assert.Equal(t, []int{-1, -1, -1}, session.Answers)
	for _, q := range session.Questions {
		assert.Nil(t, q.CorrectIndex)
	}

	// Only one running session per (student, quiz) pair.
	resp = doJSON(t, "POST", "/api/quizzes/"+quiz.ID+"/session", studentToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Answer the first question correctly (stub generator: B is correct),
	// the second incorrectly, skip the third.
	resp = doJSON(t, "POST", "/api/sessions/"+session.SessionID+"/answer", studentToken,
		dto.SelectAnswerRequest{QuestionIndex: 0, OptionIndex: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "POST", "/api/sessions/"+session.SessionID+"/answer", studentToken,
		dto.SelectAnswerRequest{QuestionIndex: 1, OptionIndex: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "POST", "/api/sessions/"+session.SessionID+"/navigate", studentToken,
		dto.NavigateRequest{Index: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved dto.SessionResponse
	decode(t, resp, &moved)
	assert.Equal(t, 2, moved.Current)

	// Submit: 1 of 3 correct rounds to 33, Needs Improvement.
	resp = doJSON(t, "POST", "/api/sessions/"+session.SessionID+"/submit", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result dto.SubmissionResponse
	decode(t, resp, &result)
	assert.Equal(t, 33, result.Score)
	assert.Equal(t, "Needs Improvement", result.Bucket)

	// A second attempt is rejected: the submission already exists.
	resp = doJSON(t, "POST", "/api/quizzes/"+quiz.ID+"/session", studentToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Leaderboard has the student at rank 1.
	resp = doJSON(t, "GET", "/api/quizzes/"+quiz.ID+"/leaderboard", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var board dto.LeaderboardResponse
	decode(t, resp, &board)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, student.ID, board.Entries[0].StudentID)
	assert.Equal(t, 33, board.Entries[0].Score)

	// Result view reveals the correct answers.
	resp = doJSON(t, "GET", "/api/quizzes/"+quiz.ID+"/result", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var graded dto.SubmissionResponse
	decode(t, resp, &graded)
	require.Len(t, graded.Questions, 3)
	for _, q := range graded.Questions {
		require.NotNil(t, q.CorrectIndex)
		assert.Equal(t, 1, *q.CorrectIndex)
	}

	// The quiz listing now shows the attempt as submitted.
	resp = doJSON(t, "GET", "/api/rooms/"+room.ID+"/quizzes", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var after dto.QuizListResponse
	decode(t, resp, &after)
	require.Len(t, after.Quizzes, 1)
	assert.True(t, after.Quizzes[0].Submitted)

	// Dashboard reflects the single attempt.
	resp = doJSON(t, "GET", "/api/users/me/dashboard", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dashboard dto.DashboardResponse
	decode(t, resp, &dashboard)
	assert.Equal(t, 1, dashboard.TotalAttempts)
	assert.Equal(t, 33, dashboard.AverageScore)
}

func TestSessionStartOutsideWindow(t *testing.T) {
	requireIntegration(t)

	_, facultyToken := registerUser(t, "Prof. Stone", "faculty")
	_, studentToken := registerUser(t, "Bob Park", "student")

	resp := doJSON(t, "POST", "/api/rooms", facultyToken, dto.CreateRoomRequest{Name: "Chemistry 201"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var room dto.RoomResponse
	decode(t, resp, &room)

	resp = doJSON(t, "POST", "/api/documents", facultyToken, dto.CreateDocumentRequest{
		RoomID:      room.ID,
		Title:       "Stoichiometry Notes",
		StoragePath: "s3://classquiz-docs/chem201/stoichiometry.pdf",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var doc dto.DocumentResponse
	decode(t, resp, &doc)

	now := time.Now()
	resp = doJSON(t, "POST", "/api/quizzes", facultyToken, dto.CreateQuizRequest{
		RoomID:        room.ID,
		DocumentID:    doc.ID,
		DocumentText:  "Stoichiometry relates reactant and product quantities.",
		Title:         "Stoichiometry Quiz",
		QuestionCount: 2,
		StartAt:       now.Add(time.Hour),
		EndAt:         now.Add(2 * time.Hour),
		DurationMin:   10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var quiz dto.QuizResponse
	decode(t, resp, &quiz)
	assert.Equal(t, "upcoming", quiz.Availability)

	resp = doJSON(t, "POST", "/api/quizzes/"+quiz.ID+"/session", studentToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}
