package dto

import "time"

// CreateQuizRequest is the request body for creating a quiz from a document.
// @Description Request body for quiz creation; questions are generated from the document text
type CreateQuizRequest struct {
	RoomID        string    `json:"room_id" validate:"required"`
	DocumentID    string    `json:"document_id" validate:"required"`
	DocumentText  string    `json:"document_text" validate:"required"` // material the questions are generated from
	Title         string    `json:"title" validate:"required"`
	QuestionCount int       `json:"question_count" validate:"required,min=1"`
	StartAt       time.Time `json:"start_at" validate:"required"`
	EndAt         time.Time `json:"end_at" validate:"required"`
	DurationMin   int       `json:"duration_min" validate:"required,min=1"`
}

// QuizResponse represents a quiz in the API response.
// @Description Quiz information with its live availability state
type QuizResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	RoomID        string    `json:"room_id"`
	DocumentID    string    `json:"document_id,omitempty"`
	QuestionCount int       `json:"question_count"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	DurationMin   int       `json:"duration_min"`
	Availability  string    `json:"availability"` // "upcoming", "active" or "ended"
	Submitted     bool      `json:"submitted"`    // whether the requesting student already submitted
}

// QuizListResponse is the response for listing the quizzes of a room.
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
}

// QuestionView is one question as shown to a student during a session.
// The correct index and explanation are only present after the student
// has submitted.
type QuestionView struct {
	Position     int      `json:"position"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// SessionResponse is the live state of a quiz session.
// @Description Session state: current question, countdown and answer sheet
type SessionResponse struct {
	SessionID        string         `json:"session_id"`
	QuizID           string         `json:"quiz_id"`
	State            string         `json:"state"` // "NOT_STARTED", "IN_PROGRESS" or "SUBMITTED"
	Current          int            `json:"current"`
	RemainingSeconds int            `json:"remaining_seconds"`
	Answers          []int          `json:"answers"` // -1 for unanswered slots
	Questions        []QuestionView `json:"questions,omitempty"`
}

// SelectAnswerRequest is the request body for answering a question.
type SelectAnswerRequest struct {
	QuestionIndex int `json:"question_index"`
	OptionIndex   int `json:"option_index"`
}

// NavigateRequest is the request body for moving to another question.
type NavigateRequest struct {
	Index int `json:"index"`
}

// SubmissionResponse is the graded result of a finalized submission.
// @Description Graded submission with percent score and qualitative bucket
type SubmissionResponse struct {
	QuizID      string    `json:"quiz_id"`
	Score       int       `json:"score"` // 0-100
	Bucket      string    `json:"bucket"`
	SubmittedAt time.Time `json:"submitted_at"`
	Questions   []QuestionView `json:"questions,omitempty"` // with correct answers revealed
	Answers     []int          `json:"answers,omitempty"`
}

// LeaderboardEntryResponse is one ranked leaderboard row.
type LeaderboardEntryResponse struct {
	Rank        int       `json:"rank"`
	StudentID   string    `json:"student_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// LeaderboardResponse is the ranked leaderboard of one quiz.
// @Description Ranked leaderboard: score descending, earlier submission wins ties
type LeaderboardResponse struct {
	QuizID  string                     `json:"quiz_id"`
	Entries []LeaderboardEntryResponse `json:"entries"`
}

// ErrorResponse represents an error in the API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
