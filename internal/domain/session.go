package domain

import (
	"fmt"
	"time"
)

// SessionState enumerates quiz session states.
type SessionState string

const (
	SessionNotStarted SessionState = "NOT_STARTED"
	SessionInProgress SessionState = "IN_PROGRESS"
	SessionSubmitted  SessionState = "SUBMITTED"
)

// Session is the state machine governing one student's attempt at one quiz.
// It tracks the current position, recorded answers and the remaining
// countdown. It is not safe for concurrent use; callers serialize access.
//
// The countdown is driven by explicit Tick calls (one per second) rather
// than an internal timer, so the machine stays synchronous and testable
// without wall-clock waits.
type Session struct {
	id        string
	quiz      *Quiz
	questions []Question
	studentID string

	state     SessionState
	answers   []int
	current   int
	remaining int // seconds
	startedAt time.Time
	endedAt   time.Time

	now func() time.Time
}

// NewSession creates an InProgress session for a student who has passed the
// eligibility checks. The question bank is fixed and ordered; every answer
// slot starts unset; the countdown starts at the quiz duration.
func NewSession(id string, quiz *Quiz, questions []Question, studentID string) (*Session, error) {
	return NewSessionWithClock(id, quiz, questions, studentID, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, quiz *Quiz, questions []Question, studentID string, now func() time.Time) (*Session, error) {
	if quiz == nil {
		return nil, NewInvalidInputError("quiz is required")
	}
	if len(questions) == 0 {
		return nil, NewInvalidInputError("question bank is empty")
	}
	if len(questions) != quiz.QuestionCount {
		return nil, NewInvalidInputError(
			fmt.Sprintf("question bank size %d does not match quiz question count %d", len(questions), quiz.QuestionCount))
	}
	if studentID == "" {
		return nil, NewInvalidInputError("student ID is required")
	}

	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = UnansweredIndex
	}

	return &Session{
		id:        id,
		quiz:      quiz,
		questions: questions,
		studentID: studentID,
		state:     SessionInProgress,
		answers:   answers,
		remaining: quiz.DurationMin * 60,
		startedAt: now(),
		now:       now,
	}, nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) QuizID() string       { return s.quiz.ID }
func (s *Session) StudentID() string    { return s.studentID }
func (s *Session) State() SessionState  { return s.state }
func (s *Session) Current() int         { return s.current }
func (s *Session) RemainingSeconds() int { return s.remaining }
func (s *Session) StartedAt() time.Time { return s.startedAt }

// SubmittedAt returns the finalization time; zero while InProgress.
func (s *Session) SubmittedAt() time.Time { return s.endedAt }

// Questions returns the fixed, ordered question bank.
func (s *Session) Questions() []Question { return s.questions }

// Answers returns a snapshot of the recorded answer slots.
func (s *Session) Answers() []int {
	out := make([]int, len(s.answers))
	copy(out, s.answers)
	return out
}

// SelectAnswer records (or overwrites) the answer for a question. Legal any
// number of times while InProgress; rejected with no state change once the
// session has been submitted or when an index is out of range.
func (s *Session) SelectAnswer(questionIndex, optionIndex int) error {
	if s.state != SessionInProgress {
		return NewIneligibleToStartError("session is no longer in progress")
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return NewInvalidAnswerIndexError(
			fmt.Sprintf("question index %d out of range [0, %d)", questionIndex, len(s.questions)))
	}
	if optionIndex < 0 || optionIndex >= OptionCount {
		return NewInvalidAnswerIndexError(
			fmt.Sprintf("option index %d out of range [0, %d)", optionIndex, OptionCount))
	}
	s.answers[questionIndex] = optionIndex
	return nil
}

// Navigate changes the current position, clamped to the question range.
// It touches neither answers nor the countdown and returns the resulting
// position.
func (s *Session) Navigate(index int) (int, error) {
	if s.state != SessionInProgress {
		return s.current, NewIneligibleToStartError("session is no longer in progress")
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.questions) {
		index = len(s.questions) - 1
	}
	s.current = index
	return s.current, nil
}

// Tick advances the countdown by one second. When it reaches zero the
// session transitions to Submitted with whatever answers are recorded,
// identically to a manual submit; Tick reports true exactly once, on that
// expiring transition. Ticking a submitted session is a no-op, so a tick
// racing a manual submit is harmless.
func (s *Session) Tick() bool {
	if s.state != SessionInProgress {
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		return false
	}
	s.remaining = 0
	s.finalize()
	return true
}

// Submit finalizes the session immediately, cancelling the countdown.
// Submitted is terminal: a second Submit is rejected and no answer state
// changes afterwards.
func (s *Session) Submit() error {
	if s.state != SessionInProgress {
		return NewDuplicateSubmissionError(s.quiz.ID, s.studentID)
	}
	s.finalize()
	return nil
}

func (s *Session) finalize() {
	s.state = SessionSubmitted
	s.endedAt = s.now()
}
