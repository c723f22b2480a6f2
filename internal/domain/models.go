package domain

import (
	"fmt"
	"time"
)

// User roles within a room.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// OptionCount is the fixed number of options per question (labeled A-D).
const OptionCount = 4

// UnansweredIndex marks a question the student has not answered.
// It can never match a correct option index (0..3), so an unanswered
// question always scores as incorrect.
const UnansweredIndex = -1

// User represents a platform member.
type User struct {
	ID          string
	DisplayName string
	Email       string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room is a faculty-scoped group of students sharing quizzes and documents.
type Room struct {
	ID        string
	Name      string
	FacultyID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates a new Room instance
func NewRoom(id, name, facultyID string) *Room {
	now := time.Now()
	return &Room{
		ID:        id,
		Name:      name,
		FacultyID: facultyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the room
func (r *Room) Validate() error {
	if r.Name == "" {
		return NewInvalidInputError("room name is required")
	}
	if r.FacultyID == "" {
		return NewInvalidInputError("faculty ID is required")
	}
	return nil
}

// Question is one multiple-choice question. Immutable once generated;
// owned by a quiz, referenced by position within it.
type Question struct {
	ID           string
	QuizID       string
	Position     int
	Text         string
	Options      []string // exactly OptionCount entries, ordered A-D
	CorrectIndex int      // 0..OptionCount-1
	Explanation  string
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewInvalidInputError("question text is required")
	}
	if len(q.Options) != OptionCount {
		return NewInvalidInputError(fmt.Sprintf("question must have exactly %d options, got %d", OptionCount, len(q.Options)))
	}
	for i, opt := range q.Options {
		if opt == "" {
			return NewInvalidInputError(fmt.Sprintf("option %c is empty", 'A'+i))
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return NewInvalidInputError(fmt.Sprintf("correct index %d out of range [0, %d)", q.CorrectIndex, OptionCount))
	}
	return nil
}

// Quiz represents a scheduled quiz in a room. Immutable after creation.
type Quiz struct {
	ID            string
	Title         string
	RoomID        string
	DocumentID    string
	CreatorID     string
	QuestionCount int
	StartAt       time.Time
	EndAt         time.Time
	DurationMin   int
	CreatedAt     time.Time
}

// Validate validates the quiz scheduling invariants.
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return NewInvalidInputError("quiz title is required")
	}
	if q.RoomID == "" {
		return NewInvalidInputError("room ID is required")
	}
	if !q.StartAt.Before(q.EndAt) {
		return NewInvalidInputError("quiz start must be before its end")
	}
	if q.DurationMin <= 0 {
		return NewInvalidInputError("quiz duration must be positive")
	}
	if q.QuestionCount <= 0 {
		return NewInvalidInputError("quiz must have at least one question")
	}
	return nil
}

// AvailabilityAt reports the quiz lifecycle state at the given instant.
// Both the listing view and the session-creation guard must use this,
// never a cached value.
func (q *Quiz) AvailabilityAt(now time.Time) Availability {
	return Gate(now, q.StartAt, q.EndAt)
}

// Submission is one student's finalized attempt at one quiz.
// At most one finalized submission exists per (student, quiz) pair.
type Submission struct {
	ID          string
	QuizID      string
	StudentID   string
	Answers     []int // len == quiz question count; UnansweredIndex for skipped slots
	Score       int   // 0-100
	Bucket      Bucket
	SubmittedAt time.Time
}

// Validate validates the submission against its quiz.
func (s *Submission) Validate(questionCount int) error {
	if s.QuizID == "" {
		return NewInvalidInputError("quiz ID is required")
	}
	if s.StudentID == "" {
		return NewInvalidInputError("student ID is required")
	}
	if len(s.Answers) != questionCount {
		return NewInvalidInputError(fmt.Sprintf("answer count %d does not match question count %d", len(s.Answers), questionCount))
	}
	if s.Score < 0 || s.Score > 100 {
		return NewInvalidInputError(fmt.Sprintf("score %d out of range [0, 100]", s.Score))
	}
	return nil
}

// Document is study material uploaded by faculty. The blob lives in
// external storage; only its metadata is tracked here.
type Document struct {
	ID          string
	RoomID      string
	OwnerID     string
	Title       string
	StoragePath string
	QuizID      string // optional; empty when no quiz was generated from it
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the document metadata
func (d *Document) Validate() error {
	if d.Title == "" {
		return NewInvalidInputError("document title is required")
	}
	if d.RoomID == "" {
		return NewInvalidInputError("room ID is required")
	}
	if d.StoragePath == "" {
		return NewInvalidInputError("storage path is required")
	}
	return nil
}

// UnlockedAt reports whether the document may be read at the given instant.
// A document linked to a quiz stays locked until the quiz deadline has
// passed; an unlinked document is always unlocked. quizEnd is ignored when
// the document has no quiz link.
func (d *Document) UnlockedAt(now time.Time, quizEnd time.Time) bool {
	if d.QuizID == "" {
		return true
	}
	return now.After(quizEnd)
}
