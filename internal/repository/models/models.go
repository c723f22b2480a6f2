package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a []string as a JSON document in a CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// IntSlice stores a []int as a JSON document in a CLOB column. Used for
// answer sheets, where -1 marks a question left unanswered, so an
// unanswered slot stays distinguishable from option A (index 0).
type IntSlice []int

// Value implements the driver.Valuer interface
func (s IntSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *IntSlice) Scan(value interface{}) error {
	if value == nil {
		*s = IntSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("IntSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = IntSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// User represents a platform member row.
type User struct {
	ID          string       `db:"ID"` // ULID
	DisplayName string       `db:"DISPLAY_NAME"`
	Email       string       `db:"EMAIL"`
	Role        string       `db:"ROLE"` // student | faculty
	CreatedAt   time.Time    `db:"CREATED_AT"`
	UpdatedAt   time.Time    `db:"UPDATED_AT"`
	DeletedAt   sql.NullTime `db:"DELETED_AT"`
}

// Room represents a faculty-scoped group row.
type Room struct {
	ID        string       `db:"ID"` // ULID
	Name      string       `db:"NAME"`
	FacultyID string       `db:"FACULTY_ID"`
	CreatedAt time.Time    `db:"CREATED_AT"`
	UpdatedAt time.Time    `db:"UPDATED_AT"`
	DeletedAt sql.NullTime `db:"DELETED_AT"`
}

// Document represents a study-document metadata row. The blob itself lives
// in external storage at STORAGE_PATH.
type Document struct {
	ID          string         `db:"ID"` // ULID
	RoomID      string         `db:"ROOM_ID"`
	OwnerID     string         `db:"OWNER_ID"`
	Title       string         `db:"TITLE"`
	StoragePath string         `db:"STORAGE_PATH"`
	QuizID      sql.NullString `db:"QUIZ_ID"` // set once a quiz is generated from it
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
	DeletedAt   sql.NullTime   `db:"DELETED_AT"`
}

// Quiz represents a scheduled quiz row.
type Quiz struct {
	ID            string         `db:"ID"` // ULID
	Title         string         `db:"TITLE"`
	RoomID        string         `db:"ROOM_ID"`
	DocumentID    sql.NullString `db:"DOCUMENT_ID"`
	CreatorID     string         `db:"CREATOR_ID"`
	QuestionCount int            `db:"QUESTION_COUNT"`
	StartAt       time.Time      `db:"START_AT"`
	EndAt         time.Time      `db:"END_AT"`
	DurationMin   int            `db:"DURATION_MIN"`
	CreatedAt     time.Time      `db:"CREATED_AT"`
	DeletedAt     sql.NullTime   `db:"DELETED_AT"`
}

// Question represents one generated multiple-choice question row.
type Question struct {
	ID           string         `db:"ID"` // ULID
	QuizID       string         `db:"QUIZ_ID"`
	Position     int            `db:"POSITION"`
	Text         string         `db:"TEXT"`
	Options      StringSlice    `db:"OPTIONS"` // 4 entries, ordered A-D
	CorrectIndex int            `db:"CORRECT_IDX"`
	Explanation  sql.NullString `db:"EXPLANATION"`
	CreatedAt    time.Time      `db:"CREATED_AT"`
}

// Submission represents one finalized attempt row. A unique index on
// (QUIZ_ID, STUDENT_ID) backs the create-once guard.
type Submission struct {
	ID          string    `db:"ID"` // ULID
	QuizID      string    `db:"QUIZ_ID"`
	StudentID   string    `db:"STUDENT_ID"`
	Answers     IntSlice  `db:"ANSWERS"`
	Score       int       `db:"SCORE"`
	Bucket      string    `db:"BUCKET"`
	SubmittedAt time.Time `db:"SUBMITTED_AT"`
	CreatedAt   time.Time `db:"CREATED_AT"`
}

// LeaderboardEntry represents one append-only leaderboard record. No
// uniqueness is enforced here; the aggregator de-duplicates on read.
type LeaderboardEntry struct {
	ID          string    `db:"ID"` // ULID
	QuizID      string    `db:"QUIZ_ID"`
	StudentID   string    `db:"STUDENT_ID"`
	DisplayName string    `db:"DISPLAY_NAME"`
	Score       int       `db:"SCORE"`
	SubmittedAt time.Time `db:"SUBMITTED_AT"`
	CreatedAt   time.Time `db:"CREATED_AT"`
}
