package domain

import "context"

// TransactionManager runs a function inside one storage transaction.
// Repositories called with the returned context join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// QuizRepository defines the interface for quiz persistence
type QuizRepository interface {
	// CreateQuiz persists a quiz together with its generated question bank.
	CreateQuiz(ctx context.Context, quiz *Quiz, questions []Question) error

	// GetQuizByID retrieves a quiz by its ID; nil when absent.
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)

	// GetQuestionsByQuizID returns the quiz's question bank ordered by position.
	GetQuestionsByQuizID(ctx context.Context, quizID string) ([]Question, error)

	// ListQuizzesByRoom returns all quizzes of a room, newest first.
	ListQuizzesByRoom(ctx context.Context, roomID string) ([]*Quiz, error)
}

// SubmissionRepository defines the interface for submission persistence.
type SubmissionRepository interface {
	// CreateSubmission is the create-once guard: it inserts the submission
	// and fails with a DUPLICATE_SUBMISSION error when a row already exists
	// for the same (quiz, student) pair. It never overwrites.
	CreateSubmission(ctx context.Context, submission *Submission) error

	// GetSubmission retrieves a student's submission for a quiz; nil when none.
	GetSubmission(ctx context.Context, quizID, studentID string) (*Submission, error)

	// ListSubmissionsByStudent returns all of a student's submissions.
	ListSubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
}

// LeaderboardRepository is the append-only store feeding the aggregator.
// The store itself enforces no uniqueness; de-duplication happens on read.
type LeaderboardRepository interface {
	// RecordEntry appends one leaderboard record for a quiz.
	RecordEntry(ctx context.Context, quizID string, entry *LeaderboardEntry) error

	// ListEntries returns all recorded entries for a quiz, unranked.
	ListEntries(ctx context.Context, quizID string) ([]LeaderboardEntry, error)
}

// DocumentRepository defines the interface for document metadata persistence.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocumentByID(ctx context.Context, id string) (*Document, error)
	ListDocumentsByRoom(ctx context.Context, roomID string) ([]*Document, error)

	// LinkQuiz records the quiz generated from this document, locking the
	// document until that quiz's deadline.
	LinkQuiz(ctx context.Context, documentID, quizID string) error
}

// RoomRepository defines the interface for room persistence.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoomByID(ctx context.Context, id string) (*Room, error)
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetDisplayNames resolves display names for a set of user IDs.
	GetDisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}
