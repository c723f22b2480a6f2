package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"classquiz/internal/domain"
	"classquiz/internal/repository/models"
	"classquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:            m.ID,
		Title:         m.Title,
		RoomID:        m.RoomID,
		DocumentID:    util.NullStringToString(m.DocumentID),
		CreatorID:     m.CreatorID,
		QuestionCount: m.QuestionCount,
		StartAt:       m.StartAt,
		EndAt:         m.EndAt,
		DurationMin:   m.DurationMin,
		CreatedAt:     m.CreatedAt,
	}
}

func fromDomainQuiz(q *domain.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	return &models.Quiz{
		ID:            q.ID,
		Title:         q.Title,
		RoomID:        q.RoomID,
		DocumentID:    util.StringToNullString(q.DocumentID),
		CreatorID:     q.CreatorID,
		QuestionCount: q.QuestionCount,
		StartAt:       q.StartAt,
		EndAt:         q.EndAt,
		DurationMin:   q.DurationMin,
		CreatedAt:     q.CreatedAt,
	}
}

func toDomainQuestion(m *models.Question) domain.Question {
	return domain.Question{
		ID:           m.ID,
		QuizID:       m.QuizID,
		Position:     m.Position,
		Text:         m.Text,
		Options:      m.Options,
		CorrectIndex: m.CorrectIndex,
		Explanation:  util.NullStringToString(m.Explanation),
	}
}

// CreateQuiz persists a quiz together with its question bank. Callers run it
// inside TransactionManager.WithTransaction so the quiz and its questions
// land atomically.
func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz, questions []domain.Question) error {
	executor := GetExecutor(ctx, r.db)

	m := fromDomainQuiz(quiz)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	quizQuery := `INSERT INTO quizzes (ID, TITLE, ROOM_ID, DOCUMENT_ID, CREATOR_ID, QUESTION_COUNT, START_AT, END_AT, DURATION_MIN, CREATED_AT)
	              VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10)`

	_, err := executor.ExecContext(ctx, quizQuery,
		m.ID,
		m.Title,
		m.RoomID,
		m.DocumentID,
		m.CreatorID,
		m.QuestionCount,
		m.StartAt,
		m.EndAt,
		m.DurationMin,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	questionQuery := `INSERT INTO questions (ID, QUIZ_ID, POSITION, TEXT, OPTIONS, CORRECT_IDX, EXPLANATION, CREATED_AT)
	                  VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`

	for _, q := range questions {
		// Serialize options manually for Oracle compatibility.
		optionsVal, err := models.StringSlice(q.Options).Value()
		if err != nil {
			return fmt.Errorf("failed to serialize question options: %w", err)
		}
		optionsStr, _ := optionsVal.(string)

		_, err = executor.ExecContext(ctx, questionQuery,
			q.ID,
			quiz.ID,
			q.Position,
			q.Text,
			optionsStr,
			q.CorrectIndex,
			util.StringToNullString(q.Explanation),
			m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create question at position %d: %w", q.Position, err)
		}
	}

	return nil
}

// GetQuizByID retrieves a quiz by its ID. Returns nil when no quiz exists.
func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, TITLE, ROOM_ID, DOCUMENT_ID, CREATOR_ID, QUESTION_COUNT, START_AT, END_AT, DURATION_MIN, CREATED_AT, DELETED_AT
	          FROM quizzes WHERE id = :1 AND deleted_at IS NULL`

	var m models.Quiz
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id %s: %w", id, err)
	}
	return toDomainQuiz(&m), nil
}

// GetQuestionsByQuizID returns the quiz's question bank ordered by position.
func (r *sqlxQuizRepository) GetQuestionsByQuizID(ctx context.Context, quizID string) ([]domain.Question, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, QUIZ_ID, POSITION, TEXT, OPTIONS, CORRECT_IDX, EXPLANATION, CREATED_AT
	          FROM questions WHERE quiz_id = :1 ORDER BY position ASC`

	var rows []models.Question
	if err := executor.SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", quizID, err)
	}

	questions := make([]domain.Question, len(rows))
	for i := range rows {
		questions[i] = toDomainQuestion(&rows[i])
	}
	return questions, nil
}

// ListQuizzesByRoom returns all quizzes of a room, newest first.
func (r *sqlxQuizRepository) ListQuizzesByRoom(ctx context.Context, roomID string) ([]*domain.Quiz, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, TITLE, ROOM_ID, DOCUMENT_ID, CREATOR_ID, QUESTION_COUNT, START_AT, END_AT, DURATION_MIN, CREATED_AT, DELETED_AT
	          FROM quizzes WHERE room_id = :1 AND deleted_at IS NULL ORDER BY created_at DESC`

	var rows []models.Quiz
	if err := executor.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to list quizzes for room %s: %w", roomID, err)
	}

	quizzes := make([]*domain.Quiz, len(rows))
	for i := range rows {
		quizzes[i] = toDomainQuiz(&rows[i])
	}
	return quizzes, nil
}
