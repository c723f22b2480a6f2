package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"classquiz/internal/domain"
	"classquiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxSubmissionRepository implements domain.SubmissionRepository using sqlx.
type sqlxSubmissionRepository struct {
	db *sqlx.DB
}

// NewSQLXSubmissionRepository creates a new instance of sqlxSubmissionRepository.
func NewSQLXSubmissionRepository(db *sqlx.DB) domain.SubmissionRepository {
	return &sqlxSubmissionRepository{db: db}
}

func toDomainSubmission(m *models.Submission) *domain.Submission {
	if m == nil {
		return nil
	}
	return &domain.Submission{
		ID:          m.ID,
		QuizID:      m.QuizID,
		StudentID:   m.StudentID,
		Answers:     m.Answers,
		Score:       m.Score,
		Bucket:      domain.Bucket(m.Bucket),
		SubmittedAt: m.SubmittedAt,
	}
}

// CreateSubmission inserts a submission row. The unique index on
// (QUIZ_ID, STUDENT_ID) makes this the create-once guard: a second insert for
// the same pair fails with a DUPLICATE_SUBMISSION domain error and the stored
// row is never touched. Any other storage failure maps to
// STORAGE_UNAVAILABLE so callers know the attempt may be retried.
func (r *sqlxSubmissionRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	executor := GetExecutor(ctx, r.db)

	answersVal, err := models.IntSlice(submission.Answers).Value()
	if err != nil {
		return fmt.Errorf("failed to serialize answers: %w", err)
	}
	answersStr, _ := answersVal.(string)

	createdAt := time.Now()

	query := `INSERT INTO submissions (ID, QUIZ_ID, STUDENT_ID, ANSWERS, SCORE, BUCKET, SUBMITTED_AT, CREATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`

	_, err = executor.ExecContext(ctx, query,
		submission.ID,
		submission.QuizID,
		submission.StudentID,
		answersStr,
		submission.Score,
		string(submission.Bucket),
		submission.SubmittedAt,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateSubmissionError(submission.QuizID, submission.StudentID)
		}
		return domain.NewStorageUnavailableError(fmt.Errorf("failed to create submission: %w", err))
	}
	return nil
}

// GetSubmission retrieves a student's submission for a quiz. Returns nil when
// the student has not submitted.
func (r *sqlxSubmissionRepository) GetSubmission(ctx context.Context, quizID, studentID string) (*domain.Submission, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, QUIZ_ID, STUDENT_ID, ANSWERS, SCORE, BUCKET, SUBMITTED_AT, CREATED_AT
	          FROM submissions WHERE quiz_id = :1 AND student_id = :2`

	var m models.Submission
	if err := executor.GetContext(ctx, &m, query, quizID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission for quiz %s student %s: %w", quizID, studentID, err)
	}
	return toDomainSubmission(&m), nil
}

// ListSubmissionsByStudent returns all of a student's submissions, most
// recent first.
func (r *sqlxSubmissionRepository) ListSubmissionsByStudent(ctx context.Context, studentID string) ([]domain.Submission, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, QUIZ_ID, STUDENT_ID, ANSWERS, SCORE, BUCKET, SUBMITTED_AT, CREATED_AT
	          FROM submissions WHERE student_id = :1 ORDER BY submitted_at DESC`

	var rows []models.Submission
	if err := executor.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list submissions for student %s: %w", studentID, err)
	}

	submissions := make([]domain.Submission, len(rows))
	for i := range rows {
		submissions[i] = *toDomainSubmission(&rows[i])
	}
	return submissions, nil
}
