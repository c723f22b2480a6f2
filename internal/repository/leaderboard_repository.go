package repository

import (
	"context"
	"fmt"
	"time"

	"classquiz/internal/domain"
	"classquiz/internal/repository/models"
	"classquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxLeaderboardRepository implements domain.LeaderboardRepository using
// sqlx. The table is append-only: entries are only ever inserted, and the
// ranking pass de-duplicates per student on read.
type sqlxLeaderboardRepository struct {
	db *sqlx.DB
}

// NewSQLXLeaderboardRepository creates a new instance of sqlxLeaderboardRepository.
func NewSQLXLeaderboardRepository(db *sqlx.DB) domain.LeaderboardRepository {
	return &sqlxLeaderboardRepository{db: db}
}

// RecordEntry appends one leaderboard record for a quiz.
func (r *sqlxLeaderboardRepository) RecordEntry(ctx context.Context, quizID string, entry *domain.LeaderboardEntry) error {
	executor := GetExecutor(ctx, r.db)

	query := `INSERT INTO leaderboard_entries (ID, QUIZ_ID, STUDENT_ID, DISPLAY_NAME, SCORE, SUBMITTED_AT, CREATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7)`

	_, err := executor.ExecContext(ctx, query,
		util.NewULID(),
		quizID,
		entry.StudentID,
		entry.DisplayName,
		entry.Score,
		entry.SubmittedAt,
		time.Now(),
	)
	if err != nil {
		return domain.NewStorageUnavailableError(fmt.Errorf("failed to record leaderboard entry: %w", err))
	}
	return nil
}

// ListEntries returns all recorded entries for a quiz, unranked.
func (r *sqlxLeaderboardRepository) ListEntries(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, QUIZ_ID, STUDENT_ID, DISPLAY_NAME, SCORE, SUBMITTED_AT, CREATED_AT
	          FROM leaderboard_entries WHERE quiz_id = :1`

	var rows []models.LeaderboardEntry
	if err := executor.SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to list leaderboard entries for quiz %s: %w", quizID, err)
	}

	entries := make([]domain.LeaderboardEntry, len(rows))
	for i, m := range rows {
		entries[i] = domain.LeaderboardEntry{
			StudentID:   m.StudentID,
			DisplayName: m.DisplayName,
			Score:       m.Score,
			SubmittedAt: m.SubmittedAt,
		}
	}
	return entries, nil
}
