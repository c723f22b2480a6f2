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

// sqlxDocumentRepository implements domain.DocumentRepository using sqlx.
type sqlxDocumentRepository struct {
	db *sqlx.DB
}

// NewSQLXDocumentRepository creates a new instance of sqlxDocumentRepository.
func NewSQLXDocumentRepository(db *sqlx.DB) domain.DocumentRepository {
	return &sqlxDocumentRepository{db: db}
}

func toDomainDocument(m *models.Document) *domain.Document {
	if m == nil {
		return nil
	}
	return &domain.Document{
		ID:          m.ID,
		RoomID:      m.RoomID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		StoragePath: m.StoragePath,
		QuizID:      util.NullStringToString(m.QuizID),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateDocument inserts a new document metadata row.
func (r *sqlxDocumentRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	executor := GetExecutor(ctx, r.db)

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	query := `INSERT INTO documents (ID, ROOM_ID, OWNER_ID, TITLE, STORAGE_PATH, QUIZ_ID, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`

	_, err := executor.ExecContext(ctx, query,
		doc.ID,
		doc.RoomID,
		doc.OwnerID,
		doc.Title,
		doc.StoragePath,
		util.StringToNullString(doc.QuizID),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetDocumentByID retrieves a document by its ID. Returns nil when absent.
func (r *sqlxDocumentRepository) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, ROOM_ID, OWNER_ID, TITLE, STORAGE_PATH, QUIZ_ID, CREATED_AT, UPDATED_AT, DELETED_AT
	          FROM documents WHERE id = :1 AND deleted_at IS NULL`

	var m models.Document
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document by id %s: %w", id, err)
	}
	return toDomainDocument(&m), nil
}

// ListDocumentsByRoom returns all documents of a room, newest first.
func (r *sqlxDocumentRepository) ListDocumentsByRoom(ctx context.Context, roomID string) ([]*domain.Document, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, ROOM_ID, OWNER_ID, TITLE, STORAGE_PATH, QUIZ_ID, CREATED_AT, UPDATED_AT, DELETED_AT
	          FROM documents WHERE room_id = :1 AND deleted_at IS NULL ORDER BY created_at DESC`

	var rows []models.Document
	if err := executor.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to list documents for room %s: %w", roomID, err)
	}

	docs := make([]*domain.Document, len(rows))
	for i := range rows {
		docs[i] = toDomainDocument(&rows[i])
	}
	return docs, nil
}

// LinkQuiz records the quiz generated from this document. The link is what
// locks the document until the quiz deadline passes.
func (r *sqlxDocumentRepository) LinkQuiz(ctx context.Context, documentID, quizID string) error {
	executor := GetExecutor(ctx, r.db)

	query := `UPDATE documents SET quiz_id = :1, updated_at = :2 WHERE id = :3 AND deleted_at IS NULL`

	result, err := executor.ExecContext(ctx, query, quizID, time.Now(), documentID)
	if err != nil {
		return fmt.Errorf("failed to link quiz %s to document %s: %w", quizID, documentID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.NewError(domain.ErrNotFound, fmt.Sprintf("document %s not found", documentID), nil)
	}
	return nil
}
