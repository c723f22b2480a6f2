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

// sqlxRoomRepository implements domain.RoomRepository using sqlx.
type sqlxRoomRepository struct {
	db *sqlx.DB
}

// NewSQLXRoomRepository creates a new instance of sqlxRoomRepository.
func NewSQLXRoomRepository(db *sqlx.DB) domain.RoomRepository {
	return &sqlxRoomRepository{db: db}
}

// CreateRoom inserts a new room row.
func (r *sqlxRoomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	executor := GetExecutor(ctx, r.db)

	now := time.Now()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	query := `INSERT INTO rooms (ID, NAME, FACULTY_ID, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5)`

	_, err := executor.ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.FacultyID,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetRoomByID retrieves a room by its ID. Returns nil when absent.
func (r *sqlxRoomRepository) GetRoomByID(ctx context.Context, id string) (*domain.Room, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, NAME, FACULTY_ID, CREATED_AT, UPDATED_AT, DELETED_AT
	          FROM rooms WHERE id = :1 AND deleted_at IS NULL`

	var m models.Room
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room by id %s: %w", id, err)
	}
	return &domain.Room{
		ID:        m.ID,
		Name:      m.Name,
		FacultyID: m.FacultyID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
