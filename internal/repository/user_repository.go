package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"classquiz/internal/domain"
	"classquiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        m.Role,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateUser inserts a new user row.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	executor := GetExecutor(ctx, r.db)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `INSERT INTO users (ID, DISPLAY_NAME, EMAIL, ROLE, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6)`

	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.DisplayName,
		user.Email,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID. Returns nil when absent.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ID, DISPLAY_NAME, EMAIL, ROLE, CREATED_AT, UPDATED_AT, DELETED_AT
	          FROM users WHERE id = :1 AND deleted_at IS NULL`

	var m models.User
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id %s: %w", id, err)
	}
	return toDomainUser(&m), nil
}

// GetDisplayNames resolves display names for a set of user IDs. IDs with no
// matching user are simply absent from the result map.
func (r *sqlxUserRepository) GetDisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	executor := GetExecutor(ctx, r.db)

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf(":%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT ID, DISPLAY_NAME, EMAIL, ROLE, CREATED_AT, UPDATED_AT, DELETED_AT
	          FROM users WHERE id IN (%s) AND deleted_at IS NULL`, strings.Join(placeholders, ", "))

	var rows []models.User
	if err := executor.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to resolve display names: %w", err)
	}

	for _, m := range rows {
		names[m.ID] = m.DisplayName
	}
	return names, nil
}
