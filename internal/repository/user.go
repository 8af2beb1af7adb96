package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/pkg/e"
)

type UserRepository struct {
	db DB
}

// Create создает пользователя в бд
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (score)
		VALUES ($1) RETURNING id, created_at;
	`
	if err := r.db.QueryRow(ctx, query, user.Score).Scan(&user.ID, &user.CreatedAt); err != nil {
		return e.WrapError(ctx, "create user", err)
	}
	return nil
}

// GetByID возвращает пользователя по его UUID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.get(ctx, `SELECT id, score, created_at FROM users WHERE id = $1;`, id)
}

// GetForUpdate возвращает пользователя и блокирует строку до конца транзакции
func (r *UserRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.get(ctx, `SELECT id, score, created_at FROM users WHERE id = $1 FOR UPDATE;`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Score, &user.CreatedAt)
	if err != nil {
		return nil, e.WrapError(ctx, fmt.Sprintf("get user %s", id), err)
	}
	return user, nil
}

// UpdateScore сохраняет новый счёт пользователя
func (r *UserRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	query := `
		UPDATE users SET score = $1
		WHERE id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, score, id)
	if err != nil {
		return e.WrapError(ctx, "update user score", err)
	}

	// RowsAffected() == 0 значит пользователя с таким id не существует
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user with id %s not found for update: %w", id, e.ErrNotFound)
	}
	return nil
}
