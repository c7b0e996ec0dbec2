package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fanline/internal/domain"
)

// CreateUser inserts a new user and fills in its assigned ID.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, display_name, bio, created_at)
		VALUES (?, ?, ?, ?)`,
		user.Username,
		user.DisplayName,
		user.Bio,
		user.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, bio, created_at
		FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.DisplayName, &u.Bio, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}
