package sqlite

import (
	"context"
	"fmt"
	"time"

	"fanline/internal/domain"
)

// CreateComment inserts a new comment and fills in its assigned ID.
func (r *Repository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (post_id, author_id, content, created_at)
		VALUES (?, ?, ?, ?)`,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("comment id: %w", err)
	}
	return nil
}

// CommentsForPost retrieves a post's comments, newest first.
func (r *Repository) CommentsForPost(ctx context.Context, postID int64, limit int) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, post_id, author_id, content, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var (
			c         domain.Comment
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = time.UnixMilli(createdAt).UTC()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

// CreateReaction inserts a reaction with insert-if-absent semantics on the
// (post_id, user_id) key. Returns true if a row was created, so concurrent
// duplicate attempts collapse to one row and one counter increment.
func (r *Repository) CreateReaction(ctx context.Context, reaction *domain.Reaction) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reactions (post_id, user_id, type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (post_id, user_id) DO NOTHING`,
		reaction.PostID,
		reaction.UserID,
		reaction.Type,
		reaction.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("insert reaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reaction rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteReaction removes the (postID, userID) reaction if present. Returns
// true if a row was removed.
func (r *Repository) DeleteReaction(ctx context.Context, postID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete reaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reaction rows affected: %w", err)
	}
	return n > 0, nil
}
