package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"fanline/internal/domain"
)

// CreateFollow inserts a follow edge with insert-if-absent semantics on the
// (follower_id, following_id) key. Returns true if a row was created.
func (r *Repository) CreateFollow(ctx context.Context, follow *domain.Follow) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (follower_id, following_id) DO NOTHING`,
		follow.FollowerID,
		follow.FollowingID,
		follow.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("follow rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteFollow removes the (followerID, followingID) edge if present.
// Returns true if a row was removed.
func (r *Repository) DeleteFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("follow rows affected: %w", err)
	}
	return n > 0, nil
}

// FollowerIDs retrieves up to limit users following userID, oldest edges
// first so the fan-out cap boundary is stable across retries.
func (r *Repository) FollowerIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT follower_id
		FROM follows
		WHERE following_id = ?
		ORDER BY created_at ASC, follower_id ASC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query followers: %w", err)
	}
	return collectIDs(rows)
}

// FollowingIDs retrieves every user userID follows.
func (r *Repository) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT following_id FROM follows WHERE follower_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query following: %w", err)
	}
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
