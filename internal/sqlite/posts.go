package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fanline/internal/domain"
)

const postColumns = `id, author_id, content, visibility, COALESCE(reply_to_id, 0),
	is_deleted, created_at, comment_count, like_count`

func scanPost(row interface{ Scan(...any) error }) (domain.Post, error) {
	var (
		p         domain.Post
		isDeleted int
		createdAt int64
	)
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Content,
		&p.Visibility,
		&p.ReplyToID,
		&isDeleted,
		&createdAt,
		&p.CommentCount,
		&p.LikeCount,
	)
	if err != nil {
		return domain.Post{}, err
	}
	p.IsDeleted = isDeleted != 0
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return p, nil
}

// CreatePost inserts a new post and fills in its assigned ID.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	var replyTo any
	if post.ReplyToID != 0 {
		replyTo = post.ReplyToID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (author_id, content, visibility, reply_to_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		post.AuthorID,
		post.Content,
		string(post.Visibility),
		replyTo,
		post.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	return nil
}

// GetPost retrieves a non-deleted post by ID.
func (r *Repository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts WHERE id = ? AND is_deleted = 0`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query post: %w", err)
	}
	return &p, nil
}

// SoftDeletePost marks a post deleted without removing the row.
func (r *Repository) SoftDeletePost(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET is_deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("soft delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("post %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// RecentPosts retrieves non-deleted public posts, newest first.
func (r *Repository) RecentPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE is_deleted = 0 AND visibility = 'public'
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	return collectPosts(rows)
}

// PostsByAuthors retrieves non-deleted, non-private posts by the given
// authors, newest first.
func (r *Repository) PostsByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return []domain.Post{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(authorIDs)), ",")
	args := make([]any, 0, len(authorIDs)+1)
	for _, id := range authorIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE author_id IN (`+placeholders+`) AND is_deleted = 0 AND visibility != 'private'
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts by authors: %w", err)
	}
	return collectPosts(rows)
}

// TrendingPosts retrieves public posts created at or after since, scored
// like_count*2 + comment_count*3, highest score first, newest first on ties.
func (r *Repository) TrendingPosts(ctx context.Context, since time.Time, limit int) ([]domain.TrendingPost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`, (like_count * 2 + comment_count * 3) AS score
		FROM posts
		WHERE is_deleted = 0 AND visibility = 'public' AND created_at >= ?
		ORDER BY score DESC, created_at DESC, id DESC
		LIMIT ?`, since.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("query trending posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.TrendingPost
	for rows.Next() {
		var (
			p         domain.Post
			isDeleted int
			createdAt int64
			score     int64
		)
		err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Content, &p.Visibility, &p.ReplyToID,
			&isDeleted, &createdAt, &p.CommentCount, &p.LikeCount, &score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trending post: %w", err)
		}
		p.IsDeleted = isDeleted != 0
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		posts = append(posts, domain.TrendingPost{Post: p, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending posts: %w", err)
	}
	return posts, nil
}

// IncrementCommentCount atomically adds one to comment_count. The relative
// update happens in the store so concurrent commenters never lose an
// increment.
func (r *Repository) IncrementCommentCount(ctx context.Context, postID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET comment_count = comment_count + 1 WHERE id = ?`, postID)
	return err
}

// IncrementLikeCount atomically adds one to like_count.
func (r *Repository) IncrementLikeCount(ctx context.Context, postID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET like_count = like_count + 1 WHERE id = ?`, postID)
	return err
}

// DecrementLikeCount atomically subtracts one from like_count, floored at
// zero.
func (r *Repository) DecrementLikeCount(ctx context.Context, postID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET like_count = MAX(like_count - 1, 0) WHERE id = ?`, postID)
	return err
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}
