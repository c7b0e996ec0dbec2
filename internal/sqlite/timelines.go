package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fanline/internal/domain"
)

// InsertEntries bulk-inserts timeline entries as a single multi-row insert
// inside one transaction. Rows whose (user_id, post_id) pair already exists
// are skipped, so a crashed-and-retried fan-out never duplicates entries.
func (r *Repository) InsertEntries(ctx context.Context, entries []domain.TimelineEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO timelines (user_id, post_id, author_id, created_at) VALUES `)
	args := make([]any, 0, len(entries)*4)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, e.UserID, e.PostID, e.AuthorID, e.CreatedAt.UnixMilli())
	}
	sb.WriteString(` ON CONFLICT (user_id, post_id) DO NOTHING`)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert timeline entries: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TimelineFor retrieves a user's timeline entries joined with their posts,
// newest first, excluding soft-deleted and private posts.
func (r *Repository) TimelineFor(ctx context.Context, userID int64, limit int) ([]domain.TimelinePost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.user_id, t.post_id, t.author_id, t.created_at,
			p.id, p.author_id, p.content, p.visibility, COALESCE(p.reply_to_id, 0),
			p.is_deleted, p.created_at, p.comment_count, p.like_count
		FROM timelines t
		JOIN posts p ON p.id = t.post_id
		WHERE t.user_id = ? AND p.is_deleted = 0 AND p.visibility != 'private'
		ORDER BY t.created_at DESC, t.post_id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var out []domain.TimelinePost
	for rows.Next() {
		var (
			tp             domain.TimelinePost
			entryCreatedAt int64
			isDeleted      int
			postCreatedAt  int64
		)
		err := rows.Scan(
			&tp.Entry.UserID, &tp.Entry.PostID, &tp.Entry.AuthorID, &entryCreatedAt,
			&tp.Post.ID, &tp.Post.AuthorID, &tp.Post.Content, &tp.Post.Visibility,
			&tp.Post.ReplyToID, &isDeleted, &postCreatedAt,
			&tp.Post.CommentCount, &tp.Post.LikeCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		tp.Entry.CreatedAt = time.UnixMilli(entryCreatedAt).UTC()
		tp.Post.IsDeleted = isDeleted != 0
		tp.Post.CreatedAt = time.UnixMilli(postCreatedAt).UTC()
		out = append(out, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline: %w", err)
	}
	return out, nil
}
