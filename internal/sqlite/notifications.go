package sqlite

import (
	"context"
	"fmt"
	"time"

	"fanline/internal/domain"
)

// CreateNotification inserts a notification and fills in its assigned ID.
func (r *Repository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	var postID any
	if n.PostID != 0 {
		postID = n.PostID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (recipient_id, actor_id, type, post_id, is_read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		n.RecipientID,
		n.ActorID,
		string(n.Type),
		postID,
		n.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("notification id: %w", err)
	}
	return nil
}

// NotificationsFor retrieves a recipient's notifications, newest first.
func (r *Repository) NotificationsFor(ctx context.Context, recipientID int64, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient_id, actor_id, type, COALESCE(post_id, 0), is_read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n         domain.Notification
			isRead    int
			createdAt int64
		)
		err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.PostID, &isRead, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.IsRead = isRead != 0
		n.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications for a recipient.
func (r *Repository) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`,
		recipientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flips is_read on the notification if it belongs to the
// recipient.
func (r *Repository) MarkRead(ctx context.Context, id, recipientID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?`,
		id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
