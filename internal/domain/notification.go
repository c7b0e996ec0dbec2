package domain

import "time"

// NotificationType classifies the event a notification reports.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification is a recipient-facing record of an engagement event.
// PostID is 0 for follow notifications. Rows are only ever mutated to flip
// IsRead.
type Notification struct {
	ID          int64
	RecipientID int64
	ActorID     int64
	Type        NotificationType
	PostID      int64
	IsRead      bool
	CreatedAt   time.Time
}

// NotificationPublisher delivers a committed notification to any live
// subscribers (e.g. open websocket streams). Publishing is best-effort and
// must never block or fail the triggering mutation.
type NotificationPublisher interface {
	Publish(n Notification)
}
