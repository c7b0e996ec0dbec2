package domain

import (
	"context"
	"log/slog"
	"time"

	"fanline/internal/metrics"
)

// Notifier records recipient-facing notifications for engagement events.
//
// The notification write happens after the triggering mutation has
// committed and is best-effort: a failure is logged but never propagated,
// so a broken notification path cannot block a comment, reaction, or
// follow.
type Notifier struct {
	notifications NotificationRepository
	publisher     NotificationPublisher
	logger        *slog.Logger
}

// NewNotifier creates a Notifier. publisher may be nil when no live stream
// is wired.
func NewNotifier(notifications NotificationRepository, publisher NotificationPublisher, logger *slog.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Emit creates a notification for the recipient unless the actor is the
// recipient. postID is 0 for follow notifications.
func (n *Notifier) Emit(ctx context.Context, recipientID, actorID int64, typ NotificationType, postID int64) {
	if recipientID == actorID {
		return
	}
	notif := &Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        typ,
		PostID:      postID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := n.notifications.CreateNotification(ctx, notif); err != nil {
		n.logger.Error("create notification failed",
			"recipient_id", recipientID,
			"actor_id", actorID,
			"type", typ,
			"error", err,
		)
		return
	}
	metrics.NotificationsEmitted.WithLabelValues(string(typ)).Inc()
	if n.publisher != nil {
		n.publisher.Publish(*notif)
	}
}
