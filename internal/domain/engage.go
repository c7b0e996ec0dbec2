package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fanline/internal/metrics"
)

// CreateComment adds a comment to a post, bumps the post's denormalized
// comment_count with an atomic relative update, and notifies the post's
// author.
func (s *Service) CreateComment(ctx context.Context, callerID, postID int64, content string) (*Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		PostID:    postID,
		AuthorID:  callerID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if err := s.posts.IncrementCommentCount(ctx, postID); err != nil {
		return nil, fmt.Errorf("increment comment count: %w", err)
	}

	s.notifier.Emit(ctx, post.AuthorID, callerID, NotificationComment, postID)
	return comment, nil
}

// CommentsForPost lists a post's comments, newest first.
func (s *Service) CommentsForPost(ctx context.Context, postID int64, limit int) ([]Comment, error) {
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.CommentsForPost(ctx, postID, limit)
}

// ReactToPost records the caller's reaction with get-or-create semantics: a
// repeated reaction from the same user is a no-op. Only first creation
// increments like_count and notifies the post's author, so concurrent
// duplicate attempts collapse to one row and one increment.
func (s *Service) ReactToPost(ctx context.Context, callerID, postID int64, reactionType string) error {
	if reactionType == "" {
		reactionType = ReactionLike
	}
	if reactionType != ReactionLike {
		return fmt.Errorf("%w: unknown reaction type %q", ErrInvalid, reactionType)
	}
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	created, err := s.reactions.CreateReaction(ctx, &Reaction{
		PostID:    postID,
		UserID:    callerID,
		Type:      reactionType,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create reaction: %w", err)
	}
	if !created {
		metrics.ReactionsDeduped.Inc()
		return nil
	}

	if err := s.posts.IncrementLikeCount(ctx, postID); err != nil {
		return fmt.Errorf("increment like count: %w", err)
	}
	s.notifier.Emit(ctx, post.AuthorID, callerID, NotificationLike, postID)
	return nil
}

// RemoveReaction deletes the caller's reaction if present. The decrement
// mirrors the increment path: it only runs when a row was actually removed,
// and it is an atomic relative update floored at zero.
func (s *Service) RemoveReaction(ctx context.Context, callerID, postID int64) error {
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return err
	}
	removed, err := s.reactions.DeleteReaction(ctx, postID, callerID)
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	if !removed {
		return nil
	}
	if err := s.posts.DecrementLikeCount(ctx, postID); err != nil {
		return fmt.Errorf("decrement like count: %w", err)
	}
	return nil
}

// FollowUser creates a follow edge from the caller to the target. Following
// yourself is rejected before any write; a duplicate follow is a no-op and
// does not re-notify.
func (s *Service) FollowUser(ctx context.Context, callerID, targetID int64) error {
	if callerID == targetID {
		return ErrSelfFollow
	}
	if _, err := s.users.GetUser(ctx, targetID); err != nil {
		return err
	}

	created, err := s.follows.CreateFollow(ctx, &Follow{
		FollowerID:  callerID,
		FollowingID: targetID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	if !created {
		return nil
	}
	s.notifier.Emit(ctx, targetID, callerID, NotificationFollow, 0)
	return nil
}

// UnfollowUser removes the caller's follow edge to the target if present.
// Timeline entries already fanned out are intentionally left in place.
func (s *Service) UnfollowUser(ctx context.Context, callerID, targetID int64) error {
	if _, err := s.follows.DeleteFollow(ctx, callerID, targetID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// Notifications lists the caller's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, callerID int64, limit int) ([]Notification, error) {
	return s.notifier.notifications.NotificationsFor(ctx, callerID, limit)
}

// UnreadNotificationCount returns how many of the caller's notifications are
// unread.
func (s *Service) UnreadNotificationCount(ctx context.Context, callerID int64) (int64, error) {
	return s.notifier.notifications.UnreadCount(ctx, callerID)
}

// MarkNotificationRead flips is_read on one of the caller's notifications.
func (s *Service) MarkNotificationRead(ctx context.Context, callerID, notificationID int64) error {
	return s.notifier.notifications.MarkRead(ctx, notificationID, callerID)
}
