package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// CreateUser inserts a new user and fills in its assigned ID.
	CreateUser(ctx context.Context, user *User) error

	// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, id int64) (*User, error)
}

// PostRepository defines persistence operations for posts and their
// denormalized counters.
type PostRepository interface {
	// CreatePost inserts a new post and fills in its assigned ID.
	CreatePost(ctx context.Context, post *Post) error

	// GetPost retrieves a non-deleted post by ID. Returns ErrNotFound if the
	// post is absent or soft-deleted.
	GetPost(ctx context.Context, id int64) (*Post, error)

	// SoftDeletePost marks a post deleted. The row is kept.
	SoftDeletePost(ctx context.Context, id int64) error

	// RecentPosts retrieves non-deleted public posts, newest first.
	RecentPosts(ctx context.Context, limit int) ([]Post, error)

	// PostsByAuthors retrieves non-deleted, non-private posts authored by any
	// of the given users, newest first. An empty author set yields an empty
	// result.
	PostsByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]Post, error)

	// TrendingPosts retrieves non-deleted public posts created at or after
	// since, scored like_count*2 + comment_count*3, highest score first,
	// ties broken by newest creation time.
	TrendingPosts(ctx context.Context, since time.Time, limit int) ([]TrendingPost, error)

	// IncrementCommentCount atomically adds one to the post's comment_count.
	IncrementCommentCount(ctx context.Context, postID int64) error

	// IncrementLikeCount atomically adds one to the post's like_count.
	IncrementLikeCount(ctx context.Context, postID int64) error

	// DecrementLikeCount atomically subtracts one from the post's like_count,
	// never going below zero.
	DecrementLikeCount(ctx context.Context, postID int64) error
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	// CreateComment inserts a new comment and fills in its assigned ID.
	CreateComment(ctx context.Context, comment *Comment) error

	// CommentsForPost retrieves a post's comments, newest first.
	CommentsForPost(ctx context.Context, postID int64, limit int) ([]Comment, error)
}

// ReactionRepository defines persistence operations for reactions.
type ReactionRepository interface {
	// CreateReaction inserts a reaction unless one already exists for
	// (PostID, UserID). Returns true if a row was created.
	CreateReaction(ctx context.Context, reaction *Reaction) (bool, error)

	// DeleteReaction removes the (postID, userID) reaction if present.
	// Returns true if a row was removed.
	DeleteReaction(ctx context.Context, postID, userID int64) (bool, error)
}

// FollowRepository defines persistence operations for the social graph.
type FollowRepository interface {
	// CreateFollow inserts a follow edge unless the pair already exists.
	// Returns true if a row was created.
	CreateFollow(ctx context.Context, follow *Follow) (bool, error)

	// DeleteFollow removes the (followerID, followingID) edge if present.
	// Returns true if a row was removed.
	DeleteFollow(ctx context.Context, followerID, followingID int64) (bool, error)

	// FollowerIDs retrieves up to limit users following userID, oldest edges
	// first. limit <= 0 means no bound.
	FollowerIDs(ctx context.Context, userID int64, limit int) ([]int64, error)

	// FollowingIDs retrieves every user userID follows.
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
}

// TimelineRepository defines persistence operations for precomputed
// timelines.
type TimelineRepository interface {
	// InsertEntries bulk-inserts timeline entries in a single transaction.
	// Entries whose (UserID, PostID) pair already exists are skipped, making
	// retried fan-outs idempotent.
	InsertEntries(ctx context.Context, entries []TimelineEntry) error

	// TimelineFor retrieves a user's timeline entries joined with their
	// posts, newest first, excluding soft-deleted and private posts.
	TimelineFor(ctx context.Context, userID int64, limit int) ([]TimelinePost, error)
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	// CreateNotification inserts a notification and fills in its assigned ID.
	CreateNotification(ctx context.Context, n *Notification) error

	// NotificationsFor retrieves a recipient's notifications, newest first.
	NotificationsFor(ctx context.Context, recipientID int64, limit int) ([]Notification, error)

	// UnreadCount returns the number of unread notifications for a recipient.
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)

	// MarkRead flips is_read on the notification. Returns ErrNotFound if the
	// notification does not exist or belongs to a different recipient.
	MarkRead(ctx context.Context, id, recipientID int64) error
}
