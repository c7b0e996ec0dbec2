package domain

import "time"

// Visibility controls who may see a post.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Valid reports whether v is one of the known visibility levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

// Post is a user-authored post with denormalized engagement counters.
// CommentCount and LikeCount are maintained by atomic relative updates in
// the store and mirror the comment and reaction row counts.
type Post struct {
	ID         int64
	AuthorID   int64
	Content    string
	Visibility Visibility

	// ReplyToID references the parent post for replies, 0 for top-level posts.
	ReplyToID int64

	// IsDeleted marks a soft-deleted post. Deleted posts never appear in
	// feeds but their rows are kept.
	IsDeleted bool

	CreatedAt    time.Time
	CommentCount int64
	LikeCount    int64
}

// Comment is a comment on a post.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Content   string
	CreatedAt time.Time
}

// ReactionLike is the only reaction type the store currently records.
const ReactionLike = "like"

// Reaction is a single user's reaction to a post. A user has at most one
// reaction per post; the store enforces uniqueness on (PostID, UserID).
type Reaction struct {
	PostID    int64
	UserID    int64
	Type      string
	CreatedAt time.Time
}
