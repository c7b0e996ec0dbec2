package domain

import "time"

// TimelineEntry is a denormalized per-follower copy of a followed author's
// post, written once at fan-out time. Entries are never updated: they record
// the graph as it stood when the post was created, not the current graph.
type TimelineEntry struct {
	UserID    int64
	PostID    int64
	AuthorID  int64
	CreatedAt time.Time
}

// TimelinePost is a timeline entry joined with its post for feed reads.
type TimelinePost struct {
	Entry TimelineEntry
	Post  Post
}

// TrendingPost is a post with its engagement score as computed by the
// trending feed.
type TrendingPost struct {
	Post  Post
	Score int64
}
