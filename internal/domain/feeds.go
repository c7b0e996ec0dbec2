package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fanline/internal/metrics"
)

// FeedConfig tunes the feed assembler.
type FeedConfig struct {
	// DefaultLimit is the page size used when the caller asks for none.
	DefaultLimit int

	// MaxLimit bounds the page size a caller may request.
	MaxLimit int

	// TrendingWindow is the trailing window trending posts must fall in.
	TrendingWindow time.Duration
}

// FeedService assembles the three feed types. The three algorithms are
// independent reads, not a shared pipeline:
//
//   - the following feed joins the current graph against posts on demand,
//   - the timeline feed serves precomputed fan-out rows as written,
//   - the trending feed scores recent posts from denormalized counters.
//
// All three exclude soft-deleted posts. Feed reads take no locks and see
// whatever committed state the store exposes at query time.
type FeedService struct {
	posts     PostRepository
	follows   FollowRepository
	timelines TimelineRepository
	cfg       FeedConfig
	logger    *slog.Logger
}

// NewFeedService creates a FeedService.
func NewFeedService(posts PostRepository, follows FollowRepository, timelines TimelineRepository, cfg FeedConfig, logger *slog.Logger) *FeedService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.TrendingWindow <= 0 {
		cfg.TrendingWindow = 7 * 24 * time.Hour
	}
	return &FeedService{
		posts:     posts,
		follows:   follows,
		timelines: timelines,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *FeedService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// FollowingFeed returns posts by everyone the caller currently follows,
// newest first. It always reflects the live graph, including authors whose
// fan-out was truncated by the cap. An empty following set yields an empty
// feed.
func (s *FeedService) FollowingFeed(ctx context.Context, callerID int64, limit int) ([]Post, error) {
	defer metrics.ObserveFeedDuration("following", time.Now())

	followingIDs, err := s.follows.FollowingIDs(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	if len(followingIDs) == 0 {
		return []Post{}, nil
	}
	posts, err := s.posts.PostsByAuthors(ctx, followingIDs, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("posts by authors: %w", err)
	}
	return posts, nil
}

// TimelineFeed returns the caller's precomputed timeline, newest first. It
// reflects the graph as it stood when each post was fanned out, and omits
// posts from authors whose follower count exceeded the cap past the cap
// boundary.
func (s *FeedService) TimelineFeed(ctx context.Context, callerID int64, limit int) ([]TimelinePost, error) {
	defer metrics.ObserveFeedDuration("timeline", time.Now())

	entries, err := s.timelines.TimelineFor(ctx, callerID, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("timeline for user: %w", err)
	}
	return entries, nil
}

// TrendingFeed returns public posts created within the trending window,
// ordered by like_count*2 + comment_count*3 descending, newest first on
// ties. The score is computed at read time from the denormalized counters;
// no trending state is persisted.
func (s *FeedService) TrendingFeed(ctx context.Context, limit int) ([]TrendingPost, error) {
	defer metrics.ObserveFeedDuration("trending", time.Now())

	since := time.Now().UTC().Add(-s.cfg.TrendingWindow)
	posts, err := s.posts.TrendingPosts(ctx, since, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("trending posts: %w", err)
	}
	return posts, nil
}

// RecentFeed returns the newest non-deleted public posts regardless of the
// caller's graph.
func (s *FeedService) RecentFeed(ctx context.Context, limit int) ([]Post, error) {
	defer metrics.ObserveFeedDuration("recent", time.Now())

	posts, err := s.posts.RecentPosts(ctx, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return posts, nil
}
