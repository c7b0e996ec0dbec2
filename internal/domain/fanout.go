package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"fanline/internal/metrics"
)

// FanoutConfig tunes the timeline fan-out writer.
type FanoutConfig struct {
	// Cap bounds how many followers receive a timeline entry per post.
	// Followers beyond the cap see the post only through the following feed.
	Cap int

	// BatchSize bounds the number of rows per bulk insert statement.
	BatchSize int

	// BatchesPerSecond paces bulk inserts so high-follower authors cannot
	// monopolize the store. Zero disables pacing.
	BatchesPerSecond float64

	// RetryDelay is how long to wait before the single asynchronous retry of
	// a failed fan-out. Zero disables the retry.
	RetryDelay time.Duration
}

// FanoutWriter distributes a newly created post into followers' precomputed
// timelines. Distribution is a post-commit side effect: the post is already
// durable when Distribute runs, and a fan-out failure never invalidates it.
type FanoutWriter struct {
	follows   FollowRepository
	timelines TimelineRepository
	cfg       FanoutConfig
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewFanoutWriter creates a FanoutWriter with the given policy.
func NewFanoutWriter(follows FollowRepository, timelines TimelineRepository, cfg FanoutConfig, logger *slog.Logger) *FanoutWriter {
	if cfg.Cap <= 0 {
		cfg.Cap = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	var limiter *rate.Limiter
	if cfg.BatchesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.BatchesPerSecond), 1)
	}
	return &FanoutWriter{
		follows:   follows,
		timelines: timelines,
		cfg:       cfg,
		limiter:   limiter,
		logger:    logger,
	}
}

// Distribute writes one timeline entry per follower of the post's author, up
// to the configured cap. An author with no followers performs no writes.
// Inserts are idempotent on (follower, post), so a retried run after a
// partial failure never duplicates rows.
func (w *FanoutWriter) Distribute(ctx context.Context, post *Post) error {
	start := time.Now()
	metrics.FanoutRuns.Inc()

	// Fetch one past the cap to detect truncation.
	followerIDs, err := w.follows.FollowerIDs(ctx, post.AuthorID, w.cfg.Cap+1)
	if err != nil {
		metrics.FanoutFailures.Inc()
		return fmt.Errorf("list followers: %w", err)
	}
	if len(followerIDs) > w.cfg.Cap {
		followerIDs = followerIDs[:w.cfg.Cap]
		metrics.FanoutCapped.Inc()
		w.logger.Info("fan-out capped",
			"post_id", post.ID,
			"author_id", post.AuthorID,
			"cap", w.cfg.Cap,
		)
	}
	if len(followerIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	entries := make([]TimelineEntry, len(followerIDs))
	for i, fid := range followerIDs {
		entries[i] = TimelineEntry{
			UserID:    fid,
			PostID:    post.ID,
			AuthorID:  post.AuthorID,
			CreatedAt: now,
		}
	}

	for len(entries) > 0 {
		batch := entries
		if len(batch) > w.cfg.BatchSize {
			batch = batch[:w.cfg.BatchSize]
		}
		entries = entries[len(batch):]

		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				metrics.FanoutFailures.Inc()
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}
		if err := w.timelines.InsertEntries(ctx, batch); err != nil {
			metrics.FanoutFailures.Inc()
			return fmt.Errorf("insert timeline entries: %w", err)
		}
		metrics.FanoutRows.Add(float64(len(batch)))
	}

	w.logger.Info("fan-out complete",
		"post_id", post.ID,
		"author_id", post.AuthorID,
		"followers", len(followerIDs),
	)
	metrics.ObserveFanoutDuration(start)
	return nil
}

// DistributeTolerant runs Distribute and absorbs any failure: the error is
// logged and a single retry is scheduled in the background. The post stays
// visible through the following feed either way, so the caller never fails
// post creation over a stale timeline.
func (w *FanoutWriter) DistributeTolerant(ctx context.Context, post *Post) {
	err := w.Distribute(ctx, post)
	if err == nil {
		return
	}
	w.logger.Error("fan-out failed", "post_id", post.ID, "error", err)

	if w.cfg.RetryDelay <= 0 {
		return
	}
	go func() {
		time.Sleep(w.cfg.RetryDelay)
		// Detached from the request context: the triggering request may be
		// long gone by the time the retry runs.
		if err := w.Distribute(context.Background(), post); err != nil {
			w.logger.Error("fan-out retry failed", "post_id", post.ID, "error", err)
		}
	}()
}
