package domain_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"fanline/internal/domain"
)

func TestFanoutWritesOneEntryPerFollower(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	author := s.user(t, "author")
	readers := []*domain.User{s.user(t, "r1"), s.user(t, "r2"), s.user(t, "r3")}
	for _, r := range readers {
		s.follow(t, r.ID, author.ID)
	}

	post := s.post(t, author.ID, "hello")

	for _, r := range readers {
		tl, err := s.repo.TimelineFor(ctx, r.ID, 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(tl) != 1 {
			t.Fatalf("reader %s timeline rows = %d, want 1", r.Username, len(tl))
		}
		if tl[0].Post.ID != post.ID || tl[0].Entry.AuthorID != author.ID {
			t.Fatalf("unexpected timeline row: %+v", tl[0])
		}
	}
}

func TestFanoutZeroFollowersWritesNothing(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})

	author := s.user(t, "loner")
	post := s.post(t, author.ID, "into the void")
	if post.ID == 0 {
		t.Fatal("post creation must still succeed")
	}
}

func TestFanoutCapExcludesLateFollowers(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 2, BatchSize: 1})
	ctx := context.Background()

	author := s.user(t, "author")
	readers := []*domain.User{s.user(t, "r1"), s.user(t, "r2"), s.user(t, "r3")}
	for _, r := range readers {
		s.follow(t, r.ID, author.ID)
	}

	post := s.post(t, author.ID, "popular")

	var fanned int
	for _, r := range readers {
		tl, err := s.repo.TimelineFor(ctx, r.ID, 50)
		if err != nil {
			t.Fatal(err)
		}
		fanned += len(tl)
	}
	if fanned != 2 {
		t.Fatalf("timeline rows across followers = %d, want cap 2", fanned)
	}

	// The excluded follower still sees the post through the following feed.
	excluded := readers[2]
	tl, err := s.repo.TimelineFor(ctx, excluded.ID, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(tl) != 0 {
		t.Fatalf("excluded follower has %d timeline rows, want 0", len(tl))
	}
	feed, err := s.feeds.FollowingFeed(ctx, excluded.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].ID != post.ID {
		t.Fatalf("excluded follower's following feed missing the post: %+v", feed)
	}
}

func TestFanoutRetryIsIdempotent(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	author := s.user(t, "author")
	reader := s.user(t, "reader")
	s.follow(t, reader.ID, author.ID)

	post := s.post(t, author.ID, "hello")

	// A crash-and-retry re-runs distribution over already-written rows.
	if err := s.fanout.Distribute(ctx, post); err != nil {
		t.Fatal(err)
	}

	tl, err := s.repo.TimelineFor(ctx, reader.ID, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(tl) != 1 {
		t.Fatalf("timeline rows = %d after retry, want 1", len(tl))
	}
}

func TestFanoutFailureDoesNotFailPostCreation(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	author := s.user(t, "author")
	reader := s.user(t, "reader")
	s.follow(t, reader.ID, author.ID)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broken := domain.NewFanoutWriter(
		s.repo,
		&failingTimelines{err: errors.New("store down")},
		domain.FanoutConfig{Cap: 100},
		logger,
	)
	notifier := domain.NewNotifier(s.repo, nil, logger)
	service := domain.NewService(s.repo, s.repo, s.repo, s.repo, s.repo, broken, notifier, logger)

	post, err := service.CreatePost(ctx, author.ID, "hello", domain.VisibilityPublic, 0)
	if err != nil {
		t.Fatalf("post creation must survive fan-out failure, got %v", err)
	}

	// Still reachable via the on-demand path.
	feed, err := s.feeds.FollowingFeed(ctx, reader.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].ID != post.ID {
		t.Fatalf("following feed missing post after fan-out failure: %+v", feed)
	}
}
