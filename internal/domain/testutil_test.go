package domain_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"fanline/internal/domain"
	"fanline/internal/sqlite"
)

type stack struct {
	repo    *sqlite.Repository
	fanout  *domain.FanoutWriter
	service *domain.Service
	feeds   *domain.FeedService
}

func newStack(t *testing.T, fanoutCfg domain.FanoutConfig) *stack {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fanout := domain.NewFanoutWriter(repo, repo, fanoutCfg, logger)
	notifier := domain.NewNotifier(repo, nil, logger)
	service := domain.NewService(repo, repo, repo, repo, repo, fanout, notifier, logger)
	feeds := domain.NewFeedService(repo, repo, repo, domain.FeedConfig{}, logger)

	return &stack{repo: repo, fanout: fanout, service: service, feeds: feeds}
}

func (s *stack) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := s.service.CreateUser(context.Background(), username, "", "")
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (s *stack) follow(t *testing.T, follower, following int64) {
	t.Helper()
	if err := s.service.FollowUser(context.Background(), follower, following); err != nil {
		t.Fatalf("follow %d -> %d: %v", follower, following, err)
	}
}

func (s *stack) post(t *testing.T, authorID int64, content string) *domain.Post {
	t.Helper()
	p, err := s.service.CreatePost(context.Background(), authorID, content, domain.VisibilityPublic, 0)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// failingTimelines stands in for a timeline store whose writes fail.
type failingTimelines struct{ err error }

func (f *failingTimelines) InsertEntries(context.Context, []domain.TimelineEntry) error {
	return f.err
}

func (f *failingTimelines) TimelineFor(context.Context, int64, int) ([]domain.TimelinePost, error) {
	return nil, f.err
}
