package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Service owns the mutation paths of the social core: users, posts,
// comments, reactions, follows, and notification reads. Feed reads live in
// FeedService.
//
// Callers are identified by a caller ID supplied by the upstream identity
// layer; the service trusts it without re-validation.
type Service struct {
	users     UserRepository
	posts     PostRepository
	comments  CommentRepository
	reactions ReactionRepository
	follows   FollowRepository
	fanout    *FanoutWriter
	notifier  *Notifier
	logger    *slog.Logger
}

// NewService creates the mutation service.
func NewService(
	users UserRepository,
	posts PostRepository,
	comments CommentRepository,
	reactions ReactionRepository,
	follows FollowRepository,
	fanout *FanoutWriter,
	notifier *Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:     users,
		posts:     posts,
		comments:  comments,
		reactions: reactions,
		follows:   follows,
		fanout:    fanout,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateUser registers a new account.
func (s *Service) CreateUser(ctx context.Context, username, displayName, bio string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalid)
	}
	user := &User{
		Username:    username,
		DisplayName: displayName,
		Bio:         bio,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser retrieves an account by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetUser(ctx, id)
}

// CreatePost creates a post for the caller and fans it out to followers'
// timelines. The post is committed before fan-out begins; a fan-out failure
// leaves the post valid and reachable through the following feed.
func (s *Service) CreatePost(ctx context.Context, callerID int64, content string, visibility Visibility, replyToID int64) (*Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	if visibility == "" {
		visibility = VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrInvalid, visibility)
	}
	if _, err := s.users.GetUser(ctx, callerID); err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	if replyToID != 0 {
		if _, err := s.posts.GetPost(ctx, replyToID); err != nil {
			return nil, fmt.Errorf("reply parent: %w", err)
		}
	}

	post := &Post{
		AuthorID:   callerID,
		Content:    content,
		Visibility: visibility,
		ReplyToID:  replyToID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.fanout.DistributeTolerant(ctx, post)
	return post, nil
}

// GetPost retrieves a non-deleted post.
func (s *Service) GetPost(ctx context.Context, id int64) (*Post, error) {
	return s.posts.GetPost(ctx, id)
}

// DeletePost soft-deletes the caller's post. Only the author may delete.
func (s *Service) DeletePost(ctx context.Context, callerID, postID int64) error {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrForbidden
	}
	if err := s.posts.SoftDeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
