package domain_test

import (
	"context"
	"testing"

	"fanline/internal/domain"
)

func TestFollowingAndTimelineFeedsScenario(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	u := s.user(t, "u")
	x := s.user(t, "x")
	y := s.user(t, "y")
	s.follow(t, u.ID, x.ID)
	s.follow(t, u.ID, y.ID)

	post := s.post(t, x.ID, "hello")

	feed, err := s.feeds.FollowingFeed(ctx, u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].Content != "hello" || feed[0].AuthorID != x.ID {
		t.Fatalf("following feed = %+v, want just x's hello", feed)
	}

	tl, err := s.feeds.TimelineFeed(ctx, u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tl) != 1 || tl[0].Post.ID != post.ID || tl[0].Entry.AuthorID != x.ID {
		t.Fatalf("timeline feed = %+v, want one entry for x's post", tl)
	}

	// y never posted; trending carries nothing of y either.
	trending, err := s.feeds.TrendingFeed(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range trending {
		if p.Post.AuthorID == y.ID {
			t.Fatalf("trending contains a post by y: %+v", p)
		}
	}
}

func TestFollowingFeedEmptyWithoutFollows(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})

	u := s.user(t, "hermit")
	feed, err := s.feeds.FollowingFeed(context.Background(), u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 0 {
		t.Fatalf("following feed = %d posts, want 0", len(feed))
	}
}

func TestFollowingFeedNewestFirst(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	u := s.user(t, "u")
	x := s.user(t, "x")
	s.follow(t, u.ID, x.ID)

	s.post(t, x.ID, "first")
	s.post(t, x.ID, "second")

	feed, err := s.feeds.FollowingFeed(ctx, u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed length = %d, want 2", len(feed))
	}
	if feed[0].Content != "second" || feed[1].Content != "first" {
		t.Fatalf("feed order = [%s, %s], want newest first", feed[0].Content, feed[1].Content)
	}
}

func TestFeedsRespectVisibility(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	u := s.user(t, "u")
	x := s.user(t, "x")
	s.follow(t, u.ID, x.ID)

	if _, err := s.service.CreatePost(ctx, x.ID, "for everyone", domain.VisibilityPublic, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.service.CreatePost(ctx, x.ID, "for followers", domain.VisibilityFollowers, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.service.CreatePost(ctx, x.ID, "for me", domain.VisibilityPrivate, 0); err != nil {
		t.Fatal(err)
	}

	feed, err := s.feeds.FollowingFeed(ctx, u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 2 {
		t.Fatalf("following feed = %d posts, want public + followers", len(feed))
	}
	for _, p := range feed {
		if p.Visibility == domain.VisibilityPrivate {
			t.Fatalf("private post leaked into following feed: %+v", p)
		}
	}

	tl, err := s.feeds.TimelineFeed(ctx, u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tl) != 2 {
		t.Fatalf("timeline feed = %d entries, want 2", len(tl))
	}

	trending, err := s.feeds.TrendingFeed(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(trending) != 1 || trending[0].Post.Visibility != domain.VisibilityPublic {
		t.Fatalf("trending = %+v, want public posts only", trending)
	}
}

func TestTrendingWeightsCommentsOverLikes(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	author := s.user(t, "author")
	a := s.post(t, author.ID, "post A")
	b := s.post(t, author.ID, "post B")

	// 10 distinct users like A; 10 users comment on B.
	for i := 0; i < 10; i++ {
		liker := s.user(t, "liker"+string(rune('a'+i)))
		if err := s.service.ReactToPost(ctx, liker.ID, a.ID, "like"); err != nil {
			t.Fatal(err)
		}
		commenter := s.user(t, "commenter"+string(rune('a'+i)))
		if _, err := s.service.CreateComment(ctx, commenter.ID, b.ID, "!"); err != nil {
			t.Fatal(err)
		}
	}

	trending, err := s.feeds.TrendingFeed(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(trending) != 2 {
		t.Fatalf("trending = %d posts, want 2", len(trending))
	}
	if trending[0].Post.ID != b.ID || trending[0].Score != 30 {
		t.Fatalf("top trending = post %d score %d, want B with 30", trending[0].Post.ID, trending[0].Score)
	}
	if trending[1].Post.ID != a.ID || trending[1].Score != 20 {
		t.Fatalf("second trending = post %d score %d, want A with 20", trending[1].Post.ID, trending[1].Score)
	}
}

func TestFeedsExcludeDeletedPosts(t *testing.T) {
	s := newStack(t, domain.FanoutConfig{Cap: 100})
	ctx := context.Background()

	u := s.user(t, "u")
	x := s.user(t, "x")
	s.follow(t, u.ID, x.ID)
	post := s.post(t, x.ID, "oops")

	if err := s.service.DeletePost(ctx, x.ID, post.ID); err != nil {
		t.Fatal(err)
	}

	feed, err := s.feeds.FollowingFeed(ctx, u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	tl, err := s.feeds.TimelineFeed(ctx, u.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	trending, err := s.feeds.TrendingFeed(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed)+len(tl)+len(trending) != 0 {
		t.Fatalf("deleted post still visible: following=%d timeline=%d trending=%d", len(feed), len(tl), len(trending))
	}
}
