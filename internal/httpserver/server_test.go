package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fanline/internal/config"
	"fanline/internal/domain"
	"fanline/internal/sqlite"
	"fanline/internal/stream"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()

	broker := stream.NewBroker()
	fanout := domain.NewFanoutWriter(repo, repo, domain.FanoutConfig{Cap: cfg.Fanout.Cap}, logger)
	notifier := domain.NewNotifier(repo, broker, logger)
	service := domain.NewService(repo, repo, repo, repo, repo, fanout, notifier, logger)
	feeds := domain.NewFeedService(repo, repo, repo, domain.FeedConfig{}, logger)

	s := NewServer(cfg, service, feeds, stream.NewHandler(broker, logger), logger)
	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, caller int64, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", caller))
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestCreateUserAndPostFlow(t *testing.T) {
	ts := testServer(t)

	resp, user := doJSON(t, ts, "POST", "/users", 0, map[string]string{"username": "alice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user status = %d", resp.StatusCode)
	}
	aliceID := int64(user["id"].(float64))

	resp, post := doJSON(t, ts, "POST", "/posts", aliceID, map[string]string{"content": "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post status = %d", resp.StatusCode)
	}
	if post["content"] != "hello" {
		t.Fatalf("post = %+v", post)
	}
}

func TestFollowFeedOverHTTP(t *testing.T) {
	ts := testServer(t)

	_, alice := doJSON(t, ts, "POST", "/users", 0, map[string]string{"username": "alice"})
	_, bob := doJSON(t, ts, "POST", "/users", 0, map[string]string{"username": "bob"})
	aliceID := int64(alice["id"].(float64))
	bobID := int64(bob["id"].(float64))

	resp, _ := doJSON(t, ts, "PUT", fmt.Sprintf("/users/%d/follow", aliceID), bobID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("follow status = %d", resp.StatusCode)
	}

	doJSON(t, ts, "POST", "/posts", aliceID, map[string]string{"content": "hi bob"})

	resp, feed := doJSON(t, ts, "GET", "/feeds/following", bobID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("following feed status = %d", resp.StatusCode)
	}
	posts := feed["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("following feed = %d posts, want 1", len(posts))
	}

	resp, tl := doJSON(t, ts, "GET", "/feeds/timeline", bobID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("timeline feed status = %d", resp.StatusCode)
	}
	entries := tl["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("timeline feed = %d entries, want 1", len(entries))
	}
}

func TestSelfFollowRejectedOverHTTP(t *testing.T) {
	ts := testServer(t)

	_, alice := doJSON(t, ts, "POST", "/users", 0, map[string]string{"username": "alice"})
	aliceID := int64(alice["id"].(float64))

	resp, body := doJSON(t, ts, "PUT", fmt.Sprintf("/users/%d/follow", aliceID), aliceID, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self-follow status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "InvalidRequest" {
		t.Fatalf("error body = %+v", body)
	}
}

func TestMissingIdentityRejected(t *testing.T) {
	ts := testServer(t)

	resp, _ := doJSON(t, ts, "GET", "/feeds/following", 0, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestUnknownPostIs404(t *testing.T) {
	ts := testServer(t)

	resp, body := doJSON(t, ts, "GET", "/posts/12345", 0, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["error"] != "NotFound" {
		t.Fatalf("error body = %+v", body)
	}
}
