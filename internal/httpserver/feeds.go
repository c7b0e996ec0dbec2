package httpserver

import (
	"net/http"
	"time"
)

type timelineEntryResponse struct {
	Post     postResponse `json:"post"`
	AuthorID int64        `json:"author_id"`
	FannedAt time.Time    `json:"fanned_out_at"`
}

type trendingPostResponse struct {
	Post  postResponse `json:"post"`
	Score int64        `json:"score"`
}

func (s *Server) handleFollowingFeed(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		return
	}
	posts, err := s.feeds.FollowingFeed(r.Context(), caller, limitParam(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": toPostResponses(posts)})
}

func (s *Server) handleTimelineFeed(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		return
	}
	entries, err := s.feeds.TimelineFeed(r.Context(), caller, limitParam(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]timelineEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = timelineEntryResponse{
			Post:     toPostResponse(e.Post),
			AuthorID: e.Entry.AuthorID,
			FannedAt: e.Entry.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (s *Server) handleTrendingFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.feeds.TrendingFeed(r.Context(), limitParam(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]trendingPostResponse, len(posts))
	for i, p := range posts {
		out[i] = trendingPostResponse{
			Post:  toPostResponse(p.Post),
			Score: p.Score,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": out})
}

func (s *Server) handleRecentFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.feeds.RecentFeed(r.Context(), limitParam(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": toPostResponses(posts)})
}
