package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fanline/internal/config"
	"fanline/internal/domain"
	"fanline/internal/stream"
)

// Server is the HTTP server exposing the social core's operations. The
// upstream identity layer is represented by the X-User-ID header, which is
// trusted without re-validation.
type Server struct {
	cfg        config.Config
	service    *domain.Service
	feeds      *domain.FeedService
	ws         *stream.Handler
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP server wired to the given services.
func NewServer(cfg config.Config, service *domain.Service, feeds *domain.FeedService, ws *stream.Handler, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		feeds:   feeds,
		ws:      ws,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}/follow", s.handleFollow)
	mux.HandleFunc("DELETE /users/{id}/follow", s.handleUnfollow)

	mux.HandleFunc("POST /posts", s.handleCreatePost)
	mux.HandleFunc("GET /posts/{id}", s.handleGetPost)
	mux.HandleFunc("DELETE /posts/{id}", s.handleDeletePost)
	mux.HandleFunc("GET /posts/{id}/comments", s.handleListComments)
	mux.HandleFunc("POST /posts/{id}/comments", s.handleCreateComment)
	mux.HandleFunc("PUT /posts/{id}/reactions", s.handleReact)
	mux.HandleFunc("DELETE /posts/{id}/reactions", s.handleUnreact)

	mux.HandleFunc("GET /feeds/following", s.handleFollowingFeed)
	mux.HandleFunc("GET /feeds/timeline", s.handleTimelineFeed)
	mux.HandleFunc("GET /feeds/trending", s.handleTrendingFeed)
	mux.HandleFunc("GET /feeds/recent", s.handleRecentFeed)

	mux.HandleFunc("GET /notifications", s.handleNotifications)
	mux.HandleFunc("POST /notifications/{id}/read", s.handleMarkNotificationRead)
	mux.HandleFunc("GET /ws/notifications", s.handleNotificationStream)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// callerID resolves the authenticated caller from the X-User-ID header.
func callerID(r *http.Request) (int64, error) {
	v := r.Header.Get("X-User-ID")
	if v == "" {
		return 0, errors.New("X-User-ID header is required")
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid X-User-ID %q", v)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func limitParam(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// writeDomainError maps sentinel errors from the core onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
	case errors.Is(err, domain.ErrSelfFollow), errors.Is(err, domain.ErrInvalid):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack exposes the underlying connection so the websocket upgrade works
// through the logging wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}
