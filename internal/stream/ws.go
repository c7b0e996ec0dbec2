package stream

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fanline/internal/domain"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Handler upgrades HTTP requests to websocket connections that stream a
// recipient's notifications as they are committed.
type Handler struct {
	broker   *Broker
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket stream handler backed by the broker.
func NewHandler(broker *Broker, logger *slog.Logger) *Handler {
	return &Handler{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// wireNotification is the JSON shape written to the socket.
type wireNotification struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Type      string    `json:"type"`
	PostID    int64     `json:"post_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Serve upgrades the request and streams notifications for recipientID
// until the client disconnects. The caller has already resolved and
// authorized the identity.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, recipientID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("notification stream opened", "recipient_id", recipientID)

	notifs, cancel := h.broker.Subscribe(recipientID)
	defer cancel()

	// Reader goroutine: the client sends nothing we care about, but reading
	// is what surfaces close frames and feeds the pong handler.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			h.logger.Info("notification stream closed", "recipient_id", recipientID)
			return
		case <-r.Context().Done():
			return
		case n := <-notifs:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(toWire(n)); err != nil {
				h.logger.Error("notification stream write failed",
					"recipient_id", recipientID, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func toWire(n domain.Notification) wireNotification {
	return wireNotification{
		ID:        n.ID,
		ActorID:   n.ActorID,
		Type:      string(n.Type),
		PostID:    n.PostID,
		CreatedAt: n.CreatedAt,
	}
}
