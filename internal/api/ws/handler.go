// Package ws streams roster snapshots over a websocket.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mcoot/quickquack/internal/api/middleware"
	"github.com/mcoot/quickquack/internal/api/response"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/roster"
)

const (
	writeTimeout = 5 * time.Second
	pingPeriod   = 30 * time.Second
)

// MessageTypeRoster tags a full roster snapshot
const MessageTypeRoster = "roster"

// Message is the envelope written to the socket
type Message struct {
	Type   string          `json:"type"`
	Roster response.Roster `json:"roster"`
}

// Handler upgrades GET /api/v1/roster/ws and pushes every snapshot.
// The stream is server to client only; incoming messages are discarded.
type Handler struct {
	relay  *roster.Relay
	logger *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(relay *roster.Relay, logger *slog.Logger) *Handler {
	return &Handler{
		relay:  relay,
		logger: logger.With(slog.String("component", "ws")),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = c.CloseNow() }()

	playerID := middleware.GetPlayerID(r.Context())
	logger := h.logger.With(slog.String("player_id", string(playerID)))
	logger.Info("websocket client connected")

	// Cancelled once the peer closes
	ctx := c.CloseRead(r.Context())

	// Only the newest snapshot matters, so a slow client skips stale ones
	updates := make(chan model.Roster, 1)
	sub := h.relay.Subscribe(func(r model.Roster) { offer(updates, r) })
	defer sub.Unsubscribe()

	current, err := h.relay.Snapshot(ctx)
	if err != nil {
		logger.Error("failed to load roster", slog.String("error", err.Error()))
		_ = c.Close(websocket.StatusInternalError, "roster unavailable")
		return
	}
	if err := write(ctx, c, current); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("websocket client disconnected")
			_ = c.Close(websocket.StatusNormalClosure, "")
			return
		case snapshot := <-updates:
			if err := write(ctx, c, snapshot); err != nil {
				logger.Info("websocket write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, c *websocket.Conn, r model.Roster) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, Message{Type: MessageTypeRoster, Roster: response.RosterFromModel(r)})
}

// offer replaces any pending snapshot with r. Only the relay goroutine sends.
func offer(ch chan model.Roster, r model.Roster) {
	for {
		select {
		case ch <- r:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
