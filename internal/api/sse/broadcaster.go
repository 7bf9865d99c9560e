package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/quickquack/internal/api/middleware"
	"github.com/mcoot/quickquack/internal/api/response"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/roster"
)

// RosterEvent is the event name carrying a full roster snapshot
const RosterEvent = "roster"

// Broadcaster turns relay snapshots into roster events on a hub
type Broadcaster struct {
	hub    *Hub
	relay  *roster.Relay
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, relay *roster.Relay, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		relay:  relay,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Attach subscribes the broadcaster to the relay
func (b *Broadcaster) Attach() *roster.Subscription {
	return b.relay.Subscribe(b.BroadcastRoster)
}

// BroadcastRoster sends a roster snapshot to every client
func (b *Broadcaster) BroadcastRoster(r model.Roster) {
	data, err := rosterData(r)
	if err != nil {
		b.logger.Error("sse failed to encode roster", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent(RosterEvent, data)
}

// ServeHTTP handles GET /api/v1/roster/events.
// Each client gets the current roster first, then every change.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ServeSSE(w, r, b.hub, middleware.GetPlayerID(r.Context()), func() ([]byte, error) {
		return b.snapshot(r.Context())
	})
}

func (b *Broadcaster) snapshot(ctx context.Context) ([]byte, error) {
	r, err := b.relay.Snapshot(ctx)
	if err != nil {
		b.logger.Error("sse failed to load roster", slog.Any("error", err))
		return nil, err
	}
	data, err := rosterData(r)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(RosterEvent, data), nil
}

func rosterData(r model.Roster) (string, error) {
	data, err := json.Marshal(response.RosterFromModel(r))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
