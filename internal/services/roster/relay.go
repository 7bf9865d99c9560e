// Package roster pushes full roster snapshots to subscribers whenever a
// stored position changes.
package roster

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/quickquack/internal/model"
)

// Source produces the current roster
type Source interface {
	ListRoster(ctx context.Context) (model.Roster, error)
}

// Feed streams position change events
type Feed interface {
	WatchPositions(ctx context.Context) (<-chan model.PositionChange, error)
}

// Handler receives a roster snapshot. Handlers run on the relay goroutine
// and must not block.
type Handler func(model.Roster)

// DefaultRetryDelay is the wait before re-opening a failed change feed
const DefaultRetryDelay = time.Second

var errFeedClosed = errors.New("change feed closed")

// Relay fans position changes out to subscribers as full snapshots
type Relay struct {
	source     Source
	feed       Feed
	logger     *slog.Logger
	retryDelay time.Duration

	mu     sync.Mutex
	subs   map[uint64]Handler
	nextID uint64
}

// New creates a new Relay
func New(source Source, feed Feed, logger *slog.Logger) *Relay {
	return &Relay{
		source:     source,
		feed:       feed,
		logger:     logger.With(slog.String("component", "roster")),
		retryDelay: DefaultRetryDelay,
		subs:       make(map[uint64]Handler),
	}
}

// Subscription is a registered handler
type Subscription struct {
	relay *Relay
	id    uint64
	once  sync.Once
}

// Subscribe registers fn to receive every snapshot published after this call
func (r *Relay) Subscribe(fn Handler) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.subs[r.nextID] = fn
	return &Subscription{relay: r, id: r.nextID}
}

// Unsubscribe stops delivery to the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.relay.mu.Lock()
		delete(s.relay.subs, s.id)
		s.relay.mu.Unlock()
	})
}

// SubscriberCount returns the number of registered handlers
func (r *Relay) SubscriberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Snapshot returns the current roster
func (r *Relay) Snapshot(ctx context.Context) (model.Roster, error) {
	return r.source.ListRoster(ctx)
}

// Run consumes the change feed until ctx is cancelled.
// If the feed fails it is re-opened after a delay and a snapshot is
// published, since changes may have been missed in between.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("roster relay started")
	for {
		err := r.watch(ctx)
		if ctx.Err() != nil {
			r.logger.Info("roster relay stopped")
			return nil
		}
		r.logger.Warn("change feed interrupted",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", r.retryDelay),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.retryDelay):
		}
	}
}

func (r *Relay) watch(ctx context.Context) error {
	changes, err := r.feed.WatchPositions(ctx)
	if err != nil {
		return err
	}
	r.publish(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return errFeedClosed
			}
			r.logger.Debug("position changed",
				slog.String("type", string(change.Type)),
				slog.String("player_id", string(change.PlayerID)),
			)
			if !drain(changes) {
				r.publish(ctx)
				return errFeedClosed
			}
			r.publish(ctx)
		}
	}
}

// drain discards queued changes so a burst produces one snapshot.
// Returns false if the feed was closed.
func drain(changes <-chan model.PositionChange) bool {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// publish fetches the full roster and hands it to every subscriber
func (r *Relay) publish(ctx context.Context) {
	r.mu.Lock()
	if len(r.subs) == 0 {
		r.mu.Unlock()
		return
	}
	handlers := make([]Handler, 0, len(r.subs))
	for _, fn := range r.subs {
		handlers = append(handlers, fn)
	}
	r.mu.Unlock()

	roster, err := r.source.ListRoster(ctx)
	if err != nil {
		r.logger.Error("failed to load roster",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, fn := range handlers {
		fn(roster)
	}
}
