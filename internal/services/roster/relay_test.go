package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quickquack/internal/dependencies/mocks"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/board"
	"github.com/mcoot/quickquack/internal/services/position"
	"github.com/mcoot/quickquack/internal/storage/memory"
	"github.com/mcoot/quickquack/internal/testutil"
)

// recorder collects snapshots delivered to a subscriber
type recorder struct {
	mu        sync.Mutex
	snapshots []model.Roster
}

func (r *recorder) handle(roster model.Roster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, roster)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recorder) last() model.Roster {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

// flakyFeed fails the first open, then delegates
type flakyFeed struct {
	Feed
	mu    sync.Mutex
	opens int
}

func (f *flakyFeed) WatchPositions(ctx context.Context) (<-chan model.PositionChange, error) {
	f.mu.Lock()
	f.opens++
	first := f.opens == 1
	f.mu.Unlock()
	if first {
		return nil, errors.New("feed unavailable")
	}
	return f.Feed.WatchPositions(ctx)
}

type RelaySuite struct {
	suite.Suite
	storage   *memory.Storage
	positions *position.Service
	relay     *Relay
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.storage = memory.New()
	catalog, err := model.NewAvatarCatalog(model.DefaultAvatars())
	s.Require().NoError(err)
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.positions = position.New(s.storage, board.Default(), catalog, clock, testutil.NopLogger())
	s.relay = New(s.positions, s.storage, testutil.NopLogger())
	s.relay.retryDelay = 10 * time.Millisecond
	s.ctx, s.cancel = context.WithCancel(context.Background())
}

func (s *RelaySuite) TearDownTest() {
	s.cancel()
	if s.done != nil {
		select {
		case <-s.done:
		case <-time.After(time.Second):
			s.Fail("relay did not stop")
		}
	}
}

func (s *RelaySuite) start() {
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_ = s.relay.Run(s.ctx)
	}()
}

// waitForSpace waits until the latest snapshot shows the player on space
func (s *RelaySuite) waitForSpace(rec *recorder, playerID model.PlayerID, space int) {
	s.Eventually(func() bool {
		entry := rec.last().Find(playerID)
		return entry != nil && entry.SpaceID == space
	}, time.Second, 5*time.Millisecond)
}

func (s *RelaySuite) TestSubscriberReceivesFullSnapshot() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice"}))
	_, err := s.positions.Upsert(s.ctx, "player-2", 0, 3)
	s.Require().NoError(err)

	rec := &recorder{}
	s.relay.Subscribe(rec.handle)
	s.start()

	_, err = s.positions.Upsert(s.ctx, "player-1", 1, 8)
	s.Require().NoError(err)

	s.waitForSpace(rec, "player-1", 8)
	snapshot := rec.last()
	s.Len(snapshot, 2)
	s.Equal("Alice", snapshot.Find("player-1").DisplayName)
	s.NotNil(snapshot.Find("player-2"))
}

func (s *RelaySuite) TestBurstReflectsLastWrite() {
	rec := &recorder{}
	s.relay.Subscribe(rec.handle)
	s.start()

	for space := 1; space <= 20; space++ {
		_, err := s.positions.Upsert(s.ctx, "player-1", 0, space)
		s.Require().NoError(err)
	}

	s.waitForSpace(rec, "player-1", 20)
	s.GreaterOrEqual(rec.count(), 1)
}

func (s *RelaySuite) TestEverySubscriberIsInvoked() {
	first, second := &recorder{}, &recorder{}
	s.relay.Subscribe(first.handle)
	s.relay.Subscribe(second.handle)
	s.start()

	_, err := s.positions.Upsert(s.ctx, "player-1", 0, 6)
	s.Require().NoError(err)

	s.waitForSpace(first, "player-1", 6)
	s.waitForSpace(second, "player-1", 6)
}

func (s *RelaySuite) TestUnsubscribeStopsDelivery() {
	rec := &recorder{}
	sub := s.relay.Subscribe(rec.handle)
	s.Equal(1, s.relay.SubscriberCount())

	sub.Unsubscribe()
	sub.Unsubscribe()
	s.Equal(0, s.relay.SubscriberCount())

	other := &recorder{}
	s.relay.Subscribe(other.handle)
	s.start()

	_, err := s.positions.Upsert(s.ctx, "player-1", 0, 6)
	s.Require().NoError(err)

	s.waitForSpace(other, "player-1", 6)
	s.Zero(rec.count())
}

func (s *RelaySuite) TestSnapshot() {
	_, err := s.positions.Upsert(s.ctx, "player-1", 0, 6)
	s.Require().NoError(err)

	roster, err := s.relay.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(roster, 1)
	s.Equal(6, roster[0].SpaceID)
}

func (s *RelaySuite) TestRunRetriesFailedFeed() {
	feed := &flakyFeed{Feed: s.storage}
	logger, logs := testutil.CaptureLogger()
	s.relay = New(s.positions, feed, logger)
	s.relay.retryDelay = 10 * time.Millisecond

	rec := &recorder{}
	s.relay.Subscribe(rec.handle)
	s.start()

	s.Eventually(func() bool {
		feed.mu.Lock()
		defer feed.mu.Unlock()
		return feed.opens >= 2
	}, time.Second, 5*time.Millisecond)

	_, err := s.positions.Upsert(s.ctx, "player-1", 0, 9)
	s.Require().NoError(err)
	s.waitForSpace(rec, "player-1", 9)
	s.Contains(logs.String(), `"msg":"change feed interrupted"`)
	s.Contains(logs.String(), `"component":"roster"`)
}

func (s *RelaySuite) TestRunStopsOnCancel() {
	s.start()
	s.cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		s.Fail("relay did not stop")
	}
}
