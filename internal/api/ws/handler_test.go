package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quickquack/internal/dependencies/mocks"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/board"
	"github.com/mcoot/quickquack/internal/services/position"
	"github.com/mcoot/quickquack/internal/services/roster"
	"github.com/mcoot/quickquack/internal/storage/memory"
	"github.com/mcoot/quickquack/internal/testutil"
)

type HandlerSuite struct {
	suite.Suite
	positions *position.Service
	relay     *roster.Relay
	server    *httptest.Server
	ctx       context.Context
	cancel    context.CancelFunc
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := testutil.NopLogger()
	catalog, err := model.NewAvatarCatalog(model.DefaultAvatars())
	s.Require().NoError(err)

	store := memory.New()
	s.positions = position.New(store, board.Default(), catalog,
		mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), logger)
	s.relay = roster.New(s.positions, store, logger)

	s.ctx, s.cancel = context.WithCancel(context.Background())
	go func() { _ = s.relay.Run(s.ctx) }()

	s.server = httptest.NewServer(NewHandler(s.relay, logger))
}

func (s *HandlerSuite) TearDownTest() {
	s.server.CloseClientConnections()
	s.server.Close()
	s.cancel()
}

func (s *HandlerSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	c, _, err := websocket.Dial(s.ctx, url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = c.CloseNow() })
	return c
}

func (s *HandlerSuite) read(c *websocket.Conn) Message {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	var msg Message
	s.Require().NoError(wsjson.Read(ctx, c, &msg))
	s.Equal(MessageTypeRoster, msg.Type)
	return msg
}

func (s *HandlerSuite) TestSendsSnapshotOnConnect() {
	_, err := s.positions.Upsert(s.ctx, "player-1", 5, 30)
	s.Require().NoError(err)

	c := s.dial()
	msg := s.read(c)

	s.Require().Len(msg.Roster.Players, 1)
	s.Equal("player-1", msg.Roster.Players[0].PlayerID)
	s.Equal(5, msg.Roster.Players[0].Avatar.ID)
	s.Equal(30, msg.Roster.Players[0].SpaceID)
}

func (s *HandlerSuite) TestPushesChanges() {
	c := s.dial()
	s.Empty(s.read(c).Roster.Players)

	_, err := s.positions.Upsert(s.ctx, "player-2", 1, 61)
	s.Require().NoError(err)

	for {
		msg := s.read(c)
		if len(msg.Roster.Players) == 1 {
			s.Equal(61, msg.Roster.Players[0].SpaceID)
			return
		}
	}
}

func (s *HandlerSuite) TestUnsubscribesOnClose() {
	c := s.dial()
	s.read(c)
	s.Equal(1, s.relay.SubscriberCount())

	_ = c.Close(websocket.StatusNormalClosure, "")

	s.Eventually(func() bool { return s.relay.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOfferKeepsLatest(t *testing.T) {
	ch := make(chan model.Roster, 1)
	offer(ch, model.Roster{{PlayerID: "a"}})
	offer(ch, model.Roster{{PlayerID: "b"}})

	got := <-ch
	if len(got) != 1 || got[0].PlayerID != "b" {
		t.Fatalf("offer kept %v, want latest snapshot", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued snapshot %v", extra)
	default:
	}
}
