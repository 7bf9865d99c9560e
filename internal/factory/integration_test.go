package factory

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/auth"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	ctx    context.Context
	cancel context.CancelFunc
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.app.Start(s.ctx)
}

func (s *IntegrationSuite) TearDownTest() {
	s.cancel()
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) register(email, name string) *auth.Session {
	session, err := s.app.AuthService.Register(s.ctx, email, "secret123", name)
	s.Require().NoError(err)
	return session
}

// watch subscribes to the relay and returns every snapshot it delivers
func (s *IntegrationSuite) watch() <-chan model.Roster {
	ch := make(chan model.Roster, 64)
	sub := s.app.RosterRelay.Subscribe(func(r model.Roster) {
		select {
		case ch <- r:
		default:
		}
	})
	s.T().Cleanup(sub.Unsubscribe)
	return ch
}

func (s *IntegrationSuite) awaitRoster(ch <-chan model.Roster, match func(model.Roster) bool) model.Roster {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case r := <-ch:
			if match(r) {
				return r
			}
		case <-timeout:
			s.FailNow("timed out waiting for roster")
			return nil
		}
	}
}

// Test: a registered player picks an avatar, moves, wins prizes and reaches the end
func (s *IntegrationSuite) TestCompleteGameFlow() {
	alice := s.register("Alice@Example.com", "Alice")

	pos, err := s.app.GameController.SelectAvatar(s.ctx, alice.PlayerID, 1)
	s.Require().NoError(err)
	s.Equal(1, pos.SpaceID)

	// 1 -> 4 -> 10 (prize space)
	s.app.MockRandom.QueueIntn(2, 5)
	outcome, err := s.app.GameController.Move(s.ctx, alice.PlayerID, s.app.GameController.RollDie())
	s.Require().NoError(err)
	s.Equal(4, outcome.Move.To)

	outcome, err = s.app.GameController.Move(s.ctx, alice.PlayerID, s.app.GameController.RollDie())
	s.Require().NoError(err)
	s.Equal(10, outcome.Move.To)
	s.Equal(model.AwardGranted, outcome.Award)

	// Jump near the end and overshoot onto the final space
	_, err = s.app.GameController.SetPosition(s.ctx, alice.PlayerID, 1, 98)
	s.Require().NoError(err)
	outcome, err = s.app.GameController.Move(s.ctx, alice.PlayerID, 6)
	s.Require().NoError(err)
	s.Equal(100, outcome.Move.To)
	s.True(outcome.ReachedFinal)
	s.Equal(model.AwardGranted, outcome.Award)

	awards, err := s.app.GameController.ListPrizes(s.ctx, alice.PlayerID)
	s.Require().NoError(err)
	s.Require().Len(awards, 2)
	s.Equal(10, awards[0].SpaceID)
	s.Equal(100, awards[1].SpaceID)

	roster, err := s.app.GameController.ListRoster(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(roster, 1)
	s.Equal("Alice", roster[0].DisplayName)
	s.Equal(1, roster[0].Avatar.ID)
	s.Equal(100, roster[0].SpaceID)
}

// Test: login returns the same player after re-normalising the email
func (s *IntegrationSuite) TestRegisterThenLogin() {
	registered := s.register("bob@example.com", "Bob")

	session, err := s.app.AuthService.Login(s.ctx, "  BOB@example.com ", "secret123")
	s.Require().NoError(err)
	s.Equal(registered.PlayerID, session.PlayerID)

	_, err = s.app.AuthService.Register(s.ctx, "bob@EXAMPLE.com", "other", "Bobby")
	s.ErrorIs(err, auth.ErrEmailExists)
}

// Test: every other observer sees a move through the relay
func (s *IntegrationSuite) TestMovesReachRosterSubscribers() {
	alice := s.register("alice@example.com", "Alice")
	bob := s.register("bob@example.com", "Bob")
	updates := s.watch()

	_, err := s.app.GameController.SelectAvatar(s.ctx, alice.PlayerID, 2)
	s.Require().NoError(err)
	_, err = s.app.GameController.Move(s.ctx, bob.PlayerID, 4)
	s.Require().NoError(err)

	roster := s.awaitRoster(updates, func(r model.Roster) bool { return len(r) == 2 })
	s.Equal("Bob", roster[0].DisplayName)
	s.Equal(5, roster[0].SpaceID)
	s.Equal("Alice", roster[1].DisplayName)
	s.Equal(1, roster[1].SpaceID)
}

// Test: concurrent landings on one prize space award it once
func (s *IntegrationSuite) TestConcurrentClaimsAwardOnce() {
	alice := s.register("alice@example.com", "Alice")
	_, err := s.app.GameController.SetPosition(s.ctx, alice.PlayerID, 0, 20)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	results := make(chan model.AwardStatus, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := s.app.GameController.ClaimPrize(s.ctx, alice.PlayerID, 20)
			if err == nil {
				results <- status
			}
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for status := range results {
		if status == model.AwardGranted {
			granted++
		} else {
			s.Equal(model.AwardAlreadyAwarded, status)
		}
	}
	s.Equal(1, granted)
}

// Test: sessions expire with the clock and are swept
func (s *IntegrationSuite) TestSessionExpiry() {
	session := s.register("carol@example.com", "Carol")

	_, err := s.app.AuthService.ValidateSession(session.Token)
	s.Require().NoError(err)

	s.app.MockClock.Advance(25 * time.Hour)
	_, err = s.app.AuthService.ValidateSession(session.Token)
	s.ErrorIs(err, auth.ErrInvalidSession)
}

// Test: a board file replaces the built-in layout
func (s *IntegrationSuite) TestNewLoadsBoardFile() {
	path := s.T().TempDir() + "/board.json"
	s.Require().NoError(os.WriteFile(path, []byte(`[
		{"category":"normal"},
		{"category":"prize","prize_type":"coin","prize_description":"Coin"},
		{"category":"prize","prize_type":"grand","prize_description":"Grand Prize"}
	]`), 0o600))

	app, err := New(context.Background(), Config{BoardFile: path})
	s.Require().NoError(err)
	defer func() { _ = app.Close() }()

	s.Equal(3, app.Board.Final())
	outcome, err := app.GameController.Move(context.Background(), "player-1", 6)
	s.Require().NoError(err)
	s.Equal(3, outcome.Move.To)
}

func (s *IntegrationSuite) TestNewRejectsUnknownStorage() {
	_, err := New(context.Background(), Config{StorageType: "sqlite"})
	s.Error(err)

	_, err = New(context.Background(), Config{StorageType: StorageTypeRedis})
	s.Error(err)

	_, err = New(context.Background(), Config{StorageType: StorageTypePostgres})
	s.Error(err)
}
