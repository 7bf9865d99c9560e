// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite and set Storage and Ctx in their SetupTest.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/storage"
)

// Suite is a conformance suite for storage.Storage implementations
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var testTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice", CreatedAt: testTime}

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal("Alice", retrieved.DisplayName)
	s.WithinDuration(testTime, retrieved.CreatedAt, time.Second)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Registered player tests

func (s *Suite) TestCreateAndGetRegisteredPlayer() {
	rp := &model.RegisteredPlayer{
		PlayerID:     "player-1",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
	s.Require().NoError(s.Storage.CreateRegisteredPlayer(s.Ctx, rp))

	retrieved, err := s.Storage.GetRegisteredPlayerByEmail(s.Ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)
	s.Equal("hash", retrieved.PasswordHash)
}

func (s *Suite) TestGetRegisteredPlayerByEmailNotFound() {
	_, err := s.Storage.GetRegisteredPlayerByEmail(s.Ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreateRegisteredPlayerRejectsDuplicateEmail() {
	first := &model.RegisteredPlayer{PlayerID: "player-1", Email: "alice@example.com", PasswordHash: "a", CreatedAt: testTime, UpdatedAt: testTime}
	second := &model.RegisteredPlayer{PlayerID: "player-2", Email: "alice@example.com", PasswordHash: "b", CreatedAt: testTime, UpdatedAt: testTime}

	s.Require().NoError(s.Storage.CreateRegisteredPlayer(s.Ctx, first))
	s.ErrorIs(s.Storage.CreateRegisteredPlayer(s.Ctx, second), storage.ErrEmailTaken)

	retrieved, err := s.Storage.GetRegisteredPlayerByEmail(s.Ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)
}

// Position tests

func (s *Suite) TestUpsertAndGetPosition() {
	pos := &model.PlayerPosition{PlayerID: "player-1", AvatarID: 3, SpaceID: 12, UpdatedAt: testTime}

	stored, err := s.Storage.UpsertPosition(s.Ctx, pos)
	s.Require().NoError(err)
	s.Equal(12, stored.SpaceID)

	retrieved, err := s.Storage.GetPosition(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(3, retrieved.AvatarID)
	s.Equal(12, retrieved.SpaceID)
	s.WithinDuration(testTime, retrieved.UpdatedAt, time.Second)
}

func (s *Suite) TestGetPositionNotFound() {
	_, err := s.Storage.GetPosition(s.Ctx, "player-1")
	s.ErrorIs(err, model.ErrPositionNotFound)
}

func (s *Suite) TestUpsertPositionReplacesRow() {
	_, err := s.Storage.UpsertPosition(s.Ctx, &model.PlayerPosition{PlayerID: "player-1", AvatarID: 1, SpaceID: 5, UpdatedAt: testTime})
	s.Require().NoError(err)
	_, err = s.Storage.UpsertPosition(s.Ctx, &model.PlayerPosition{PlayerID: "player-1", AvatarID: 2, SpaceID: 9, UpdatedAt: testTime})
	s.Require().NoError(err)

	all, err := s.Storage.ListPositions(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(2, all[0].AvatarID)
	s.Equal(9, all[0].SpaceID)
}

func (s *Suite) TestListPositionsOrderedByPlayer() {
	for _, id := range []model.PlayerID{"player-c", "player-a", "player-b"} {
		_, err := s.Storage.UpsertPosition(s.Ctx, &model.PlayerPosition{PlayerID: id, SpaceID: 1, UpdatedAt: testTime})
		s.Require().NoError(err)
	}

	all, err := s.Storage.ListPositions(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(model.PlayerID("player-a"), all[0].PlayerID)
	s.Equal(model.PlayerID("player-c"), all[2].PlayerID)
}

func (s *Suite) TestConcurrentUpsertsSamePlayerLeaveOneRow() {
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Storage.UpsertPosition(s.Ctx, &model.PlayerPosition{PlayerID: "player-1", SpaceID: i + 1, UpdatedAt: testTime})
			s.NoError(err)
		}()
	}
	wg.Wait()

	all, err := s.Storage.ListPositions(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

// Prize tests

func (s *Suite) TestInsertPrizeAwardOncePerSpace() {
	award := &model.PrizeAward{PlayerID: "player-1", SpaceID: 10, PrizeType: "small", PrizeDescription: "Small Prize", AwardedAt: testTime}

	s.Require().NoError(s.Storage.InsertPrizeAward(s.Ctx, award))
	s.ErrorIs(s.Storage.InsertPrizeAward(s.Ctx, award), model.ErrPrizeAlreadyAwarded)

	awards, err := s.Storage.ListPrizeAwards(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Require().Len(awards, 1)
	s.Equal("Small Prize", awards[0].PrizeDescription)
}

func (s *Suite) TestListPrizeAwardsOrderedBySpace() {
	for _, space := range []int{30, 10, 20} {
		award := &model.PrizeAward{PlayerID: "player-1", SpaceID: space, PrizeType: "small", PrizeDescription: "Small Prize", AwardedAt: testTime}
		s.Require().NoError(s.Storage.InsertPrizeAward(s.Ctx, award))
	}
	other := &model.PrizeAward{PlayerID: "player-2", SpaceID: 10, PrizeType: "small", PrizeDescription: "Small Prize", AwardedAt: testTime}
	s.Require().NoError(s.Storage.InsertPrizeAward(s.Ctx, other))

	awards, err := s.Storage.ListPrizeAwards(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Require().Len(awards, 3)
	s.Equal([]int{10, 20, 30}, []int{awards[0].SpaceID, awards[1].SpaceID, awards[2].SpaceID})
}

func (s *Suite) TestListPrizeAwardsEmpty() {
	awards, err := s.Storage.ListPrizeAwards(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Empty(awards)
}

func (s *Suite) TestConcurrentPrizeInsertsYieldOneRow() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Storage.InsertPrizeAward(s.Ctx, &model.PrizeAward{PlayerID: "player-1", SpaceID: 50, PrizeType: "medium", PrizeDescription: "Medium Prize", AwardedAt: testTime})
			if err == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
				return
			}
			s.ErrorIs(err, model.ErrPrizeAlreadyAwarded)
		}()
	}
	wg.Wait()

	s.Equal(1, inserted)
}

// Change feed tests

func (s *Suite) TestWatchPositionsReportsInsertThenUpdate() {
	ctx, cancel := context.WithCancel(s.Ctx)
	defer cancel()

	changes, err := s.Storage.WatchPositions(ctx)
	s.Require().NoError(err)

	_, err = s.Storage.UpsertPosition(s.Ctx, &model.PlayerPosition{PlayerID: "player-1", SpaceID: 1, UpdatedAt: testTime})
	s.Require().NoError(err)
	first := s.receive(changes)
	s.Equal(model.ChangeInsert, first.Type)
	s.Equal(model.PlayerID("player-1"), first.PlayerID)

	_, err = s.Storage.UpsertPosition(s.Ctx, &model.PlayerPosition{PlayerID: "player-1", SpaceID: 2, UpdatedAt: testTime})
	s.Require().NoError(err)
	second := s.receive(changes)
	s.Equal(model.ChangeUpdate, second.Type)
}

func (s *Suite) TestWatchPositionsClosesOnCancel() {
	ctx, cancel := context.WithCancel(s.Ctx)
	changes, err := s.Storage.WatchPositions(ctx)
	s.Require().NoError(err)

	cancel()

	s.Eventually(func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *Suite) receive(changes <-chan model.PositionChange) model.PositionChange {
	select {
	case change, ok := <-changes:
		s.Require().True(ok, "change feed closed")
		return change
	case <-time.After(2 * time.Second):
		s.FailNow(fmt.Sprintf("no change received within %s", 2*time.Second))
		return model.PositionChange{}
	}
}
