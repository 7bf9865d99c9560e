package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quickquack/internal/dependencies/mocks"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/board"
	"github.com/mcoot/quickquack/internal/services/position"
	"github.com/mcoot/quickquack/internal/services/prize"
	"github.com/mcoot/quickquack/internal/storage"
	"github.com/mcoot/quickquack/internal/storage/memory"
	"github.com/mcoot/quickquack/internal/testutil"
)

// brokenPrizes fails every prize insert
type brokenPrizes struct {
	*memory.Storage
}

func (b *brokenPrizes) InsertPrizeAward(ctx context.Context, award *model.PrizeAward) error {
	return errors.New("prize table offline")
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = s.newController(s.storage)
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController(store storage.Storage) *Controller {
	catalog, err := model.NewAvatarCatalog(model.DefaultAvatars())
	s.Require().NoError(err)
	b := board.Default()
	logger := testutil.NopLogger()
	return NewController(
		b,
		catalog,
		position.New(store, b, catalog, s.clock, logger),
		prize.New(store, s.clock, logger),
		s.random,
		logger,
	)
}

func (s *ControllerSuite) place(playerID model.PlayerID, avatarID, space int) {
	_, err := s.controller.SetPosition(s.ctx, playerID, avatarID, space)
	s.Require().NoError(err)
}

// Move tests

func (s *ControllerSuite) TestFirstMoveStartsFromSpaceOne() {
	outcome, err := s.controller.Move(s.ctx, "player-1", 3)
	s.Require().NoError(err)

	s.Equal(1, outcome.Move.From)
	s.Equal(4, outcome.Move.To)
	s.Equal(model.AwardNotApplicable, outcome.Award)
	s.Require().NotNil(outcome.Position)
	s.Equal(0, outcome.Position.AvatarID)
	s.Equal(4, outcome.Position.SpaceID)
}

func (s *ControllerSuite) TestMoveKeepsAvatar() {
	s.place("player-1", 7, 20)

	outcome, err := s.controller.Move(s.ctx, "player-1", 2)
	s.Require().NoError(err)

	s.Equal(22, outcome.Move.To)
	s.Equal(7, outcome.Position.AvatarID)
}

func (s *ControllerSuite) TestOvershootAwardsGrandPrize() {
	s.place("player-1", 0, 97)

	outcome, err := s.controller.Move(s.ctx, "player-1", 6)
	s.Require().NoError(err)

	s.Equal(100, outcome.Move.To)
	s.True(outcome.ReachedFinal)
	s.Equal(model.AwardGranted, outcome.Award)

	awards, err := s.controller.ListPrizes(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Require().Len(awards, 1)
	s.Equal("Grand Prize", awards[0].PrizeDescription)
}

func (s *ControllerSuite) TestLandingOnPrizeTwiceAwardsOnce() {
	s.place("player-1", 0, 7)
	outcome, err := s.controller.Move(s.ctx, "player-1", 3)
	s.Require().NoError(err)
	s.Equal(model.AwardGranted, outcome.Award)

	s.place("player-1", 0, 7)
	outcome, err = s.controller.Move(s.ctx, "player-1", 3)
	s.Require().NoError(err)
	s.Equal(model.AwardAlreadyAwarded, outcome.Award)

	awards, err := s.controller.ListPrizes(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Len(awards, 1)
}

func (s *ControllerSuite) TestServerRoll() {
	s.random.QueueIntn(4)

	outcome, err := s.controller.Move(s.ctx, "player-1", s.controller.RollDie())
	s.Require().NoError(err)

	s.Equal(5, outcome.Move.Roll)
	s.Equal(6, outcome.Move.To)
}

func (s *ControllerSuite) TestMoveRejectsZeroRoll() {
	_, err := s.controller.Move(s.ctx, "player-1", 0)
	s.ErrorIs(err, model.ErrInvalidRoll)
}

func (s *ControllerSuite) TestMoveRejectsInvalidRoll() {
	_, err := s.controller.Move(s.ctx, "player-1", 7)
	s.ErrorIs(err, model.ErrInvalidRoll)

	_, err = s.controller.GetPosition(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrPositionNotFound)
}

func (s *ControllerSuite) TestAwardFailureStillWritesPosition() {
	broken := &brokenPrizes{Storage: s.storage}
	controller := s.newController(broken)
	_, err := controller.SetPosition(s.ctx, "player-1", 0, 8)
	s.Require().NoError(err)

	outcome, err := controller.Move(s.ctx, "player-1", 2)
	s.ErrorIs(err, model.ErrStorageUnavailable)
	s.Require().NotNil(outcome)
	s.Equal(model.AwardFailed, outcome.Award)
	s.Require().NotNil(outcome.Position)
	s.Equal(10, outcome.Position.SpaceID)

	pos, err := s.storage.GetPosition(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(10, pos.SpaceID)
}

// SelectAvatar tests

func (s *ControllerSuite) TestSelectAvatarForNewPlayer() {
	pos, err := s.controller.SelectAvatar(s.ctx, "player-1", 5)
	s.Require().NoError(err)

	s.Equal(5, pos.AvatarID)
	s.Equal(StartSpace, pos.SpaceID)
}

func (s *ControllerSuite) TestSelectAvatarKeepsSpace() {
	s.place("player-1", 0, 33)

	pos, err := s.controller.SelectAvatar(s.ctx, "player-1", 9)
	s.Require().NoError(err)

	s.Equal(9, pos.AvatarID)
	s.Equal(33, pos.SpaceID)
}

func (s *ControllerSuite) TestSelectAvatarRejectsUnknown() {
	_, err := s.controller.SelectAvatar(s.ctx, "player-1", 15)
	s.ErrorIs(err, model.ErrInvalidAvatar)
}

// SetPosition tests

func (s *ControllerSuite) TestSetPositionIsIdempotent() {
	s.place("player-1", 2, 40)
	s.place("player-1", 2, 40)

	roster, err := s.controller.ListRoster(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(roster, 1)
	s.Equal(40, roster[0].SpaceID)
}

// ClaimPrize tests

func (s *ControllerSuite) TestClaimPrizeOnCurrentSpace() {
	s.place("player-1", 0, 50)

	status, err := s.controller.ClaimPrize(s.ctx, "player-1", 50)
	s.Require().NoError(err)
	s.Equal(model.AwardGranted, status)

	status, err = s.controller.ClaimPrize(s.ctx, "player-1", 50)
	s.Require().NoError(err)
	s.Equal(model.AwardAlreadyAwarded, status)
}

func (s *ControllerSuite) TestClaimPrizeRequiresBeingOnSpace() {
	s.place("player-1", 0, 51)

	_, err := s.controller.ClaimPrize(s.ctx, "player-1", 50)
	s.ErrorIs(err, model.ErrNotOnSpace)
}

func (s *ControllerSuite) TestClaimPrizeWithoutPosition() {
	_, err := s.controller.ClaimPrize(s.ctx, "player-1", 10)
	s.ErrorIs(err, model.ErrNotOnSpace)
}

func (s *ControllerSuite) TestClaimPrizeRejectsNonPrizeSpace() {
	s.place("player-1", 0, 4)

	_, err := s.controller.ClaimPrize(s.ctx, "player-1", 4)
	s.ErrorIs(err, model.ErrNotPrizeSpace)
}

func (s *ControllerSuite) TestClaimPrizeRejectsUnknownSpace() {
	_, err := s.controller.ClaimPrize(s.ctx, "player-1", 500)
	s.ErrorIs(err, model.ErrSpaceNotFound)
}
