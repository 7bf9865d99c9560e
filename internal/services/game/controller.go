package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/quickquack/internal/dependencies/random"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/movement"
	"github.com/mcoot/quickquack/internal/services/position"
	"github.com/mcoot/quickquack/internal/services/prize"
)

// StartSpace is where a player without a stored position begins
const StartSpace = 1

// MoveOutcome is the result of a resolved move.
// Position is nil if the position write failed; Award is AwardFailed if the
// award write failed. Clients retry those with SetPosition and ClaimPrize.
type MoveOutcome struct {
	Move         model.Move
	Award        model.AwardStatus
	Position     *model.PlayerPosition
	ReachedFinal bool
}

// Controller orchestrates a player's turn: roll, resolve, award, persist
type Controller struct {
	board     *model.Board
	avatars   *model.AvatarCatalog
	positions *position.Service
	prizes    *prize.Guard
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	board *model.Board,
	avatars *model.AvatarCatalog,
	positions *position.Service,
	prizes *prize.Guard,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		board:     board,
		avatars:   avatars,
		positions: positions,
		prizes:    prizes,
		random:    random,
		logger:    logger.With(slog.String("component", "game")),
	}
}

// Board returns the board in play
func (c *Controller) Board() *model.Board {
	return c.board
}

// Avatars returns the avatar catalog
func (c *Controller) Avatars() *model.AvatarCatalog {
	return c.avatars
}

// RollDie rolls the server's die
func (c *Controller) RollDie() int {
	return c.random.Intn(movement.MaxRoll) + movement.MinRoll
}

// Move advances the player by roll, which must be 1-6.
// Once the move resolves the outcome is always returned; award and
// position write failures are joined into the error.
func (c *Controller) Move(ctx context.Context, playerID model.PlayerID, roll int) (*MoveOutcome, error) {
	if err := movement.ValidateRoll(roll); err != nil {
		return nil, err
	}

	current, avatarID, err := c.current(ctx, playerID)
	if err != nil {
		return nil, err
	}

	move, err := movement.Resolve(c.board, current, roll)
	if err != nil {
		return nil, err
	}

	award, awardErr := c.prizes.AwardIfNew(ctx, playerID, move.Landed)
	pos, posErr := c.positions.Upsert(ctx, playerID, avatarID, move.To)

	outcome := &MoveOutcome{
		Move:         move,
		Award:        award,
		Position:     pos,
		ReachedFinal: move.Reached(c.board.Final()),
	}

	c.logger.Info("player moved",
		slog.String("player_id", string(playerID)),
		slog.Int("from", move.From),
		slog.Int("roll", move.Roll),
		slog.Int("to", move.To),
		slog.String("award", string(award)),
	)

	return outcome, errors.Join(awardErr, posErr)
}

// SelectAvatar changes the player's avatar, keeping their current space
func (c *Controller) SelectAvatar(ctx context.Context, playerID model.PlayerID, avatarID int) (*model.PlayerPosition, error) {
	if _, err := c.avatars.Lookup(avatarID); err != nil {
		return nil, err
	}

	current, _, err := c.current(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return c.positions.Upsert(ctx, playerID, avatarID, current)
}

// SetPosition writes the player's avatar and space directly
func (c *Controller) SetPosition(ctx context.Context, playerID model.PlayerID, avatarID, spaceID int) (*model.PlayerPosition, error) {
	return c.positions.Upsert(ctx, playerID, avatarID, spaceID)
}

// ClaimPrize records the prize on the space the player currently occupies
func (c *Controller) ClaimPrize(ctx context.Context, playerID model.PlayerID, spaceID int) (model.AwardStatus, error) {
	space, err := c.board.SpaceAt(spaceID)
	if err != nil {
		return model.AwardNotApplicable, err
	}
	if !space.IsPrize() {
		return model.AwardNotApplicable, model.ErrNotPrizeSpace
	}

	pos, err := c.positions.Get(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPositionNotFound) {
			return model.AwardNotApplicable, model.ErrNotOnSpace
		}
		return model.AwardNotApplicable, err
	}
	if pos.SpaceID != spaceID {
		return model.AwardNotApplicable, model.ErrNotOnSpace
	}

	return c.prizes.AwardIfNew(ctx, playerID, space)
}

// GetPosition returns the player's stored position
func (c *Controller) GetPosition(ctx context.Context, playerID model.PlayerID) (*model.PlayerPosition, error) {
	return c.positions.Get(ctx, playerID)
}

// ListPrizes returns the prizes the player has collected
func (c *Controller) ListPrizes(ctx context.Context, playerID model.PlayerID) ([]*model.PrizeAward, error) {
	return c.prizes.ListAwards(ctx, playerID)
}

// ListRoster returns every player's position
func (c *Controller) ListRoster(ctx context.Context) (model.Roster, error) {
	return c.positions.ListRoster(ctx)
}

// current returns the player's space and avatar, defaulting new players
// to the start space and the catalog's first avatar
func (c *Controller) current(ctx context.Context, playerID model.PlayerID) (int, int, error) {
	pos, err := c.positions.Get(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPositionNotFound) {
			return StartSpace, c.avatars.Default().ID, nil
		}
		return 0, 0, err
	}
	return pos.SpaceID, c.avatars.LookupOrDefault(pos.AvatarID).ID, nil
}
