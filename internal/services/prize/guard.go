package prize

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/quickquack/internal/dependencies/clock"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/storage"
)

// Guard records prize awards at most once per (player, space).
// Uniqueness is enforced by the storage backend, not by a read-then-write check.
type Guard struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new prize Guard
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Guard {
	return &Guard{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "prize")),
	}
}

// AwardIfNew records the prize for space if the player does not already hold it
func (g *Guard) AwardIfNew(ctx context.Context, playerID model.PlayerID, space model.Space) (model.AwardStatus, error) {
	if !space.IsPrize() {
		return model.AwardNotApplicable, nil
	}

	award := &model.PrizeAward{
		PlayerID:         playerID,
		SpaceID:          space.ID,
		PrizeType:        space.PrizeType,
		PrizeDescription: space.PrizeDescription,
		AwardedAt:        g.clock.Now(),
	}

	err := g.storage.InsertPrizeAward(ctx, award)
	switch {
	case err == nil:
		g.logger.Info("prize awarded",
			slog.String("player_id", string(playerID)),
			slog.Int("space_id", space.ID),
			slog.String("prize_type", space.PrizeType),
		)
		return model.AwardGranted, nil
	case errors.Is(err, model.ErrPrizeAlreadyAwarded):
		return model.AwardAlreadyAwarded, nil
	default:
		if !errors.Is(err, model.ErrStorageUnavailable) {
			err = storage.Unavailable(err)
		}
		g.logger.Error("failed to record prize",
			slog.String("player_id", string(playerID)),
			slog.Int("space_id", space.ID),
			slog.String("error", err.Error()),
		)
		return model.AwardFailed, err
	}
}

// ListAwards returns the prizes a player has collected, ordered by space
func (g *Guard) ListAwards(ctx context.Context, playerID model.PlayerID) ([]*model.PrizeAward, error) {
	return g.storage.ListPrizeAwards(ctx, playerID)
}
