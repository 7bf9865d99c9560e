package position

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/quickquack/internal/dependencies/clock"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/storage"
)

// Service owns the shared player position table
type Service struct {
	storage storage.Storage
	board   *model.Board
	avatars *model.AvatarCatalog
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new position Service
func New(
	storage storage.Storage,
	board *model.Board,
	avatars *model.AvatarCatalog,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		board:   board,
		avatars: avatars,
		clock:   clock,
		logger:  logger.With(slog.String("component", "position")),
	}
}

// Upsert stores the player's avatar and space, replacing any previous row.
// Repeating the same call converges to the same row.
func (s *Service) Upsert(ctx context.Context, playerID model.PlayerID, avatarID, spaceID int) (*model.PlayerPosition, error) {
	if _, err := s.avatars.Lookup(avatarID); err != nil {
		return nil, err
	}
	if !s.board.Contains(spaceID) {
		return nil, model.ErrInvalidSpace
	}

	pos, err := s.storage.UpsertPosition(ctx, &model.PlayerPosition{
		PlayerID:  playerID,
		AvatarID:  avatarID,
		SpaceID:   spaceID,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		s.logger.Error("failed to upsert position",
			slog.String("player_id", string(playerID)),
			slog.Int("space_id", spaceID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Debug("position updated",
		slog.String("player_id", string(playerID)),
		slog.Int("avatar_id", avatarID),
		slog.Int("space_id", spaceID),
	)
	return pos, nil
}

// Get returns the stored position for a player
func (s *Service) Get(ctx context.Context, playerID model.PlayerID) (*model.PlayerPosition, error) {
	return s.storage.GetPosition(ctx, playerID)
}

// ListRoster returns every stored position joined with display name and avatar
func (s *Service) ListRoster(ctx context.Context) (model.Roster, error) {
	positions, err := s.storage.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	roster := make(model.Roster, 0, len(positions))
	for _, pos := range positions {
		player, err := s.storage.GetPlayer(ctx, pos.PlayerID)
		if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}

		roster = append(roster, model.RosterEntry{
			PlayerID:    pos.PlayerID,
			DisplayName: player.Name(),
			Avatar:      s.avatars.LookupOrDefault(pos.AvatarID),
			SpaceID:     pos.SpaceID,
		})
	}

	roster.Sort()
	return roster, nil
}
