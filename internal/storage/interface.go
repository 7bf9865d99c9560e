package storage

import (
	"context"

	"github.com/mcoot/quickquack/internal/model"
)

// Storage defines the interface for data persistence.
// Backends enforce uniqueness themselves: one position per player,
// one prize award per (player, space), one registration per email.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Registered player operations
	// CreateRegisteredPlayer returns ErrEmailTaken if the email is already registered
	CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayerByEmail(ctx context.Context, email string) (*model.RegisteredPlayer, error)

	// Position operations
	// UpsertPosition inserts or replaces the single row for pos.PlayerID
	UpsertPosition(ctx context.Context, pos *model.PlayerPosition) (*model.PlayerPosition, error)
	GetPosition(ctx context.Context, playerID model.PlayerID) (*model.PlayerPosition, error)
	ListPositions(ctx context.Context) ([]*model.PlayerPosition, error)

	// Prize operations
	// InsertPrizeAward returns model.ErrPrizeAlreadyAwarded if the pair exists
	InsertPrizeAward(ctx context.Context, award *model.PrizeAward) error
	ListPrizeAwards(ctx context.Context, playerID model.PlayerID) ([]*model.PrizeAward, error)

	// WatchPositions streams position changes until ctx is cancelled.
	// The channel is closed when the watch ends.
	WatchPositions(ctx context.Context) (<-chan model.PositionChange, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	Close() error
}
