package redis

import (
	"fmt"

	"github.com/mcoot/quickquack/internal/model"
)

// Key generation functions for each entity type.
// All keys are namespaced by the configured prefix.

type keys struct {
	prefix string
}

// player returns the key for a Player
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// registeredPlayer returns the key for a RegisteredPlayer
func (k keys) registeredPlayer(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", k.prefix, playerID)
}

// emailIndex returns the key for the email -> player_id index
func (k keys) emailIndex(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", k.prefix, email)
}

// positions returns the HASH of player_id -> position
func (k keys) positions() string {
	return fmt.Sprintf("%s:positions", k.prefix)
}

// prizes returns the HASH of space_id -> award for one player
func (k keys) prizes(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:prizes:%s", k.prefix, playerID)
}

// positionChannel returns the pub/sub channel for position changes
func (k keys) positionChannel() string {
	return fmt.Sprintf("%s:events:positions", k.prefix)
}
