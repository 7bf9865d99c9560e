package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// UnknownPlayerName is shown for positions whose player record is missing
const UnknownPlayerName = "Unknown Player"

// Player is a registered participant as other players see them
type Player struct {
	ID          PlayerID
	DisplayName string
	CreatedAt   time.Time
}

// Name returns the display name, or UnknownPlayerName for a missing or unnamed player
func (p *Player) Name() string {
	if p == nil || p.DisplayName == "" {
		return UnknownPlayerName
	}
	return p.DisplayName
}

// RegisteredPlayer holds the login credentials for a Player.
// It is never returned by the API.
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Email        string // trimmed and lower-cased, unique
	PasswordHash string // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
