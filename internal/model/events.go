package model

import "time"

// ChangeType identifies what happened to a stored position
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
)

// PositionChange is emitted by a storage backend after a position write commits.
// Consumers treat it as a hint to re-read the full roster, never as a diff.
type PositionChange struct {
	Type      ChangeType `json:"type"`
	PlayerID  PlayerID   `json:"player_id"`
	Timestamp time.Time  `json:"timestamp"`
}
