package model

import (
	"sort"
	"time"
)

// PlayerPosition is a player's placement on the board. One per player.
type PlayerPosition struct {
	PlayerID  PlayerID
	AvatarID  int
	SpaceID   int
	UpdatedAt time.Time
}

// RosterEntry is a position joined with the player's display name and avatar
type RosterEntry struct {
	PlayerID    PlayerID
	DisplayName string
	Avatar      Avatar
	SpaceID     int
}

// Roster is the full set of players with their current avatar and space
type Roster []RosterEntry

// Sort orders the roster by space (furthest first), then display name, then id
func (r Roster) Sort() {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].SpaceID != r[j].SpaceID {
			return r[i].SpaceID > r[j].SpaceID
		}
		if r[i].DisplayName != r[j].DisplayName {
			return r[i].DisplayName < r[j].DisplayName
		}
		return r[i].PlayerID < r[j].PlayerID
	})
}

// Find returns the entry for a player, or nil
func (r Roster) Find(id PlayerID) *RosterEntry {
	for i := range r {
		if r[i].PlayerID == id {
			return &r[i]
		}
	}
	return nil
}
