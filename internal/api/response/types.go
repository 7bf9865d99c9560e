package response

import (
	"time"

	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/auth"
	"github.com/mcoot/quickquack/internal/services/game"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// Space represents one board space
type Space struct {
	ID               int    `json:"id"`
	Category         string `json:"category"`
	PrizeType        string `json:"prize_type,omitempty"`
	PrizeDescription string `json:"prize_description,omitempty"`
	Description      string `json:"description,omitempty"`
}

// SpaceFromModel converts model.Space
func SpaceFromModel(s model.Space) Space {
	return Space{
		ID:               s.ID,
		Category:         string(s.Category),
		PrizeType:        s.PrizeType,
		PrizeDescription: s.PrizeDescription,
		Description:      s.Description,
	}
}

// Board is the full space table
type Board struct {
	Size   int     `json:"size"`
	Spaces []Space `json:"spaces"`
}

// BoardFromModel converts model.Board
func BoardFromModel(b *model.Board) Board {
	spaces := b.Spaces()
	result := Board{
		Size:   b.Final(),
		Spaces: make([]Space, len(spaces)),
	}
	for i, s := range spaces {
		result.Spaces[i] = SpaceFromModel(s)
	}
	return result
}

// Avatar represents a selectable avatar
type Avatar struct {
	ID    int    `json:"id"`
	Glyph string `json:"glyph"`
	Name  string `json:"name"`
}

// AvatarFromModel converts model.Avatar
func AvatarFromModel(a model.Avatar) Avatar {
	return Avatar{ID: a.ID, Glyph: a.Glyph, Name: a.Name}
}

// AvatarList is the avatar catalog
type AvatarList struct {
	Avatars []Avatar `json:"avatars"`
}

// AvatarListFromModel converts an avatar catalog
func AvatarListFromModel(c *model.AvatarCatalog) AvatarList {
	all := c.All()
	result := AvatarList{Avatars: make([]Avatar, len(all))}
	for i, a := range all {
		result.Avatars[i] = AvatarFromModel(a)
	}
	return result
}

// Position is a player's stored placement
type Position struct {
	PlayerID  string    `json:"player_id"`
	Avatar    Avatar    `json:"avatar"`
	SpaceID   int       `json:"space_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PositionFromModel converts model.PlayerPosition, resolving the avatar
func PositionFromModel(p *model.PlayerPosition, avatars *model.AvatarCatalog) Position {
	return Position{
		PlayerID:  string(p.PlayerID),
		Avatar:    AvatarFromModel(avatars.LookupOrDefault(p.AvatarID)),
		SpaceID:   p.SpaceID,
		UpdatedAt: p.UpdatedAt,
	}
}

// RosterEntry is one player in the roster
type RosterEntry struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Avatar      Avatar `json:"avatar"`
	SpaceID     int    `json:"space_id"`
}

// Roster is the full player roster
type Roster struct {
	Players []RosterEntry `json:"players"`
}

// RosterFromModel converts model.Roster
func RosterFromModel(r model.Roster) Roster {
	result := Roster{Players: make([]RosterEntry, len(r))}
	for i, e := range r {
		result.Players[i] = RosterEntry{
			PlayerID:    string(e.PlayerID),
			DisplayName: e.DisplayName,
			Avatar:      AvatarFromModel(e.Avatar),
			SpaceID:     e.SpaceID,
		}
	}
	return result
}

// MoveResult is the outcome of a move.
// PositionSaved false means the client should retry with PUT /positions/me;
// Award "failed" means it should retry with POST /prizes/claim.
type MoveResult struct {
	From          int       `json:"from"`
	Roll          int       `json:"roll"`
	To            int       `json:"to"`
	Landed        Space     `json:"landed"`
	Award         string    `json:"award"`
	ReachedFinal  bool      `json:"reached_final"`
	PositionSaved bool      `json:"position_saved"`
	Position      *Position `json:"position,omitempty"`
}

// MoveResultFromOutcome converts a game.MoveOutcome
func MoveResultFromOutcome(o *game.MoveOutcome, avatars *model.AvatarCatalog) MoveResult {
	result := MoveResult{
		From:          o.Move.From,
		Roll:          o.Move.Roll,
		To:            o.Move.To,
		Landed:        SpaceFromModel(o.Move.Landed),
		Award:         string(o.Award),
		ReachedFinal:  o.ReachedFinal,
		PositionSaved: o.Position != nil,
	}
	if o.Position != nil {
		pos := PositionFromModel(o.Position, avatars)
		result.Position = &pos
	}
	return result
}

// Prize is a collected prize
type Prize struct {
	SpaceID          int       `json:"space_id"`
	PrizeType        string    `json:"prize_type"`
	PrizeDescription string    `json:"prize_description"`
	AwardedAt        time.Time `json:"awarded_at"`
}

// PrizeList is a player's collected prizes
type PrizeList struct {
	Prizes []Prize `json:"prizes"`
}

// PrizeListFromModel converts prize awards
func PrizeListFromModel(awards []*model.PrizeAward) PrizeList {
	result := PrizeList{Prizes: make([]Prize, len(awards))}
	for i, a := range awards {
		result.Prizes[i] = Prize{
			SpaceID:          a.SpaceID,
			PrizeType:        a.PrizeType,
			PrizeDescription: a.PrizeDescription,
			AwardedAt:        a.AwardedAt,
		}
	}
	return result
}

// ClaimResult is the outcome of a prize claim
type ClaimResult struct {
	SpaceID int    `json:"space_id"`
	Award   string `json:"award"`
}

// Health is the liveness response
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
