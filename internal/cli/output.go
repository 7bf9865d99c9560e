package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Board:
		o.printBoard(v)
	case AvatarList:
		o.printAvatarList(v)
	case Position:
		o.printPosition(v)
	case Roster:
		o.printRoster(v)
	case MoveResult:
		o.printMoveResult(v)
	case PrizeList:
		o.printPrizeList(v)
	case ClaimResult:
		o.printClaimResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// Space response type
type Space struct {
	ID               int    `json:"id"`
	Category         string `json:"category"`
	PrizeType        string `json:"prize_type,omitempty"`
	PrizeDescription string `json:"prize_description,omitempty"`
	Description      string `json:"description,omitempty"`
}

// Board response type
type Board struct {
	Size   int     `json:"size"`
	Spaces []Space `json:"spaces"`
}

// Avatar response type
type Avatar struct {
	ID    int    `json:"id"`
	Glyph string `json:"glyph"`
	Name  string `json:"name"`
}

// AvatarList response type
type AvatarList struct {
	Avatars []Avatar `json:"avatars"`
}

// Position response type
type Position struct {
	PlayerID string `json:"player_id"`
	Avatar   Avatar `json:"avatar"`
	SpaceID  int    `json:"space_id"`
}

// RosterEntry response type
type RosterEntry struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Avatar      Avatar `json:"avatar"`
	SpaceID     int    `json:"space_id"`
}

// Roster response type
type Roster struct {
	Players []RosterEntry `json:"players"`
}

// MoveResult response type
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

// Prize response type
type Prize struct {
	SpaceID          int    `json:"space_id"`
	PrizeType        string `json:"prize_type"`
	PrizeDescription string `json:"prize_description"`
}

// PrizeList response type
type PrizeList struct {
	Prizes []Prize `json:"prizes"`
}

// ClaimResult response type
type ClaimResult struct {
	SpaceID int    `json:"space_id"`
	Award   string `json:"award"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

// spaceLabel renders a space as a short cell for the board grid
func spaceLabel(s Space) string {
	switch s.Category {
	case "prize":
		return "$"
	case "special":
		return "*"
	default:
		return "."
	}
}

func (o *Output) printBoard(b Board) {
	fmt.Printf("Board: %d spaces ($ prize, * special)\n", b.Size)

	// Ten spaces per row
	for i := 0; i < len(b.Spaces); i += 10 {
		end := min(i+10, len(b.Spaces))
		cells := make([]string, 0, end-i)
		for _, s := range b.Spaces[i:end] {
			cells = append(cells, spaceLabel(s))
		}
		fmt.Printf(" %3d-%-3d %s\n", b.Spaces[i].ID, b.Spaces[end-1].ID, strings.Join(cells, " "))
	}

	fmt.Println("\nPrizes:")
	for _, s := range b.Spaces {
		if s.Category == "prize" {
			fmt.Printf("  %3d: %s\n", s.ID, s.PrizeDescription)
		}
	}
}

func (o *Output) printAvatarList(l AvatarList) {
	for _, a := range l.Avatars {
		fmt.Printf("  %2d %s %s\n", a.ID, a.Glyph, a.Name)
	}
}

func (o *Output) printPosition(p Position) {
	fmt.Printf("Avatar: %s %s\n", p.Avatar.Glyph, p.Avatar.Name)
	fmt.Printf("Space: %d\n", p.SpaceID)
}

func (o *Output) printRoster(r Roster) {
	if len(r.Players) == 0 {
		fmt.Println("No players on the board")
		return
	}
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, e := range r.Players {
		fmt.Printf("  %3d %s %s\n", e.SpaceID, e.Avatar.Glyph, e.DisplayName)
	}
}

func (o *Output) printMoveResult(m MoveResult) {
	fmt.Printf("Rolled %d: %d -> %d\n", m.Roll, m.From, m.To)

	switch m.Award {
	case "awarded":
		fmt.Printf("You won: %s\n", m.Landed.PrizeDescription)
	case "already_awarded":
		fmt.Printf("Already won: %s\n", m.Landed.PrizeDescription)
	case "failed":
		fmt.Printf("Prize not recorded; retry with: qqgame claim %d\n", m.To)
	}

	if !m.PositionSaved {
		fmt.Printf("Position not saved; retry with: qqgame position set --avatar <id> --space %d\n", m.To)
	}
	if m.ReachedFinal {
		fmt.Println("You reached the final space!")
	}
}

func (o *Output) printPrizeList(l PrizeList) {
	if len(l.Prizes) == 0 {
		fmt.Println("No prizes yet")
		return
	}
	for _, p := range l.Prizes {
		fmt.Printf("  %3d: %s\n", p.SpaceID, p.PrizeDescription)
	}
}

func (o *Output) printClaimResult(c ClaimResult) {
	fmt.Printf("Space %d: %s\n", c.SpaceID, c.Award)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status:  %s\n", h.Status)
	fmt.Printf("Storage: %s\n", h.Storage)
}
