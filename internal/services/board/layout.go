package board

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcoot/quickquack/internal/model"
)

// DefaultSize is the number of spaces on the deployment board.
// The move clamp and the prize table both derive from the board, never from this constant directly.
const DefaultSize = 100

// Default builds the standard board: prizes on every tenth space,
// special spaces on every space ending in 5, normal spaces elsewhere.
func Default() *model.Board {
	spaces := make([]model.Space, DefaultSize)
	for i := range spaces {
		spaces[i] = defaultSpace(i + 1)
	}
	b, err := model.NewBoard(spaces)
	if err != nil {
		// The default layout is static; failing here is a programming error
		panic(err)
	}
	return b
}

func defaultSpace(id int) model.Space {
	switch {
	case id == DefaultSize:
		return model.Space{ID: id, Category: model.SpacePrize, PrizeType: "grand", PrizeDescription: "Grand Prize"}
	case id == DefaultSize/2:
		return model.Space{ID: id, Category: model.SpacePrize, PrizeType: "medium", PrizeDescription: "Medium Prize"}
	case id%10 == 0:
		return model.Space{ID: id, Category: model.SpacePrize, PrizeType: "small", PrizeDescription: "Small Prize"}
	case id%10 == 5:
		return model.Space{ID: id, Category: model.SpaceSpecial, Description: "Special Space"}
	default:
		return model.Space{ID: id, Category: model.SpaceNormal}
	}
}

// spaceDefinition is the on-disk form of a space; ids follow list order
type spaceDefinition struct {
	Category         string `json:"category"`
	PrizeType        string `json:"prize_type,omitempty"`
	PrizeDescription string `json:"prize_description,omitempty"`
	Description      string `json:"description,omitempty"`
}

// Parse builds a board from a JSON array of space definitions
func Parse(data []byte) (*model.Board, error) {
	var defs []spaceDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidBoard, err)
	}

	spaces := make([]model.Space, len(defs))
	for i, d := range defs {
		spaces[i] = model.Space{
			ID:               i + 1,
			Category:         model.SpaceCategory(d.Category),
			PrizeType:        d.PrizeType,
			PrizeDescription: d.PrizeDescription,
			Description:      d.Description,
		}
	}
	return model.NewBoard(spaces)
}

// LoadFile reads a board layout from a JSON file
func LoadFile(path string) (*model.Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
