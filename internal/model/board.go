package model

import "fmt"

// SpaceCategory classifies a space on the path
type SpaceCategory string

const (
	SpaceNormal  SpaceCategory = "normal"
	SpacePrize   SpaceCategory = "prize"
	SpaceSpecial SpaceCategory = "special"
)

// Valid reports whether the category is one of the known categories
func (c SpaceCategory) Valid() bool {
	switch c {
	case SpaceNormal, SpacePrize, SpaceSpecial:
		return true
	}
	return false
}

// Space is one addressable position on the path
type Space struct {
	ID               int
	Category         SpaceCategory
	PrizeType        string // set iff Category is SpacePrize
	PrizeDescription string // set iff Category is SpacePrize
	Description      string // optional label for special spaces
}

// IsPrize returns true if landing on the space awards a prize
func (s Space) IsPrize() bool {
	return s.Category == SpacePrize
}

// Board is the immutable, strictly linear path of spaces 1..N
type Board struct {
	spaces []Space // spaces[i].ID == i+1
}

// NewBoard validates the spaces and builds a board.
// Ids must run 1..N in order and only prize spaces may carry a prize.
func NewBoard(spaces []Space) (*Board, error) {
	if len(spaces) == 0 {
		return nil, fmt.Errorf("%w: no spaces", ErrInvalidBoard)
	}
	copied := make([]Space, len(spaces))
	for i, s := range spaces {
		if s.ID != i+1 {
			return nil, fmt.Errorf("%w: space at index %d has id %d, want %d", ErrInvalidBoard, i, s.ID, i+1)
		}
		if !s.Category.Valid() {
			return nil, fmt.Errorf("%w: space %d has unknown category %q", ErrInvalidBoard, s.ID, s.Category)
		}
		hasPrize := s.PrizeDescription != ""
		if s.IsPrize() != hasPrize {
			return nil, fmt.Errorf("%w: space %d prize description must be set iff it is a prize space", ErrInvalidBoard, s.ID)
		}
		if !s.IsPrize() && s.PrizeType != "" {
			return nil, fmt.Errorf("%w: space %d has a prize type but is not a prize space", ErrInvalidBoard, s.ID)
		}
		copied[i] = s
	}
	return &Board{spaces: copied}, nil
}

// SpaceAt returns the space with the given id
func (b *Board) SpaceAt(id int) (Space, error) {
	if id < 1 || id > len(b.spaces) {
		return Space{}, ErrSpaceNotFound
	}
	return b.spaces[id-1], nil
}

// Final returns the id of the last space
func (b *Board) Final() int {
	return len(b.spaces)
}

// Contains returns true if id is a space on the board
func (b *Board) Contains(id int) bool {
	return id >= 1 && id <= len(b.spaces)
}

// Spaces returns a copy of all spaces in path order
func (b *Board) Spaces() []Space {
	result := make([]Space, len(b.spaces))
	copy(result, b.spaces)
	return result
}

// PrizeSpaces returns the prize spaces in path order
func (b *Board) PrizeSpaces() []Space {
	var result []Space
	for _, s := range b.spaces {
		if s.IsPrize() {
			result = append(result, s)
		}
	}
	return result
}

// Move is the outcome of applying a die roll to a position
type Move struct {
	From   int
	Roll   int
	To     int
	Landed Space
}

// Reached returns true if the move ended on the given final space
func (m Move) Reached(final int) bool {
	return m.To == final
}
