// Package movement maps a die roll onto the board path.
package movement

import (
	"github.com/mcoot/quickquack/internal/model"
)

// Die face range
const (
	MinRoll = 1
	MaxRoll = 6
)

// ValidateRoll checks a roll is a die face
func ValidateRoll(roll int) error {
	if roll < MinRoll || roll > MaxRoll {
		return model.ErrInvalidRoll
	}
	return nil
}

// Resolve applies roll to the current space.
// Overshooting the final space lands on it; the path never wraps.
// Invalid input is rejected, never clamped into range.
func Resolve(b *model.Board, current, roll int) (model.Move, error) {
	if err := ValidateRoll(roll); err != nil {
		return model.Move{}, err
	}
	if !b.Contains(current) {
		return model.Move{}, model.ErrInvalidSpace
	}

	to := min(current+roll, b.Final())

	landed, err := b.SpaceAt(to)
	if err != nil {
		return model.Move{}, err
	}

	return model.Move{
		From:   current,
		Roll:   roll,
		To:     to,
		Landed: landed,
	}, nil
}
