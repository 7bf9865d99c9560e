package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrInvalidRoll   = errors.New("roll must be between 1 and 6")
	ErrInvalidSpace  = errors.New("space is outside the board")
	ErrInvalidAvatar = errors.New("avatar is not in the catalog")
	ErrInvalidBoard  = errors.New("invalid board layout")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Board errors
	ErrSpaceNotFound = errors.New("space not found")

	// Position errors
	ErrPositionNotFound = errors.New("position not found")

	// Prize errors
	ErrPrizeAlreadyAwarded = errors.New("prize already awarded")
	ErrNotOnSpace          = errors.New("player is not on this space")
	ErrNotPrizeSpace       = errors.New("space has no prize")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)
