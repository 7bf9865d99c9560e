package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MoveRequest is the request body for a move.
// A missing roll asks the server to roll the die.
type MoveRequest struct {
	Roll *int `json:"roll,omitempty"`
}

// SelectAvatarRequest is the request body for choosing an avatar
type SelectAvatarRequest struct {
	AvatarID *int `json:"avatar_id"`
}

// SetPositionRequest is the request body for writing a position directly
type SetPositionRequest struct {
	AvatarID *int `json:"avatar_id"`
	SpaceID  int  `json:"space_id"`
}

// ClaimPrizeRequest is the request body for claiming a prize
type ClaimPrizeRequest struct {
	SpaceID int `json:"space_id"`
}
