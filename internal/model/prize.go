package model

import "time"

// PrizeAward records that a player collected a space's prize.
// (PlayerID, SpaceID) is unique.
type PrizeAward struct {
	PlayerID         PlayerID
	SpaceID          int
	PrizeType        string
	PrizeDescription string
	AwardedAt        time.Time
}

// AwardStatus is the outcome of an award attempt
type AwardStatus string

const (
	AwardNotApplicable  AwardStatus = "none"
	AwardGranted        AwardStatus = "awarded"
	AwardAlreadyAwarded AwardStatus = "already_awarded"
	AwardFailed         AwardStatus = "failed"
)
