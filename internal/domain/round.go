package domain

import "time"

// ChannelCheck records whether one channel assigned to a category has been
// confirmed complete by the external purchase listener.
type ChannelCheck struct {
	ID          string
	CategoryKey string
	ChannelID   string
	IsComplete  bool
	UpdatedAt   time.Time
}

// RoundState is the singleton state of the active organizing round. The
// board message reference is opaque here; presentation owns it.
type RoundState struct {
	OriginChannelID string
	BoardMessageID  string
	// BoosterUnlocked opens booster-gated categories for claiming.
	BoosterUnlocked bool
	AdminRoleID     string
	UpdatedAt       time.Time
}
