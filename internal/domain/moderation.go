package domain

import "time"

// Ban blocks a user from the reservation flow, optionally until ExpiresAt.
type Ban struct {
	ID       string
	UserID   string
	Reason   string
	BannedBy string
	// ExpiresAt is zero for a permanent ban.
	ExpiresAt time.Time
	IsActive  bool
	BannedAt  time.Time
}

// Expired reports whether a temporary ban has lapsed at the given instant.
func (b Ban) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !b.ExpiresAt.After(now)
}

// Warning is an admin note against a user; warnings never block claims.
type Warning struct {
	ID       string
	UserID   string
	Reason   string
	WarnedBy string
	WarnedAt time.Time
}

// AuditEntry records one admin action for the moderation log.
type AuditEntry struct {
	ID           string
	AdminID      string
	Action       string
	TargetUserID string
	Details      string
	CreatedAt    time.Time
}
