package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shinys129/OpUtilityBot/internal/clock"
	"github.com/shinys129/OpUtilityBot/internal/domain"
)

var (
	ErrAlreadyBanned  = errors.New("user already banned")
	ErrNotBanned      = errors.New("user is not banned")
	ErrReasonRequired = errors.New("reason required")
)

// Store is the persistence surface for bans, warnings, and the audit log.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBan(ctx context.Context, ban domain.Ban) error
	DeactivateBans(ctx context.Context, userID string) (int, error)
	IsUserBanned(ctx context.Context, userID string, now time.Time) (bool, error)
	ListActiveBans(ctx context.Context, now time.Time) ([]domain.Ban, error)
	CreateWarning(ctx context.Context, warning domain.Warning) error
	ListWarnings(ctx context.Context, userID string) ([]domain.Warning, error)
	CreateAuditEntry(ctx context.Context, entry domain.AuditEntry) error
	ListAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// Service handles moderation records. Permission checks happen outside; the
// adminID passed in is already authorized.
type Service struct {
	store Store
	clock clock.Clock
}

func NewService(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

type BanInput struct {
	UserID  string
	Reason  string
	AdminID string
	// Duration of zero means permanent.
	Duration time.Duration
}

// Ban blocks a user from claiming, optionally for a limited duration, and
// records the action in the audit log.
func (s *Service) Ban(ctx context.Context, in BanInput) (domain.Ban, error) {
	if in.Reason == "" {
		return domain.Ban{}, ErrReasonRequired
	}
	now := s.clock.Now()
	ban := domain.Ban{
		ID:       uuid.NewString(),
		UserID:   in.UserID,
		Reason:   in.Reason,
		BannedBy: in.AdminID,
		IsActive: true,
		BannedAt: now,
	}
	if in.Duration > 0 {
		ban.ExpiresAt = now.Add(in.Duration)
	}

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		banned, err := s.store.IsUserBanned(txCtx, in.UserID, now)
		if err != nil {
			return err
		}
		if banned {
			return ErrAlreadyBanned
		}
		if err := s.store.CreateBan(txCtx, ban); err != nil {
			return err
		}
		return s.store.CreateAuditEntry(txCtx, domain.AuditEntry{
			ID:           uuid.NewString(),
			AdminID:      in.AdminID,
			Action:       "ban",
			TargetUserID: in.UserID,
			Details:      in.Reason,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return domain.Ban{}, err
	}
	return ban, nil
}

// Unban lifts every active ban on the user.
func (s *Service) Unban(ctx context.Context, userID, adminID string) error {
	now := s.clock.Now()
	return s.store.WithTx(ctx, func(txCtx context.Context) error {
		lifted, err := s.store.DeactivateBans(txCtx, userID)
		if err != nil {
			return err
		}
		if lifted == 0 {
			return ErrNotBanned
		}
		return s.store.CreateAuditEntry(txCtx, domain.AuditEntry{
			ID:           uuid.NewString(),
			AdminID:      adminID,
			Action:       "unban",
			TargetUserID: userID,
			CreatedAt:    now,
		})
	})
}

// IsBanned reports whether the user currently has an unexpired active ban.
func (s *Service) IsBanned(ctx context.Context, userID string) (bool, error) {
	return s.store.IsUserBanned(ctx, userID, s.clock.Now())
}

// ActiveBans lists bans that are active and unexpired.
func (s *Service) ActiveBans(ctx context.Context) ([]domain.Ban, error) {
	return s.store.ListActiveBans(ctx, s.clock.Now())
}

// Warn records a warning against the user; warnings never block claims.
func (s *Service) Warn(ctx context.Context, userID, reason, adminID string) (domain.Warning, error) {
	if reason == "" {
		return domain.Warning{}, ErrReasonRequired
	}
	now := s.clock.Now()
	warning := domain.Warning{
		ID:       uuid.NewString(),
		UserID:   userID,
		Reason:   reason,
		WarnedBy: adminID,
		WarnedAt: now,
	}
	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateWarning(txCtx, warning); err != nil {
			return err
		}
		return s.store.CreateAuditEntry(txCtx, domain.AuditEntry{
			ID:           uuid.NewString(),
			AdminID:      adminID,
			Action:       "warn",
			TargetUserID: userID,
			Details:      reason,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return domain.Warning{}, err
	}
	return warning, nil
}

// Warnings lists a user's warnings, newest first.
func (s *Service) Warnings(ctx context.Context, userID string) ([]domain.Warning, error) {
	return s.store.ListWarnings(ctx, userID)
}

const defaultAuditLimit = 50

// AuditLog returns the most recent admin actions.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.store.ListAuditEntries(ctx, limit)
}
