// Package memory implements the store interfaces in process memory. A
// single mutex serializes every transaction, which satisfies the engine's
// per-round serialization contract. Used by unit tests and by shells that
// run without Postgres, mirroring the original deployment's dual storage.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shinys129/OpUtilityBot/internal/domain"
)

type txKey struct{}

// Store holds all round data behind one lock.
type Store struct {
	mu sync.Mutex

	reservations  map[string]domain.Reservation
	channelChecks []domain.ChannelCheck
	roundState    *domain.RoundState
	bans          []domain.Ban
	warnings      []domain.Warning
	audit         []domain.AuditEntry

	nextCheckID int
}

func New() *Store {
	return &Store{reservations: make(map[string]domain.Reservation)}
}

// WithTx serializes fn behind the store lock. Nested calls run in the
// already-held transaction, matching the SQL store's context behavior.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, txKey{}))
}

func (s *Store) locked(ctx context.Context, fn func()) {
	if ctx.Value(txKey{}) != nil {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Store) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	var out []domain.Reservation
	s.locked(ctx, func() {
		for _, r := range s.reservations {
			out = append(out, r)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListReservationsByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	all, _ := s.ListReservations(ctx)
	var out []domain.Reservation
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	var (
		res domain.Reservation
		ok  bool
	)
	s.locked(ctx, func() {
		res, ok = s.reservations[id]
	})
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return res, nil
}

func (s *Store) CreateReservation(ctx context.Context, r domain.Reservation) error {
	s.locked(ctx, func() {
		s.reservations[r.ID] = r
	})
	return nil
}

func (s *Store) SetReservationSubCategory(ctx context.Context, id, subCategory string) error {
	return s.patchReservation(ctx, id, func(r *domain.Reservation) {
		r.SubCategory = subCategory
	})
}

func (s *Store) SetReservationItems(ctx context.Context, id string, items domain.ReservationItems) error {
	return s.patchReservation(ctx, id, func(r *domain.Reservation) {
		r.Slot1 = items.Slot1
		r.Slot2 = items.Slot2
		r.ExtraPick = items.ExtraPick
	})
}

func (s *Store) patchReservation(ctx context.Context, id string, patch func(*domain.Reservation)) error {
	found := false
	s.locked(ctx, func() {
		r, ok := s.reservations[id]
		if !ok {
			return
		}
		patch(&r)
		s.reservations[id] = r
		found = true
	})
	if !found {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	found := false
	s.locked(ctx, func() {
		if _, ok := s.reservations[id]; ok {
			delete(s.reservations, id)
			found = true
		}
	})
	if !found {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (s *Store) DeleteAllReservations(ctx context.Context) error {
	s.locked(ctx, func() {
		s.reservations = make(map[string]domain.Reservation)
	})
	return nil
}

func (s *Store) ListChannelChecks(ctx context.Context) ([]domain.ChannelCheck, error) {
	var out []domain.ChannelCheck
	s.locked(ctx, func() {
		out = append(out, s.channelChecks...)
	})
	return out, nil
}

func (s *Store) UpsertChannelCheck(ctx context.Context, categoryKey, channelID string, isComplete bool) error {
	s.locked(ctx, func() {
		for i := range s.channelChecks {
			if s.channelChecks[i].CategoryKey == categoryKey && s.channelChecks[i].ChannelID == channelID {
				s.channelChecks[i].IsComplete = isComplete
				s.channelChecks[i].UpdatedAt = time.Now().UTC()
				return
			}
		}
		s.nextCheckID++
		s.channelChecks = append(s.channelChecks, domain.ChannelCheck{
			ID:          strconv.Itoa(s.nextCheckID),
			CategoryKey: categoryKey,
			ChannelID:   channelID,
			IsComplete:  isComplete,
			UpdatedAt:   time.Now().UTC(),
		})
	})
	return nil
}

func (s *Store) ReplaceCategoryChannels(ctx context.Context, categoryKey string, channelIDs []string) error {
	s.locked(ctx, func() {
		kept := s.channelChecks[:0]
		for _, ch := range s.channelChecks {
			if ch.CategoryKey != categoryKey {
				kept = append(kept, ch)
			}
		}
		s.channelChecks = kept
		for _, cid := range channelIDs {
			s.nextCheckID++
			s.channelChecks = append(s.channelChecks, domain.ChannelCheck{
				ID:          strconv.Itoa(s.nextCheckID),
				CategoryKey: categoryKey,
				ChannelID:   cid,
				UpdatedAt:   time.Now().UTC(),
			})
		}
	})
	return nil
}

func (s *Store) ResetAllChannelChecks(ctx context.Context) error {
	s.locked(ctx, func() {
		for i := range s.channelChecks {
			s.channelChecks[i].IsComplete = false
		}
	})
	return nil
}

func (s *Store) GetRoundState(ctx context.Context) (*domain.RoundState, error) {
	var out *domain.RoundState
	s.locked(ctx, func() {
		if s.roundState != nil {
			state := *s.roundState
			out = &state
		}
	})
	return out, nil
}

func (s *Store) SetRoundState(ctx context.Context, state domain.RoundState) error {
	s.locked(ctx, func() {
		s.roundState = &state
	})
	return nil
}

func (s *Store) ClearRoundState(ctx context.Context) error {
	s.locked(ctx, func() {
		s.roundState = nil
	})
	return nil
}

func (s *Store) CreateBan(ctx context.Context, ban domain.Ban) error {
	s.locked(ctx, func() {
		s.bans = append(s.bans, ban)
	})
	return nil
}

func (s *Store) DeactivateBans(ctx context.Context, userID string) (int, error) {
	lifted := 0
	s.locked(ctx, func() {
		for i := range s.bans {
			if s.bans[i].UserID == userID && s.bans[i].IsActive {
				s.bans[i].IsActive = false
				lifted++
			}
		}
	})
	return lifted, nil
}

func (s *Store) IsUserBanned(ctx context.Context, userID string, now time.Time) (bool, error) {
	banned := false
	s.locked(ctx, func() {
		for _, b := range s.bans {
			if b.UserID == userID && b.IsActive && !b.Expired(now) {
				banned = true
				return
			}
		}
	})
	return banned, nil
}

func (s *Store) ListActiveBans(ctx context.Context, now time.Time) ([]domain.Ban, error) {
	var out []domain.Ban
	s.locked(ctx, func() {
		for _, b := range s.bans {
			if b.IsActive && !b.Expired(now) {
				out = append(out, b)
			}
		}
	})
	return out, nil
}

func (s *Store) CreateWarning(ctx context.Context, warning domain.Warning) error {
	s.locked(ctx, func() {
		s.warnings = append(s.warnings, warning)
	})
	return nil
}

func (s *Store) ListWarnings(ctx context.Context, userID string) ([]domain.Warning, error) {
	var out []domain.Warning
	s.locked(ctx, func() {
		for _, w := range s.warnings {
			if w.UserID == userID {
				out = append(out, w)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].WarnedAt.After(out[j].WarnedAt) })
	return out, nil
}

func (s *Store) CreateAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	s.locked(ctx, func() {
		s.audit = append(s.audit, entry)
	})
	return nil
}

func (s *Store) ListAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	s.locked(ctx, func() {
		out = append(out, s.audit...)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
