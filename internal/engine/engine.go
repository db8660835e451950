package engine

import (
	"context"
	"time"

	"github.com/shinys129/OpUtilityBot/internal/clock"
	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// Store is the persistence surface the engine needs. Every operation runs
// inside WithTx; implementations must serialize the read-decide-write
// sequence (row locks for SQL stores, a mutex for in-memory ones) so that
// two concurrent claims never both pass a capacity check.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	ListReservations(ctx context.Context) ([]domain.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	CreateReservation(ctx context.Context, r domain.Reservation) error
	SetReservationSubCategory(ctx context.Context, id, subCategory string) error
	SetReservationItems(ctx context.Context, id string, items domain.ReservationItems) error
	DeleteReservation(ctx context.Context, id string) error
	DeleteAllReservations(ctx context.Context) error

	UpsertChannelCheck(ctx context.Context, categoryKey, channelID string, isComplete bool) error
	ResetAllChannelChecks(ctx context.Context) error

	GetRoundState(ctx context.Context) (*domain.RoundState, error)
	SetRoundState(ctx context.Context, state domain.RoundState) error
	ClearRoundState(ctx context.Context) error

	IsUserBanned(ctx context.Context, userID string, now time.Time) (bool, error)
}

// Engine applies the claim rules against the store. It holds no reservation
// state of its own and never logs; every operation returns a typed outcome
// the caller renders.
type Engine struct {
	registry *domain.Registry
	store    Store
	clock    clock.Clock
}

func New(registry *domain.Registry, store Store, clk clock.Clock) *Engine {
	return &Engine{
		registry: registry,
		store:    store,
		clock:    clk,
	}
}

// Registry exposes the category table for read-only use by callers.
func (e *Engine) Registry() *domain.Registry {
	return e.registry
}

// Step tells the caller which prompt to surface next.
type Step string

const (
	StepChooseSubCategory Step = "choose_sub_category"
	StepAssignItems       Step = "assign_items"
	StepDone              Step = "done"
)

// needsCompletion reports whether a reservation still has mandatory steps
// ahead of it. Such a reservation blocks its holder from claiming another
// category.
func (e *Engine) needsCompletion(r domain.Reservation) bool {
	cat, err := e.registry.Resolve(r.CategoryKey)
	if err != nil {
		return false
	}
	if cat.HasSubCategories() {
		if r.SubCategory == "" {
			return true
		}
		sc, ok := cat.SubCategory(r.SubCategory)
		if !ok || !sc.AllowsItems {
			return false
		}
	}
	if r.Slot1 == "" {
		return true
	}
	if cat.BonusRequired && r.ExtraPick == "" {
		return true
	}
	return false
}

// bonusAvailable reports whether this reservation participates in the
// category's extra pick at all.
func bonusAvailable(cat domain.Category, r domain.Reservation) bool {
	if !cat.HasBonusPick {
		return false
	}
	if !cat.HasSubCategories() {
		return true
	}
	sc, ok := cat.SubCategory(r.SubCategory)
	return ok && sc.UnlocksBonus
}

func filterByCategory(all []domain.Reservation, categoryKey string) []domain.Reservation {
	var out []domain.Reservation
	for _, r := range all {
		if r.CategoryKey == categoryKey {
			out = append(out, r)
		}
	}
	return out
}

func hasCapability(capabilities []string, role string) bool {
	for _, c := range capabilities {
		if c == role {
			return true
		}
	}
	return false
}
