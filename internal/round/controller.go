package round

import (
	"context"

	"github.com/shinys129/OpUtilityBot/internal/clock"
	"github.com/shinys129/OpUtilityBot/internal/domain"
	"github.com/shinys129/OpUtilityBot/internal/engine"
)

// Store is the persistence surface the controller needs on top of what it
// reaches through the engine.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListReservations(ctx context.Context) ([]domain.Reservation, error)
	ListChannelChecks(ctx context.Context) ([]domain.ChannelCheck, error)
	ReplaceCategoryChannels(ctx context.Context, categoryKey string, channelIDs []string) error
	GetRoundState(ctx context.Context) (*domain.RoundState, error)
	SetRoundState(ctx context.Context, state domain.RoundState) error
}

// Controller orchestrates a full organizing round on top of the engine.
type Controller struct {
	registry *domain.Registry
	engine   *engine.Engine
	store    Store
	clock    clock.Clock
}

func NewController(registry *domain.Registry, eng *engine.Engine, store Store, clk clock.Clock) *Controller {
	return &Controller{
		registry: registry,
		engine:   eng,
		store:    store,
		clock:    clk,
	}
}

// CategorySnapshot is the per-category aggregate for board rendering.
type CategorySnapshot struct {
	Key          string
	DisplayName  string
	ChannelRange string
	Claimants    int
	Capacity     int
	IsFull       bool
	// IsDone means every registered channel for the category is complete.
	IsDone           bool
	ChannelsTotal    int
	ChannelsComplete int
	// Progress is the completed fraction of registered channels, 0 when
	// none are registered.
	Progress float64
}

// Snapshot is the round-level aggregate projected from store contents.
type Snapshot struct {
	Categories        []CategorySnapshot
	FilledCategories  int
	TotalCategories   int
	TotalReservations int
	BoosterUnlocked   bool
}

// StartRound wipes any stale round, persists the new round state, and
// returns the empty aggregate for the caller to render.
func (c *Controller) StartRound(ctx context.Context, originChannelID, boardMessageID string) (Snapshot, error) {
	err := c.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.engine.EndRound(txCtx); err != nil {
			return err
		}
		return c.store.SetRoundState(txCtx, domain.RoundState{
			OriginChannelID: originChannelID,
			BoardMessageID:  boardMessageID,
			UpdatedAt:       c.clock.Now(),
		})
	})
	if err != nil {
		return Snapshot{}, err
	}
	return c.RefreshSnapshot(ctx)
}

// RefreshSnapshot recomputes the aggregate without mutating anything.
func (c *Controller) RefreshSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.store.WithTx(ctx, func(txCtx context.Context) error {
		reservations, err := c.store.ListReservations(txCtx)
		if err != nil {
			return err
		}
		checks, err := c.store.ListChannelChecks(txCtx)
		if err != nil {
			return err
		}
		state, err := c.store.GetRoundState(txCtx)
		if err != nil {
			return err
		}
		snap = c.project(reservations, checks, state)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// EndRound clears the round and reports which users held reservations so
// the caller can revoke external roles.
func (c *Controller) EndRound(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := c.store.WithTx(ctx, func(txCtx context.Context) error {
		reservations, err := c.store.ListReservations(txCtx)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, r := range reservations {
			if !seen[r.UserID] {
				seen[r.UserID] = true
				userIDs = append(userIDs, r.UserID)
			}
		}
		return c.engine.EndRound(txCtx)
	})
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// RegisterCategoryChannels replaces the channel set backing a category. All
// new mappings start incomplete.
func (c *Controller) RegisterCategoryChannels(ctx context.Context, categoryKey string, channelIDs []string) error {
	if _, err := c.registry.Resolve(categoryKey); err != nil {
		return err
	}
	return c.store.ReplaceCategoryChannels(ctx, categoryKey, channelIDs)
}

// SetAdminRole records the role allowed to run admin commands. The engine
// never resolves roles itself; the shell reads this back for its checks.
func (c *Controller) SetAdminRole(ctx context.Context, roleID string) error {
	return c.store.WithTx(ctx, func(txCtx context.Context) error {
		state, err := c.store.GetRoundState(txCtx)
		if err != nil {
			return err
		}
		next := domain.RoundState{}
		if state != nil {
			next = *state
		}
		next.AdminRoleID = roleID
		next.UpdatedAt = c.clock.Now()
		return c.store.SetRoundState(txCtx, next)
	})
}

// AdminRole returns the configured admin role ID, empty when unset.
func (c *Controller) AdminRole(ctx context.Context) (string, error) {
	state, err := c.store.GetRoundState(ctx)
	if err != nil {
		return "", err
	}
	if state == nil {
		return "", nil
	}
	return state.AdminRoleID, nil
}

func (c *Controller) project(reservations []domain.Reservation, checks []domain.ChannelCheck, state *domain.RoundState) Snapshot {
	byCategory := make(map[string][]domain.Reservation)
	for _, r := range reservations {
		byCategory[r.CategoryKey] = append(byCategory[r.CategoryKey], r)
	}
	checksByCategory := make(map[string][]domain.ChannelCheck)
	for _, ch := range checks {
		checksByCategory[ch.CategoryKey] = append(checksByCategory[ch.CategoryKey], ch)
	}

	snap := Snapshot{TotalReservations: len(reservations)}
	if state != nil {
		snap.BoosterUnlocked = state.BoosterUnlocked
	}
	for _, cat := range c.registry.All() {
		cs := CategorySnapshot{
			Key:          cat.Key,
			DisplayName:  cat.DisplayName,
			ChannelRange: cat.ChannelRange,
			Claimants:    len(byCategory[cat.Key]),
			Capacity:     cat.Capacity,
			IsFull:       engine.CategoryIsFull(cat, byCategory[cat.Key]),
		}
		for _, ch := range checksByCategory[cat.Key] {
			cs.ChannelsTotal++
			if ch.IsComplete {
				cs.ChannelsComplete++
			}
		}
		if cs.ChannelsTotal > 0 {
			cs.Progress = float64(cs.ChannelsComplete) / float64(cs.ChannelsTotal)
			cs.IsDone = cs.ChannelsComplete == cs.ChannelsTotal
		}
		if cs.IsFull {
			snap.FilledCategories++
		}
		snap.Categories = append(snap.Categories, cs)
	}
	snap.TotalCategories = len(snap.Categories)
	return snap
}
