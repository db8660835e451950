package round

import (
	"context"
	"testing"
	"time"

	"github.com/shinys129/OpUtilityBot/internal/clock"
	"github.com/shinys129/OpUtilityBot/internal/domain"
	"github.com/shinys129/OpUtilityBot/internal/engine"
	"github.com/shinys129/OpUtilityBot/internal/storage/memory"
)

func newTestController(t *testing.T) (*Controller, *engine.Engine, *memory.Store) {
	t.Helper()
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	store := memory.New()
	registry := domain.NewRegistry()
	eng := engine.New(registry, store, clock.NewFixed(now))
	return NewController(registry, eng, store, clock.NewFixed(now)), eng, store
}

func TestController_StartRound(t *testing.T) {
	t.Parallel()

	t.Run("wipes stale reservations and records the round state", func(t *testing.T) {
		controller, eng, store := newTestController(t)
		if _, err := eng.Claim(context.Background(), "user-1", "rares", nil); err != nil {
			t.Fatalf("seed claim failed: %v", err)
		}

		snap, err := controller.StartRound(context.Background(), "chan-origin", "msg-board")
		if err != nil {
			t.Fatalf("start round failed: %v", err)
		}
		if snap.TotalReservations != 0 {
			t.Fatalf("expected a clean round, got %d reservations", snap.TotalReservations)
		}

		state, err := store.GetRoundState(context.Background())
		if err != nil {
			t.Fatalf("get state failed: %v", err)
		}
		if state == nil {
			t.Fatalf("expected round state to be set")
		}
		if state.OriginChannelID != "chan-origin" || state.BoardMessageID != "msg-board" {
			t.Fatalf("unexpected round state %+v", state)
		}
	})
}

func TestController_RefreshSnapshot(t *testing.T) {
	t.Parallel()

	controller, eng, _ := newTestController(t)

	if _, err := eng.Claim(context.Background(), "user-1", "rares", nil); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := eng.AssignItems(context.Background(), "user-1", "rares", []string{"Mewtwo"}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := eng.Claim(context.Background(), "user-1", "reserve1", nil); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := controller.RegisterCategoryChannels(context.Background(), "rares", []string{"c1", "c2", "c3", "c4"}); err != nil {
		t.Fatalf("register channels failed: %v", err)
	}
	if err := eng.MarkChannelComplete(context.Background(), "rares", "c1"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	snap, err := controller.RefreshSnapshot(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if snap.TotalReservations != 2 {
		t.Fatalf("expected 2 reservations, got %d", snap.TotalReservations)
	}
	if snap.TotalCategories != 10 {
		t.Fatalf("expected 10 categories, got %d", snap.TotalCategories)
	}

	byKey := make(map[string]CategorySnapshot)
	for _, cs := range snap.Categories {
		byKey[cs.Key] = cs
	}

	rares := byKey["rares"]
	if !rares.IsFull {
		t.Fatalf("expected rares to be full")
	}
	if rares.ChannelsTotal != 4 || rares.ChannelsComplete != 1 {
		t.Fatalf("expected 1/4 channels complete, got %d/%d", rares.ChannelsComplete, rares.ChannelsTotal)
	}
	if rares.Progress != 0.25 {
		t.Fatalf("expected progress 0.25, got %v", rares.Progress)
	}
	if rares.IsDone {
		t.Fatalf("rares is not done yet")
	}

	// A lone split-category holder with an open second slot leaves the
	// category claimable.
	if byKey["reserve1"].IsFull {
		t.Fatalf("expected reserve1 to stay open for a split")
	}
	if byKey["eevos"].IsFull {
		t.Fatalf("expected eevos to be empty and open")
	}
	if snap.FilledCategories != 1 {
		t.Fatalf("expected 1 filled category, got %d", snap.FilledCategories)
	}
}

func TestController_EndRound(t *testing.T) {
	t.Parallel()

	controller, eng, store := newTestController(t)

	if _, err := eng.Claim(context.Background(), "user-1", "rares", nil); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := eng.AssignItems(context.Background(), "user-1", "rares", []string{"Mewtwo"}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := eng.Claim(context.Background(), "user-1", "eevos", nil); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := eng.Claim(context.Background(), "user-2", "gmax", nil); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	userIDs, err := controller.EndRound(context.Background())
	if err != nil {
		t.Fatalf("end round failed: %v", err)
	}
	if len(userIDs) != 2 {
		t.Fatalf("expected 2 distinct users, got %v", userIDs)
	}

	all, err := store.ListReservations(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no reservations after end, got %d", len(all))
	}
}

func TestController_RegisterCategoryChannels(t *testing.T) {
	t.Parallel()

	controller, _, store := newTestController(t)

	if err := controller.RegisterCategoryChannels(context.Background(), "nope", []string{"c1"}); err != domain.ErrCategoryNotFound {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}

	if err := controller.RegisterCategoryChannels(context.Background(), "eevos", []string{"c1", "c2"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	// Replacing resets the set and the progress.
	if err := controller.RegisterCategoryChannels(context.Background(), "eevos", []string{"c3"}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	checks, err := store.ListChannelChecks(context.Background())
	if err != nil {
		t.Fatalf("list checks failed: %v", err)
	}
	if len(checks) != 1 {
		t.Fatalf("expected 1 check after replace, got %d", len(checks))
	}
	if checks[0].ChannelID != "c3" || checks[0].IsComplete {
		t.Fatalf("unexpected check %+v", checks[0])
	}
}

func TestController_AdminRole(t *testing.T) {
	t.Parallel()

	controller, _, _ := newTestController(t)

	role, err := controller.AdminRole(context.Background())
	if err != nil {
		t.Fatalf("admin role failed: %v", err)
	}
	if role != "" {
		t.Fatalf("expected no role configured, got %q", role)
	}

	if err := controller.SetAdminRole(context.Background(), "role-42"); err != nil {
		t.Fatalf("set admin role failed: %v", err)
	}
	role, err = controller.AdminRole(context.Background())
	if err != nil {
		t.Fatalf("admin role failed: %v", err)
	}
	if role != "role-42" {
		t.Fatalf("expected role-42, got %q", role)
	}
}
