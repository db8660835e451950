package postgres

import (
	"context"
	"testing"

	"github.com/shinys129/OpUtilityBot/internal/domain"
	"github.com/shinys129/OpUtilityBot/internal/testutil"
)

func TestRoundRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewRoundRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("replace category channels resets the set", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.ReplaceCategoryChannels(ctx, "rares", []string{"c1", "c2"}); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if err := repo.ReplaceCategoryChannels(ctx, "eevos", []string{"c9"}); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if err := repo.ReplaceCategoryChannels(ctx, "rares", []string{"c3"}); err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		checks, err := repo.ListChannelChecks(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(checks) != 2 {
			t.Fatalf("expected 2 checks, got %d", len(checks))
		}
		byCategory := make(map[string]domain.ChannelCheck)
		for _, ch := range checks {
			byCategory[ch.CategoryKey] = ch
		}
		if byCategory["rares"].ChannelID != "c3" {
			t.Fatalf("expected the rares set replaced, got %+v", byCategory["rares"])
		}
		if byCategory["eevos"].ChannelID != "c9" {
			t.Fatalf("expected the eevos set untouched, got %+v", byCategory["eevos"])
		}
		if byCategory["rares"].IsComplete {
			t.Fatalf("new mappings must start incomplete")
		}
	})

	t.Run("lists reservations with the shared column set", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.InsertReservation(t, ctx, pool, domain.Reservation{UserID: "user-1", CategoryKey: "rares", Slot1: "Mewtwo"})

		all, err := repo.ListReservations(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(all) != 1 || all[0].Slot1 != "Mewtwo" {
			t.Fatalf("unexpected reservations %+v", all)
		}
	})

	t.Run("shares round state with the reservation repository", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.SetRoundState(ctx, domain.RoundState{OriginChannelID: "chan-1"}); err != nil {
			t.Fatalf("set state failed: %v", err)
		}

		other := NewReservationRepository(pool)
		state, err := other.GetRoundState(ctx)
		if err != nil {
			t.Fatalf("get state failed: %v", err)
		}
		if state == nil || state.OriginChannelID != "chan-1" {
			t.Fatalf("unexpected state %+v", state)
		}
	})
}
