package engine

import (
	"context"
	"testing"

	"github.com/shinys129/OpUtilityBot/internal/domain"
)

func TestEngine_ChooseSubCategory(t *testing.T) {
	t.Parallel()

	claim := func(t *testing.T, eng *Engine, userID string) {
		t.Helper()
		if _, err := eng.Claim(context.Background(), userID, "regionals", nil); err != nil {
			t.Fatalf("claim for %s failed: %v", userID, err)
		}
	}

	t.Run("records the choice and routes to item assignment", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		claim(t, eng, "user-1")

		res, err := eng.ChooseSubCategory(context.Background(), "user-1", "regionals", "galarian")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Reservation.SubCategory != "galarian" {
			t.Fatalf("expected galarian, got %s", res.Reservation.SubCategory)
		}
		if !res.ItemsAllowed {
			t.Fatalf("expected galarian to allow items")
		}
		if res.NextStep != StepAssignItems {
			t.Fatalf("expected next step %s, got %s", StepAssignItems, res.NextStep)
		}
	})

	t.Run("item-less variant completes the reservation", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		claim(t, eng, "user-1")

		res, err := eng.ChooseSubCategory(context.Background(), "user-1", "regionals", "alolan")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.ItemsAllowed {
			t.Fatalf("expected alolan to disallow items")
		}
		if res.NextStep != StepDone {
			t.Fatalf("expected next step %s, got %s", StepDone, res.NextStep)
		}

		// The reservation is complete, so a second claim is allowed.
		if _, err := eng.Claim(context.Background(), "user-1", "rares", nil); err != nil {
			t.Fatalf("expected follow-up claim, got %v", err)
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		claim(t, eng, "user-1")

		_, err := eng.ChooseSubCategory(context.Background(), "user-1", "regionals", "paldean")
		if err != domain.ErrUnknownSubCategory {
			t.Fatalf("expected ErrUnknownSubCategory, got %v", err)
		}
	})

	t.Run("no pending reservation", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		_, err := eng.ChooseSubCategory(context.Background(), "user-1", "regionals", "galarian")
		if err != domain.ErrNoPendingReservation {
			t.Fatalf("expected ErrNoPendingReservation, got %v", err)
		}
	})

	t.Run("variant already taken", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		claim(t, eng, "user-1")
		claim(t, eng, "user-2")

		if _, err := eng.ChooseSubCategory(context.Background(), "user-1", "regionals", "galarian"); err != nil {
			t.Fatalf("first choice failed: %v", err)
		}
		_, err := eng.ChooseSubCategory(context.Background(), "user-2", "regionals", "galarian")
		if err != domain.ErrSubCategoryTaken {
			t.Fatalf("expected ErrSubCategoryTaken, got %v", err)
		}
	})

	t.Run("standard blocks named variants", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		claim(t, eng, "user-1")
		claim(t, eng, "user-2")

		if _, err := eng.ChooseSubCategory(context.Background(), "user-1", "regionals", "standard"); err != nil {
			t.Fatalf("standard choice failed: %v", err)
		}
		_, err := eng.ChooseSubCategory(context.Background(), "user-2", "regionals", "galarian")
		if err != domain.ErrStandardExclusive {
			t.Fatalf("expected ErrStandardExclusive, got %v", err)
		}
	})

	t.Run("named variant blocks standard", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		claim(t, eng, "user-1")
		claim(t, eng, "user-2")

		if _, err := eng.ChooseSubCategory(context.Background(), "user-1", "regionals", "hisuian"); err != nil {
			t.Fatalf("hisuian choice failed: %v", err)
		}
		_, err := eng.ChooseSubCategory(context.Background(), "user-2", "regionals", "standard")
		if err != domain.ErrStandardExclusive {
			t.Fatalf("expected ErrStandardExclusive, got %v", err)
		}
	})

	t.Run("all named variants taken", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		users := []string{"user-1", "user-2", "user-3", "user-4"}
		variants := []string{"galarian", "alolan", "hisuian"}
		for _, u := range users {
			claim(t, eng, u)
		}
		for i, v := range variants {
			if _, err := eng.ChooseSubCategory(context.Background(), users[i], "regionals", v); err != nil {
				t.Fatalf("choice %s failed: %v", v, err)
			}
		}

		_, err := eng.ChooseSubCategory(context.Background(), "user-4", "regionals", "standard")
		if err != domain.ErrAllSubCategoriesFull {
			t.Fatalf("expected ErrAllSubCategoriesFull, got %v", err)
		}
	})
}
