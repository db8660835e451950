package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// ClaimResult describes a successful claim.
type ClaimResult struct {
	Reservation domain.Reservation
	// NextStep is the prompt the caller should surface: sub-category
	// selection for sub-categorized categories, item assignment otherwise.
	NextStep Step
	// Split marks a second claimant who took the remaining single slot.
	Split bool
}

// Claim creates a reservation for the user in the category, enforcing role
// gates, the booster gate, per-category capacity, the split rule, and the
// one-incomplete-reservation rule.
func (e *Engine) Claim(ctx context.Context, userID, categoryKey string, capabilities []string) (ClaimResult, error) {
	cat, err := e.registry.Resolve(categoryKey)
	if err != nil {
		return ClaimResult{}, err
	}
	if cat.RequiresRole != "" && !hasCapability(capabilities, cat.RequiresRole) {
		return ClaimResult{}, domain.RoleRequiredError{Role: cat.RequiresRole}
	}

	now := e.clock.Now()
	var result ClaimResult

	err = e.store.WithTx(ctx, func(txCtx context.Context) error {
		banned, err := e.store.IsUserBanned(txCtx, userID, now)
		if err != nil {
			return err
		}
		if banned {
			return domain.ErrUserBanned
		}

		if cat.BoosterGated {
			state, err := e.store.GetRoundState(txCtx)
			if err != nil {
				return err
			}
			if state == nil || !state.BoosterUnlocked {
				return domain.ErrCategoryLocked
			}
		}

		mine, err := e.store.ListReservationsByUser(txCtx, userID)
		if err != nil {
			return err
		}
		for _, r := range mine {
			if r.CategoryKey == categoryKey {
				return domain.ErrAlreadyClaimed
			}
		}
		for _, r := range mine {
			if e.needsCompletion(r) {
				return domain.IncompleteReservationError{CategoryKey: r.CategoryKey}
			}
		}

		all, err := e.store.ListReservations(txCtx)
		if err != nil {
			return err
		}
		existing := filterByCategory(all, categoryKey)

		if CategoryIsFull(cat, existing) {
			return domain.ErrCategoryFull
		}
		slotLimit := cat.SlotsPerClaimant
		split := false
		if cat.AllowsSplit && len(existing) == 1 {
			slotLimit = 1
			split = true
		}

		res := domain.Reservation{
			ID:           uuid.NewString(),
			UserID:       userID,
			CategoryKey:  categoryKey,
			ChannelRange: cat.ChannelRange,
			SlotLimit:    slotLimit,
			CreatedAt:    now,
		}
		if err := e.store.CreateReservation(txCtx, res); err != nil {
			return err
		}

		next := StepAssignItems
		if cat.HasSubCategories() {
			next = StepChooseSubCategory
		}
		result = ClaimResult{Reservation: res, NextStep: next, Split: split}
		return nil
	})
	if err != nil {
		return ClaimResult{}, err
	}
	return result, nil
}

// CategoryIsFull reports whether a new claimant would be turned away from
// the category given its current reservations. For split-capable categories
// a lone holder leaves room only while their second slot is open.
func CategoryIsFull(cat domain.Category, existing []domain.Reservation) bool {
	if len(existing) >= cat.Capacity {
		return true
	}
	if cat.HasSubCategories() {
		return len(claimableSubCategories(cat, existing)) == 0
	}
	if cat.AllowsSplit && len(existing) == 1 {
		holder := existing[0]
		return holder.SlotLimit < 2 || holder.Slot1 == "" || holder.Slot2 != ""
	}
	return false
}

// claimableSubCategories lists the variants a brand-new claimant could still
// end up choosing, given the exclusivity rules and current holders.
func claimableSubCategories(cat domain.Category, existing []domain.Reservation) []domain.SubCategory {
	taken := make(map[string]bool)
	for _, r := range existing {
		if r.SubCategory != "" {
			taken[r.SubCategory] = true
		}
	}

	var out []domain.SubCategory
	for _, sc := range cat.SubCategories {
		if taken[sc.Name] {
			continue
		}
		if sc.Name == domain.SubCategoryStandard {
			if namedVariantBlocks(cat, existing) {
				continue
			}
		} else if standardBlocks(cat, existing) {
			continue
		}
		out = append(out, sc)
	}
	return out
}

// namedVariantBlocks reports whether an existing non-standard reservation
// blocks the standard variant under the category's block timing.
func namedVariantBlocks(cat domain.Category, existing []domain.Reservation) bool {
	for _, r := range existing {
		if r.SubCategory == "" || r.SubCategory == domain.SubCategoryStandard {
			continue
		}
		if cat.BlockTiming == domain.BlockOnFirstAssign && r.Slot1 == "" {
			continue
		}
		return true
	}
	return false
}

// standardBlocks reports whether an existing standard reservation blocks the
// named variants under the category's block timing.
func standardBlocks(cat domain.Category, existing []domain.Reservation) bool {
	for _, r := range existing {
		if r.SubCategory != domain.SubCategoryStandard {
			continue
		}
		if cat.BlockTiming == domain.BlockOnFirstAssign && r.Slot1 == "" {
			continue
		}
		return true
	}
	return false
}
