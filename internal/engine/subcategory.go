package engine

import (
	"context"

	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// SubCategoryResult describes a successful sub-category choice.
type SubCategoryResult struct {
	Reservation domain.Reservation
	// ItemsAllowed is false for variants that never unlock item
	// assignment; such reservations are complete as chosen.
	ItemsAllowed bool
	// BonusUnlocked signals that the extra pick will open up once the
	// holder fills their slot.
	BonusUnlocked bool
	NextStep      Step
}

// ChooseSubCategory sets the variant on the user's pending reservation. The
// choice is immutable afterwards short of an admin full cancel.
func (e *Engine) ChooseSubCategory(ctx context.Context, userID, categoryKey, subCategory string) (SubCategoryResult, error) {
	cat, err := e.registry.Resolve(categoryKey)
	if err != nil {
		return SubCategoryResult{}, err
	}
	sc, ok := cat.SubCategory(subCategory)
	if !ok {
		return SubCategoryResult{}, domain.ErrUnknownSubCategory
	}

	var result SubCategoryResult
	err = e.store.WithTx(ctx, func(txCtx context.Context) error {
		all, err := e.store.ListReservations(txCtx)
		if err != nil {
			return err
		}
		existing := filterByCategory(all, categoryKey)

		var pending *domain.Reservation
		for i := range existing {
			if existing[i].UserID == userID && existing[i].SubCategory == "" {
				pending = &existing[i]
				break
			}
		}
		if pending == nil {
			return domain.ErrNoPendingReservation
		}

		if err := checkSubCategoryChoice(cat, sc, existing); err != nil {
			return err
		}

		if err := e.store.SetReservationSubCategory(txCtx, pending.ID, sc.Name); err != nil {
			return err
		}

		res := *pending
		res.SubCategory = sc.Name
		next := StepDone
		if sc.AllowsItems {
			next = StepAssignItems
		}
		result = SubCategoryResult{
			Reservation:   res,
			ItemsAllowed:  sc.AllowsItems,
			BonusUnlocked: sc.UnlocksBonus,
			NextStep:      next,
		}
		return nil
	})
	if err != nil {
		return SubCategoryResult{}, err
	}
	return result, nil
}

func checkSubCategoryChoice(cat domain.Category, sc domain.SubCategory, existing []domain.Reservation) error {
	taken := make(map[string]bool)
	namedTaken := 0
	for _, r := range existing {
		if r.SubCategory == "" {
			continue
		}
		taken[r.SubCategory] = true
		if r.SubCategory != domain.SubCategoryStandard {
			namedTaken++
		}
	}

	if sc.Name == domain.SubCategoryStandard {
		namedTotal := 0
		for _, v := range cat.SubCategories {
			if v.Name != domain.SubCategoryStandard {
				namedTotal++
			}
		}
		if namedTotal > 0 && namedTaken == namedTotal {
			return domain.ErrAllSubCategoriesFull
		}
		if namedVariantBlocks(cat, existing) {
			return domain.ErrStandardExclusive
		}
	} else if standardBlocks(cat, existing) {
		return domain.ErrStandardExclusive
	}

	if taken[sc.Name] {
		return domain.ErrSubCategoryTaken
	}
	return nil
}
