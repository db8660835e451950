package engine

import (
	"context"
	"strings"

	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// AssignResult describes which fields an item submission filled.
type AssignResult struct {
	Reservation domain.Reservation
	FilledSlot1 bool
	FilledSlot2 bool
	FilledExtra bool
	// BonusPromptReady signals that the caller should now surface the
	// extra-pick prompt.
	BonusPromptReady bool
	// Complete reports that the reservation has no mandatory steps left.
	Complete bool
}

// AssignItems fills the next open slot (or, once slots are full, the extra
// pick) on the user's reservation in the category. Item values are unique
// across the whole round, case-insensitively.
func (e *Engine) AssignItems(ctx context.Context, userID, categoryKey string, items []string) (AssignResult, error) {
	cat, err := e.registry.Resolve(categoryKey)
	if err != nil {
		return AssignResult{}, err
	}

	cleaned := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			return AssignResult{}, domain.ErrInvalidItemCount
		}
		cleaned = append(cleaned, it)
	}
	if len(cleaned) == 0 {
		return AssignResult{}, domain.ErrInvalidItemCount
	}
	if len(cleaned) == 2 && strings.EqualFold(cleaned[0], cleaned[1]) {
		return AssignResult{}, domain.DuplicateItemError{Item: cleaned[1], Mine: true}
	}
	if len(cleaned) > 2 {
		return AssignResult{}, domain.ErrTooManyItems
	}

	var result AssignResult
	err = e.store.WithTx(ctx, func(txCtx context.Context) error {
		all, err := e.store.ListReservations(txCtx)
		if err != nil {
			return err
		}

		res, ok := eligibleReservation(cat, all, userID)
		if !ok {
			return domain.ErrNoEligibleReservation
		}
		if len(cleaned) > res.SlotLimit {
			return domain.ErrTooManyItems
		}

		next := domain.ReservationItems{
			Slot1:     res.Slot1,
			Slot2:     res.Slot2,
			ExtraPick: res.ExtraPick,
		}
		var filled AssignResult
		switch {
		case res.Slot1 == "":
			next.Slot1 = cleaned[0]
			filled.FilledSlot1 = true
			if len(cleaned) == 2 {
				next.Slot2 = cleaned[1]
				filled.FilledSlot2 = true
			}
		case res.SlotLimit == 2 && res.Slot2 == "":
			if len(cleaned) == 2 {
				return domain.ErrInvalidItemCount
			}
			next.Slot2 = cleaned[0]
			filled.FilledSlot2 = true
		case bonusAvailable(cat, res) && res.ExtraPick == "":
			if len(cleaned) == 2 {
				return domain.ErrInvalidItemCount
			}
			next.ExtraPick = cleaned[0]
			filled.FilledExtra = true
		default:
			return domain.ErrNoEligibleReservation
		}

		for _, it := range cleaned {
			for _, r := range all {
				if r.HoldsItem(it) {
					return domain.DuplicateItemError{Item: it, Mine: r.UserID == userID}
				}
			}
		}

		if err := e.store.SetReservationItems(txCtx, res.ID, next); err != nil {
			return err
		}

		res.Slot1, res.Slot2, res.ExtraPick = next.Slot1, next.Slot2, next.ExtraPick
		filled.Reservation = res
		filled.BonusPromptReady = res.SlotsFull() && bonusAvailable(cat, res) && res.ExtraPick == ""
		filled.Complete = !e.needsCompletion(res)
		result = filled
		return nil
	})
	if err != nil {
		return AssignResult{}, err
	}
	return result, nil
}

// eligibleReservation finds the user's reservation in the category that can
// still take items: the sub-category must be chosen and must allow items.
func eligibleReservation(cat domain.Category, all []domain.Reservation, userID string) (domain.Reservation, bool) {
	for _, r := range filterByCategory(all, cat.Key) {
		if r.UserID != userID {
			continue
		}
		if cat.HasSubCategories() {
			if r.SubCategory == "" {
				continue
			}
			sc, ok := cat.SubCategory(r.SubCategory)
			if !ok || !sc.AllowsItems {
				continue
			}
		}
		return r, true
	}
	return domain.Reservation{}, false
}
