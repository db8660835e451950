package engine

import (
	"context"

	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// CancelMode selects between wiping items and deleting the reservation.
type CancelMode string

const (
	ClearItems CancelMode = "clear_items"
	FullCancel CancelMode = "full_cancel"
)

// CancelResult describes what a cancel operation removed.
type CancelResult struct {
	Reservation domain.Reservation
	// ClearedItems lists the item values released back to the pool.
	ClearedItems []string
	// Deleted is true for a full cancel.
	Deleted bool
}

// Cancel lets the owner wipe the items off their reservation or delete it
// entirely, freeing category and sub-category capacity immediately.
func (e *Engine) Cancel(ctx context.Context, userID, reservationID string, mode CancelMode) (CancelResult, error) {
	return e.cancel(ctx, reservationID, mode, func(r domain.Reservation) error {
		if r.UserID != userID {
			return domain.ErrNotOwner
		}
		return nil
	})
}

// AdminClear is Cancel without the ownership check. The caller has already
// authorized the actor through an external capability check.
func (e *Engine) AdminClear(ctx context.Context, reservationID string, mode CancelMode) (CancelResult, error) {
	return e.cancel(ctx, reservationID, mode, func(domain.Reservation) error { return nil })
}

func (e *Engine) cancel(ctx context.Context, reservationID string, mode CancelMode, authorize func(domain.Reservation) error) (CancelResult, error) {
	var result CancelResult
	err := e.store.WithTx(ctx, func(txCtx context.Context) error {
		res, err := e.store.GetReservation(txCtx, reservationID)
		if err != nil {
			return err
		}
		if err := authorize(res); err != nil {
			return err
		}

		switch mode {
		case FullCancel:
			if err := e.store.DeleteReservation(txCtx, res.ID); err != nil {
				return err
			}
			result = CancelResult{Reservation: res, ClearedItems: res.Items(), Deleted: true}
			return nil
		default:
			items := res.Items()
			if len(items) == 0 {
				return domain.ErrNothingToClear
			}
			if err := e.store.SetReservationItems(txCtx, res.ID, domain.ReservationItems{}); err != nil {
				return err
			}
			res.Slot1, res.Slot2, res.ExtraPick = "", "", ""
			result = CancelResult{Reservation: res, ClearedItems: items}
			return nil
		}
	})
	if err != nil {
		return CancelResult{}, err
	}
	return result, nil
}
