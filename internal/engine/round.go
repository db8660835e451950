package engine

import (
	"context"

	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// EndRound deletes every reservation, resets the completion flag on all
// channel checks (the channel-to-category mapping survives), and clears the
// round state. Safe to call when no round is active.
func (e *Engine) EndRound(ctx context.Context) error {
	return e.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := e.store.DeleteAllReservations(txCtx); err != nil {
			return err
		}
		if err := e.store.ResetAllChannelChecks(txCtx); err != nil {
			return err
		}
		return e.store.ClearRoundState(txCtx)
	})
}

// MarkChannelComplete records the external purchase confirmation for a
// channel. Best effort: the channel is registered on the fly when the
// category never listed it.
func (e *Engine) MarkChannelComplete(ctx context.Context, categoryKey, channelID string) error {
	return e.store.UpsertChannelCheck(ctx, categoryKey, channelID, true)
}

// SetBoosterUnlocked opens or closes the booster gate on the round state.
func (e *Engine) SetBoosterUnlocked(ctx context.Context, unlocked bool) error {
	return e.store.WithTx(ctx, func(txCtx context.Context) error {
		state, err := e.store.GetRoundState(txCtx)
		if err != nil {
			return err
		}
		next := domain.RoundState{}
		if state != nil {
			next = *state
		}
		next.BoosterUnlocked = unlocked
		next.UpdatedAt = e.clock.Now()
		return e.store.SetRoundState(txCtx, next)
	})
}
