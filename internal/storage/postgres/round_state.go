package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shinys129/OpUtilityBot/internal/domain"
)

type rowQuerier func(ctx context.Context, sql string, args ...any) pgx.Row
type execer func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

// org_state holds at most one row; the newest wins when older deployments
// left extras behind.
func getRoundState(ctx context.Context, queryRow rowQuerier) (*domain.RoundState, error) {
	const query = `
SELECT COALESCE(origin_channel_id, ''), COALESCE(board_message_id, ''),
       booster_unlocked, COALESCE(admin_role_id, ''), updated_at
FROM org_state
ORDER BY updated_at DESC
LIMIT 1`

	var state domain.RoundState
	err := queryRow(ctx, query).Scan(
		&state.OriginChannelID,
		&state.BoardMessageID,
		&state.BoosterUnlocked,
		&state.AdminRoleID,
		&state.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get round state: %w", err)
	}
	return &state, nil
}

func setRoundState(ctx context.Context, exec execer, state domain.RoundState) error {
	if _, err := exec(ctx, `DELETE FROM org_state`); err != nil {
		return fmt.Errorf("replace round state: %w", err)
	}
	const stmt = `
INSERT INTO org_state (origin_channel_id, board_message_id, booster_unlocked, admin_role_id, updated_at)
VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, NULLIF($4, ''), $5)`
	_, err := exec(ctx, stmt,
		state.OriginChannelID,
		state.BoardMessageID,
		state.BoosterUnlocked,
		state.AdminRoleID,
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set round state: %w", err)
	}
	return nil
}
