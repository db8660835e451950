package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// RoundRepository backs the round controller.
type RoundRepository struct {
	pool *pgxpool.Pool
}

func NewRoundRepository(pool *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{pool: pool}
}

func (r *RoundRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withRoundTx(ctx, r.pool, fn)
}

func (r *RoundRepository) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at ASC, id ASC`
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *RoundRepository) ListChannelChecks(ctx context.Context) ([]domain.ChannelCheck, error) {
	const query = `
SELECT id::text, category, channel_id, is_complete, updated_at
FROM channel_checks
ORDER BY category ASC, channel_id ASC`
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list channel checks: %w", err)
	}
	defer rows.Close()

	var out []domain.ChannelCheck
	for rows.Next() {
		var ch domain.ChannelCheck
		if err := rows.Scan(&ch.ID, &ch.CategoryKey, &ch.ChannelID, &ch.IsComplete, &ch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan channel check: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (r *RoundRepository) ReplaceCategoryChannels(ctx context.Context, categoryKey string, channelIDs []string) error {
	return withRoundTx(ctx, r.pool, func(txCtx context.Context) error {
		if _, err := r.exec(txCtx, `DELETE FROM channel_checks WHERE category = $1`, categoryKey); err != nil {
			return fmt.Errorf("clear category channels: %w", err)
		}
		for _, cid := range channelIDs {
			const stmt = `
INSERT INTO channel_checks (category, channel_id, is_complete, updated_at)
VALUES ($1, $2, FALSE, NOW())`
			if _, err := r.exec(txCtx, stmt, categoryKey, cid); err != nil {
				return fmt.Errorf("insert category channel: %w", err)
			}
		}
		return nil
	})
}

func (r *RoundRepository) GetRoundState(ctx context.Context) (*domain.RoundState, error) {
	return getRoundState(ctx, r.queryRow)
}

func (r *RoundRepository) SetRoundState(ctx context.Context, state domain.RoundState) error {
	return setRoundState(ctx, r.exec, state)
}

func (r *RoundRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RoundRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *RoundRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
