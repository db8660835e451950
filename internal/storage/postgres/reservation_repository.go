package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shinys129/OpUtilityBot/internal/domain"
)

// ReservationRepository backs the engine. Empty strings map to NULL columns
// so the schema keeps its nullable semantics.
type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withRoundTx(ctx, r.pool, fn)
}

const reservationColumns = `
id, user_id, category, COALESCE(sub_category, ''), COALESCE(slot1, ''),
COALESCE(slot2, ''), COALESCE(extra_pick, ''), COALESCE(channel_range, ''),
slot_limit, created_at`

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.CategoryKey,
		&res.SubCategory,
		&res.Slot1,
		&res.Slot2,
		&res.ExtraPick,
		&res.ChannelRange,
		&res.SlotLimit,
		&res.CreatedAt,
	)
	return res, err
}

func (r *ReservationRepository) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
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

func (r *ReservationRepository) ListReservationsByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by user: %w", err)
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

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, user_id, category, sub_category, slot1, slot2, extra_pick, channel_range, slot_limit, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.UserID,
		res.CategoryKey,
		res.SubCategory,
		res.Slot1,
		res.Slot2,
		res.ExtraPick,
		res.ChannelRange,
		res.SlotLimit,
		res.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyClaimed
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) SetReservationSubCategory(ctx context.Context, id, subCategory string) error {
	const stmt = `UPDATE reservations SET sub_category = NULLIF($2, '') WHERE id = $1`
	tag, err := r.exec(ctx, stmt, id, subCategory)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set sub-category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) SetReservationItems(ctx context.Context, id string, items domain.ReservationItems) error {
	const stmt = `
UPDATE reservations
SET slot1 = NULLIF($2, ''), slot2 = NULLIF($3, ''), extra_pick = NULLIF($4, '')
WHERE id = $1`
	tag, err := r.exec(ctx, stmt, id, items.Slot1, items.Slot2, items.ExtraPick)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set items: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) DeleteAllReservations(ctx context.Context) error {
	if _, err := r.exec(ctx, `DELETE FROM reservations`); err != nil {
		return fmt.Errorf("delete all reservations: %w", err)
	}
	return nil
}

func (r *ReservationRepository) UpsertChannelCheck(ctx context.Context, categoryKey, channelID string, isComplete bool) error {
	const stmt = `
INSERT INTO channel_checks (category, channel_id, is_complete, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (category, channel_id)
DO UPDATE SET is_complete = EXCLUDED.is_complete, updated_at = NOW()`
	if _, err := r.exec(ctx, stmt, categoryKey, channelID, isComplete); err != nil {
		return fmt.Errorf("upsert channel check: %w", err)
	}
	return nil
}

func (r *ReservationRepository) ResetAllChannelChecks(ctx context.Context) error {
	if _, err := r.exec(ctx, `UPDATE channel_checks SET is_complete = FALSE, updated_at = NOW()`); err != nil {
		return fmt.Errorf("reset channel checks: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetRoundState(ctx context.Context) (*domain.RoundState, error) {
	return getRoundState(ctx, r.queryRow)
}

func (r *ReservationRepository) SetRoundState(ctx context.Context, state domain.RoundState) error {
	return setRoundState(ctx, r.exec, state)
}

func (r *ReservationRepository) ClearRoundState(ctx context.Context) error {
	if _, err := r.exec(ctx, `DELETE FROM org_state`); err != nil {
		return fmt.Errorf("clear round state: %w", err)
	}
	return nil
}

func (r *ReservationRepository) IsUserBanned(ctx context.Context, userID string, now time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM banned_users
	WHERE user_id = $1 AND is_active AND (expires_at IS NULL OR expires_at > $2)
)`
	var banned bool
	if err := r.queryRow(ctx, query, userID, now).Scan(&banned); err != nil {
		return false, fmt.Errorf("check ban: %w", err)
	}
	return banned, nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
