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

// ModerationRepository backs the moderation service.
type ModerationRepository struct {
	pool *pgxpool.Pool
}

func NewModerationRepository(pool *pgxpool.Pool) *ModerationRepository {
	return &ModerationRepository{pool: pool}
}

func (r *ModerationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ModerationRepository) CreateBan(ctx context.Context, ban domain.Ban) error {
	const stmt = `
INSERT INTO banned_users (id, user_id, reason, banned_by, expires_at, is_active, banned_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var expiresAt *time.Time
	if !ban.ExpiresAt.IsZero() {
		expiresAt = &ban.ExpiresAt
	}
	_, err := r.exec(ctx, stmt, ban.ID, ban.UserID, ban.Reason, ban.BannedBy, expiresAt, ban.IsActive, ban.BannedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create ban: %w", err)
	}
	return nil
}

func (r *ModerationRepository) DeactivateBans(ctx context.Context, userID string) (int, error) {
	const stmt = `UPDATE banned_users SET is_active = FALSE WHERE user_id = $1 AND is_active`
	tag, err := r.exec(ctx, stmt, userID)
	if err != nil {
		return 0, fmt.Errorf("deactivate bans: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *ModerationRepository) IsUserBanned(ctx context.Context, userID string, now time.Time) (bool, error) {
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

func (r *ModerationRepository) ListActiveBans(ctx context.Context, now time.Time) ([]domain.Ban, error) {
	const query = `
SELECT id, user_id, reason, banned_by, expires_at, is_active, banned_at
FROM banned_users
WHERE is_active AND (expires_at IS NULL OR expires_at > $1)
ORDER BY banned_at DESC`
	rows, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list active bans: %w", err)
	}
	defer rows.Close()

	var out []domain.Ban
	for rows.Next() {
		ban, err := scanBan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ban)
	}
	return out, rows.Err()
}

func scanBan(row pgx.Row) (domain.Ban, error) {
	var (
		ban       domain.Ban
		expiresAt *time.Time
	)
	if err := row.Scan(&ban.ID, &ban.UserID, &ban.Reason, &ban.BannedBy, &expiresAt, &ban.IsActive, &ban.BannedAt); err != nil {
		return domain.Ban{}, fmt.Errorf("scan ban: %w", err)
	}
	if expiresAt != nil {
		ban.ExpiresAt = *expiresAt
	}
	return ban, nil
}

func (r *ModerationRepository) CreateWarning(ctx context.Context, warning domain.Warning) error {
	const stmt = `
INSERT INTO user_warnings (id, user_id, reason, warned_by, warned_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.exec(ctx, stmt, warning.ID, warning.UserID, warning.Reason, warning.WarnedBy, warning.WarnedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create warning: %w", err)
	}
	return nil
}

func (r *ModerationRepository) ListWarnings(ctx context.Context, userID string) ([]domain.Warning, error) {
	const query = `
SELECT id, user_id, reason, warned_by, warned_at
FROM user_warnings
WHERE user_id = $1
ORDER BY warned_at DESC`
	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	defer rows.Close()

	var out []domain.Warning
	for rows.Next() {
		var w domain.Warning
		if err := rows.Scan(&w.ID, &w.UserID, &w.Reason, &w.WarnedBy, &w.WarnedAt); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *ModerationRepository) CreateAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	const stmt = `
INSERT INTO audit_logs (id, admin_id, action, target_user_id, details, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)`
	_, err := r.exec(ctx, stmt, entry.ID, entry.AdminID, entry.Action, entry.TargetUserID, entry.Details, entry.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

func (r *ModerationRepository) ListAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	const query = `
SELECT id, admin_id, action, COALESCE(target_user_id, ''), COALESCE(details, ''), created_at
FROM audit_logs
ORDER BY created_at DESC
LIMIT $1`
	rows, err := r.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TargetUserID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ModerationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ModerationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ModerationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
