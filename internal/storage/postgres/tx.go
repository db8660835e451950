package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// roundLockID serializes claim transactions for the active round. The lock
// is transaction-scoped and released on commit/rollback.
const roundLockID int64 = 730159024

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// withRoundTx wraps fn in a transaction that holds the round advisory lock,
// so concurrent claim checks never interleave their read-decide-write.
func withRoundTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	return withTx(ctx, pool, func(txCtx context.Context) error {
		if tx := txFromContext(txCtx); tx != nil {
			if _, err := tx.Exec(txCtx, `SELECT pg_advisory_xact_lock($1)`, roundLockID); err != nil {
				return err
			}
		}
		return fn(txCtx)
	})
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
