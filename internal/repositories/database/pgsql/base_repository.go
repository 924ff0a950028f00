// Package pgsql implements the repository ports on PostgreSQL through pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code runs in autocommit mode or inside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db querier
}

// Postgres error codes the ledger reacts to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgLockNotAvailable    = "55P03"
)

// mapError translates driver errors into apperrors sentinels. what names the
// failed operation for the wrapped message.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, what, pgErr.ConstraintName)
		case pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, what, pgErr.ConstraintName)
		case pgSerializationFail, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrConflict, what, pgErr.Message)
		}
	}
	return apperrors.NewAppError(500, "failed to "+what, err)
}

// notFound wraps ErrNotFound when err is pgx.ErrNoRows.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return mapError(err, "find "+what)
}

// execBatch sends b and checks that every statement touched at least one row.
func (r *BaseRepository) execBatch(ctx context.Context, b *pgx.Batch, what string, keys []string) error {
	br := r.db.SendBatch(ctx, b)
	var batchErr error
	for i := 0; i < b.Len(); i++ {
		ct, err := br.Exec()
		if batchErr != nil {
			continue
		}
		if err != nil {
			batchErr = mapError(err, fmt.Sprintf("%s %s", what, keys[i]))
		} else if ct.RowsAffected() == 0 {
			batchErr = fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, what, keys[i])
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = mapError(err, what)
	}
	return batchErr
}

// requireAffected turns a zero row count into ErrNotFound.
func requireAffected(ct pgconn.CommandTag, what string) error {
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return nil
}

// isUUID reports whether id can be bound to a uuid column. Anything else
// cannot match a row.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs drops ids that are not UUIDs.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}
