package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL implementation of portsrepo.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ portsrepo.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTransaction runs fn in a READ COMMITTED transaction. Row locks
// come from SELECT ... FOR UPDATE in the *ForUpdate repository methods.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos portsrepo.RepositoryProvider) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			err = fmt.Errorf("panic in unit of work: %v", p)
			return
		}
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				middleware.GetLoggerFromCtx(ctx).Error("Failed to roll back transaction", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if err = fn(ctx, newRepositoryProvider(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return mapError(err, "commit transaction")
	}
	return nil
}

// Repositories returns repositories that run each statement on its own.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return newRepositoryProvider(s.pool)
}

func newRepositoryProvider(db querier) portsrepo.RepositoryProvider {
	base := BaseRepository{db: db}
	return portsrepo.RepositoryProvider{
		AccountRepo:     &PgxAccountRepository{base},
		TransactionRepo: &PgxTransactionRepository{base},
		BatchRepo:       &PgxBatchRepository{base},
		InstructionRepo: &PgxInstructionRepository{base},
		ScheduledRepo:   &PgxScheduledRepository{base},
		LoanRepo:        &PgxLoanRepository{base},
		DepositRepo:     &PgxDepositRepository{base},
		Sequences:       &PgxSequences{base},
	}
}
