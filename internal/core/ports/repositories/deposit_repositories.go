package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// DepositReader defines read operations for fixed deposits
type DepositReader interface {
	FindDepositByID(ctx context.Context, depositID string) (*domain.FixedDeposit, error)

	// FindMaturedDeposits returns active deposits whose maturity date is on or before today.
	FindMaturedDeposits(ctx context.Context, today time.Time) ([]domain.FixedDeposit, error)
}

// DepositWriter defines write operations for fixed deposits
type DepositWriter interface {
	SaveDeposit(ctx context.Context, deposit domain.FixedDeposit) error
	UpdateDeposit(ctx context.Context, deposit domain.FixedDeposit) error
}

// DepositLocker locks a deposit row.
type DepositLocker interface {
	FindDepositByIDForUpdate(ctx context.Context, depositID string) (*domain.FixedDeposit, error)
}

// DepositRepositoryFacade combines all deposit repository interfaces
type DepositRepositoryFacade interface {
	DepositReader
	DepositWriter
	DepositLocker
}
