package services

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// DepositReaderSvc defines read operations for fixed deposits
type DepositReaderSvc interface {
	GetDeposit(ctx context.Context, depositID string) (*domain.FixedDeposit, error)

	// ValueDeposit returns accrued interest and current value as of asOf.
	ValueDeposit(ctx context.Context, depositID string, asOf time.Time) (*domain.DepositValuation, error)
}

// DepositWriterSvc defines the fixed deposit lifecycle
type DepositWriterSvc interface {
	CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, actor string) (*domain.FixedDeposit, error)
	ActivateDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, error)

	// MatureDeposit credits the maturity amount to the linked account.
	MatureDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, *domain.DepositPayout, error)

	// WithdrawEarly pays out amount (current value when nil) less the penalty.
	WithdrawEarly(ctx context.Context, depositID string, amount *decimal.Decimal, actor string) (*domain.FixedDeposit, *domain.DepositPayout, error)

	// RenewDeposit rolls a matured deposit into a new draft deposit.
	RenewDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, error)

	// MatureDueDeposits matures every active deposit whose maturity date has passed.
	MatureDueDeposits(ctx context.Context, today time.Time) (*domain.MaturityRunResult, error)
}

// DepositSvcFacade combines all deposit service interfaces
type DepositSvcFacade interface {
	DepositReaderSvc
	DepositWriterSvc
}
