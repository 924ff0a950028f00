package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type depositService struct {
	BaseService
	poster *ledgerPoster
}

// NewDepositService creates the fixed deposit service.
func NewDepositService(store portsrepo.Store, options ...ServiceOption) portssvc.DepositSvcFacade {
	s := &depositService{BaseService: newBaseService(store, options...)}
	s.poster = &ledgerPoster{BaseService: &s.BaseService}
	return s
}

var _ portssvc.DepositSvcFacade = (*depositService)(nil)

func (s *depositService) CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, actor string) (*domain.FixedDeposit, error) {
	mode := req.Compounding
	if mode == "" {
		mode = domain.CompoundingSimple
	}
	if req.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate %s", apperrors.ErrValidation, req.InterestRate)
	}
	maturityAmount, err := accounting.MaturityAmount(req.PrincipalAmount, req.InterestRate, req.TermMonths, mode)
	if err != nil {
		return nil, err
	}
	penalty := accounting.DefaultEarlyWithdrawalPenalty
	if req.EarlyWithdrawalPenaltyRate != nil {
		if req.EarlyWithdrawalPenaltyRate.IsNegative() || req.EarlyWithdrawalPenaltyRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: penalty rate %s", apperrors.ErrValidation, req.EarlyWithdrawalPenaltyRate)
		}
		penalty = *req.EarlyWithdrawalPenaltyRate
	}
	allowEarly := true
	if req.AllowEarlyWithdrawal != nil {
		allowEarly = *req.AllowEarlyWithdrawal
	}

	repos := s.repos()
	acc, err := repos.AccountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, req.AccountID)
	}
	currency := strings.ToUpper(req.CurrencyCode)
	if acc.CurrencyCode != currency {
		return nil, fmt.Errorf("%w: deposit currency %s does not match account %s (%s)", apperrors.ErrValidation, currency, acc.AccountID, acc.CurrencyCode)
	}

	start := s.clock.Today()
	if req.DepositDate != nil {
		start = accounting.StartOfDay(*req.DepositDate)
	}
	reference, err := repos.Sequences.NextReference(ctx, portsrepo.PrefixDeposit)
	if err != nil {
		return nil, err
	}
	fd := domain.FixedDeposit{
		DepositID:                  uuid.NewString(),
		Reference:                  reference,
		CustomerRef:                req.CustomerRef,
		AccountID:                  req.AccountID,
		PrincipalAmount:            req.PrincipalAmount,
		CurrencyCode:               currency,
		InterestRate:               req.InterestRate,
		TermMonths:                 req.TermMonths,
		Compounding:                mode,
		DepositDate:                start,
		MaturityDate:               accounting.AddMonths(start, req.TermMonths),
		MaturityAmount:             maturityAmount,
		AllowEarlyWithdrawal:       allowEarly,
		EarlyWithdrawalPenaltyRate: penalty,
		State:                      domain.DepositDraft,
		AuditFields:                domain.NewAuditFields(actor, s.clock.Now()),
	}
	if err := repos.DepositRepo.SaveDeposit(ctx, fd); err != nil {
		s.LogError(ctx, err, "Failed to save deposit", slog.String("account_id", req.AccountID))
		return nil, err
	}
	s.LogInfo(ctx, "Fixed deposit created",
		slog.String("deposit_id", fd.DepositID),
		slog.String("reference", reference),
		slog.String("maturity_amount", maturityAmount.String()))
	return &fd, nil
}

func (s *depositService) GetDeposit(ctx context.Context, depositID string) (*domain.FixedDeposit, error) {
	return s.repos().DepositRepo.FindDepositByID(ctx, depositID)
}

func (s *depositService) ValueDeposit(ctx context.Context, depositID string, asOf time.Time) (*domain.DepositValuation, error) {
	fd, err := s.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, err
	}
	v := accounting.ValueDeposit(*fd, accounting.StartOfDay(asOf))
	return &v, nil
}

func (s *depositService) ActivateDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, error) {
	var result *domain.FixedDeposit
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		fd, err := repos.DepositRepo.FindDepositByIDForUpdate(ctx, depositID)
		if err != nil {
			return err
		}
		if fd.State != domain.DepositDraft {
			return fmt.Errorf("%w: deposit %s is %s", apperrors.ErrInvalidState, depositID, fd.State)
		}
		fd.State = domain.DepositActive
		fd.Touch(actor, s.clock.Now())
		result = fd
		return repos.DepositRepo.UpdateDeposit(ctx, *fd)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to activate deposit", slog.String("deposit_id", depositID))
		return nil, err
	}
	return result, nil
}

func (s *depositService) MatureDeposit(ctx context.Context, depositID string, actor string) (fd *domain.FixedDeposit, payout *domain.DepositPayout, err error) {
	defer func() { s.metrics.RecordDepositMatured(err == nil) }()

	err = s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		d, err := repos.DepositRepo.FindDepositByIDForUpdate(ctx, depositID)
		if err != nil {
			return err
		}
		if d.State != domain.DepositActive {
			return fmt.Errorf("%w: deposit %s is %s", apperrors.ErrInvalidState, depositID, d.State)
		}

		txn, err := s.payout(ctx, repos, out, d, d.MaturityAmount, "Maturity of fixed deposit "+d.Reference, actor)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		d.State = domain.DepositMatured
		d.ClosedAt = &now
		d.PayoutTransactionID = &txn.TransactionID
		d.Touch(actor, now)
		if err := repos.DepositRepo.UpdateDeposit(ctx, *d); err != nil {
			return err
		}
		out.add(domain.EventDepositMatured, d.DepositID, now, dto.ToDepositResponse(d, nil))
		fd = d
		payout = &domain.DepositPayout{
			Gross:   d.MaturityAmount,
			Penalty: decimal.Zero,
			Net:     d.MaturityAmount,
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to mature deposit", slog.String("deposit_id", depositID))
		return nil, nil, err
	}
	s.LogInfo(ctx, "Fixed deposit matured",
		slog.String("deposit_id", depositID),
		slog.String("amount", fd.MaturityAmount.String()))
	return fd, payout, nil
}

// payout credits amount to the deposit's linked account.
func (s *depositService) payout(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox, fd *domain.FixedDeposit, amount decimal.Decimal, description, actor string) (*domain.Transaction, error) {
	return s.poster.createAndPost(ctx, repos, out, postingRequest{
		Type:         domain.TxDeposit,
		AccountID:    fd.AccountID,
		Amount:       amount,
		CurrencyCode: fd.CurrencyCode,
		Reference:    fd.Reference,
		Description:  description,
	}, actor)
}

func (s *depositService) WithdrawEarly(ctx context.Context, depositID string, amount *decimal.Decimal, actor string) (*domain.FixedDeposit, *domain.DepositPayout, error) {
	var (
		result   *domain.FixedDeposit
		breakout domain.DepositPayout
	)
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		fd, err := repos.DepositRepo.FindDepositByIDForUpdate(ctx, depositID)
		if err != nil {
			return err
		}
		if fd.State != domain.DepositActive {
			return fmt.Errorf("%w: deposit %s is %s", apperrors.ErrInvalidState, depositID, fd.State)
		}
		if !fd.AllowEarlyWithdrawal {
			return fmt.Errorf("%w: deposit %s does not allow early withdrawal", apperrors.ErrInvalidState, depositID)
		}

		current := accounting.ValueDeposit(*fd, s.clock.Today()).CurrentValue
		gross := current
		if amount != nil {
			if !amount.IsPositive() {
				return fmt.Errorf("%w: amount %s must be positive", apperrors.ErrInvalidAmount, amount)
			}
			if amount.GreaterThan(current) {
				return fmt.Errorf("%w: amount %s exceeds current value %s", apperrors.ErrInvalidAmount, amount, current)
			}
			gross = *amount
		}
		breakout = accounting.SplitEarlyWithdrawal(gross, fd.EarlyWithdrawalPenaltyRate)
		if !breakout.Net.IsPositive() {
			return fmt.Errorf("%w: net payout %s after penalty", apperrors.ErrInvalidAmount, breakout.Net)
		}

		txn, err := s.payout(ctx, repos, out, fd, breakout.Net, "Early withdrawal of fixed deposit "+fd.Reference, actor)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		fd.State = domain.DepositWithdrawn
		fd.ClosedAt = &now
		fd.PayoutTransactionID = &txn.TransactionID
		fd.Touch(actor, now)
		result = fd
		return repos.DepositRepo.UpdateDeposit(ctx, *fd)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to withdraw deposit early", slog.String("deposit_id", depositID))
		return nil, nil, err
	}
	s.LogInfo(ctx, "Fixed deposit withdrawn early",
		slog.String("deposit_id", depositID),
		slog.String("gross", breakout.Gross.String()),
		slog.String("penalty", breakout.Penalty.String()))
	return result, &breakout, nil
}

// RenewDeposit opens a new draft deposit for the maturity amount on the
// same terms. The original is marked renewed.
func (s *depositService) RenewDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, error) {
	var renewed *domain.FixedDeposit
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		fd, err := repos.DepositRepo.FindDepositByIDForUpdate(ctx, depositID)
		if err != nil {
			return err
		}
		if fd.State != domain.DepositMatured {
			return fmt.Errorf("%w: deposit %s is %s, only matured deposits can be renewed", apperrors.ErrInvalidState, depositID, fd.State)
		}

		maturityAmount, err := accounting.MaturityAmount(fd.MaturityAmount, fd.InterestRate, fd.TermMonths, fd.Compounding)
		if err != nil {
			return err
		}
		reference, err := repos.Sequences.NextReference(ctx, portsrepo.PrefixDeposit)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		today := s.clock.Today()
		origID := fd.DepositID
		next := domain.FixedDeposit{
			DepositID:                  uuid.NewString(),
			Reference:                  reference,
			CustomerRef:                fd.CustomerRef,
			AccountID:                  fd.AccountID,
			PrincipalAmount:            fd.MaturityAmount,
			CurrencyCode:               fd.CurrencyCode,
			InterestRate:               fd.InterestRate,
			TermMonths:                 fd.TermMonths,
			Compounding:                fd.Compounding,
			DepositDate:                today,
			MaturityDate:               accounting.AddMonths(today, fd.TermMonths),
			MaturityAmount:             maturityAmount,
			AllowEarlyWithdrawal:       fd.AllowEarlyWithdrawal,
			EarlyWithdrawalPenaltyRate: fd.EarlyWithdrawalPenaltyRate,
			State:                      domain.DepositDraft,
			RenewedFromID:              &origID,
			AuditFields:                domain.NewAuditFields(actor, now),
		}
		if err := repos.DepositRepo.SaveDeposit(ctx, next); err != nil {
			return err
		}

		fd.State = domain.DepositRenewed
		fd.Touch(actor, now)
		if err := repos.DepositRepo.UpdateDeposit(ctx, *fd); err != nil {
			return err
		}
		renewed = &next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to renew deposit", slog.String("deposit_id", depositID))
		return nil, err
	}
	s.LogInfo(ctx, "Fixed deposit renewed",
		slog.String("deposit_id", depositID),
		slog.String("renewed_id", renewed.DepositID))
	return renewed, nil
}

// MatureDueDeposits matures each due deposit in its own unit of work.
func (s *depositService) MatureDueDeposits(ctx context.Context, today time.Time) (*domain.MaturityRunResult, error) {
	today = accounting.StartOfDay(today)
	result := &domain.MaturityRunResult{RunDate: today}

	due, err := s.repos().DepositRepo.FindMaturedDeposits(ctx, today)
	if err != nil {
		s.LogError(ctx, err, "Failed to load matured deposits")
		return nil, err
	}
	for _, fd := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, _, err := s.MatureDeposit(ctx, fd.DepositID, domain.SystemActor); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", fd.Reference, err))
			continue
		}
		result.Matured++
	}
	if len(due) > 0 {
		s.LogInfo(ctx, "Deposit maturity run finished",
			slog.Int("matured", result.Matured),
			slog.Int("failed", result.Failed))
	}
	return result, nil
}
