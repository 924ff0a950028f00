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

type loanService struct {
	BaseService
	poster *ledgerPoster
}

// NewLoanService creates the loan lifecycle service.
func NewLoanService(store portsrepo.Store, options ...ServiceOption) portssvc.LoanSvcFacade {
	s := &loanService{BaseService: newBaseService(store, options...)}
	s.poster = &ledgerPoster{BaseService: &s.BaseService}
	return s
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, actor string) (*domain.Loan, error) {
	freq := req.PaymentFrequency
	if freq == "" {
		freq = domain.PayMonthly
	}
	if freq.Months() == 0 {
		return nil, fmt.Errorf("%w: payment frequency %q", apperrors.ErrValidation, freq)
	}
	if req.TermMonths%freq.Months() != 0 {
		return nil, fmt.Errorf("%w: term of %d months is not a whole number of %s periods", apperrors.ErrValidation, req.TermMonths, freq)
	}
	emi, err := accounting.ComputeEMI(req.PrincipalAmount, req.InterestRate, req.TermMonths)
	if err != nil {
		return nil, err
	}

	repos := s.repos()
	if id := domain.Deref(req.AccountID); id != "" {
		acc, err := repos.AccountRepo.FindAccountByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if acc.CurrencyCode != strings.ToUpper(req.CurrencyCode) {
			return nil, fmt.Errorf("%w: loan currency %s does not match account %s (%s)", apperrors.ErrValidation, req.CurrencyCode, id, acc.CurrencyCode)
		}
	}

	reference, err := repos.Sequences.NextReference(ctx, portsrepo.PrefixLoan)
	if err != nil {
		return nil, err
	}
	loan := domain.Loan{
		LoanID:           uuid.NewString(),
		Reference:        reference,
		CustomerRef:      req.CustomerRef,
		AccountID:        domain.StringPtr(domain.Deref(req.AccountID)),
		PrincipalAmount:  req.PrincipalAmount,
		CurrencyCode:     strings.ToUpper(req.CurrencyCode),
		InterestRate:     req.InterestRate,
		TermMonths:       req.TermMonths,
		PaymentFrequency: freq,
		EMIAmount:        emi,
		ApplicationDate:  s.clock.Today(),
		State:            domain.LoanDraft,
		AuditFields:      domain.NewAuditFields(actor, s.clock.Now()),
	}
	if err := repos.LoanRepo.SaveLoan(ctx, loan); err != nil {
		s.LogError(ctx, err, "Failed to save loan", slog.String("customer_ref", req.CustomerRef))
		return nil, err
	}
	s.LogInfo(ctx, "Loan created",
		slog.String("loan_id", loan.LoanID),
		slog.String("reference", reference),
		slog.String("emi", emi.String()))
	return &loan, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.repos().LoanRepo.FindLoanByID(ctx, loanID)
}

func (s *loanService) GetLoanStatus(ctx context.Context, loanID string, asOf time.Time) (*domain.LoanStatus, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	st := loan.Status(accounting.StartOfDay(asOf))
	return &st, nil
}

// advance locks the loan, checks it is in from and moves it to to.
func (s *loanService) advance(ctx context.Context, loanID, actor string, to domain.LoanState, from ...domain.LoanState) (*domain.Loan, error) {
	var result *domain.Loan
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		loan, err := repos.LoanRepo.FindLoanByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if err := requireLoanState(loan, from...); err != nil {
			return err
		}
		now := s.clock.Now()
		loan.State = to
		if to == domain.LoanApproved {
			today := s.clock.Today()
			loan.ApprovalDate = &today
		}
		loan.Touch(actor, now)
		result = loan
		return repos.LoanRepo.UpdateLoan(ctx, *loan)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to change loan state", slog.String("loan_id", loanID), slog.String("target", string(to)))
		return nil, err
	}
	s.LogInfo(ctx, "Loan state changed", slog.String("loan_id", loanID), slog.String("state", string(to)))
	return result, nil
}

func requireLoanState(loan *domain.Loan, allowed ...domain.LoanState) error {
	for _, st := range allowed {
		if loan.State == st {
			return nil
		}
	}
	return fmt.Errorf("%w: loan %s is %s", apperrors.ErrInvalidState, loan.LoanID, loan.State)
}

func (s *loanService) SubmitLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return s.advance(ctx, loanID, actor, domain.LoanSubmitted, domain.LoanDraft)
}

func (s *loanService) ApproveLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return s.advance(ctx, loanID, actor, domain.LoanApproved, domain.LoanSubmitted)
}

func (s *loanService) RejectLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return s.advance(ctx, loanID, actor, domain.LoanRejected, domain.LoanSubmitted)
}

func (s *loanService) MarkDefault(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return s.advance(ctx, loanID, actor, domain.LoanDefaulted, domain.LoanDisbursed)
}

// DisburseLoan stamps the disbursement and maturity dates and writes the
// schedule in the same unit of work.
func (s *loanService) DisburseLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	var result *domain.Loan
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		loan, err := repos.LoanRepo.FindLoanByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if err := requireLoanState(loan, domain.LoanApproved); err != nil {
			return err
		}

		now := s.clock.Now()
		today := s.clock.Today()
		maturity := accounting.AddMonths(today, loan.TermMonths)
		loan.DisbursementDate = &today
		loan.MaturityDate = &maturity
		loan.State = domain.LoanDisbursed
		loan.Touch(actor, now)

		rows, err := accounting.GenerateSchedule(*loan)
		if err != nil {
			return err
		}
		if err := repos.LoanRepo.UpdateLoan(ctx, *loan); err != nil {
			return err
		}
		if err := repos.LoanRepo.SaveLoanPayments(ctx, rows); err != nil {
			return err
		}
		loan.Payments = rows
		out.add(domain.EventLoanDisbursed, loan.LoanID, now, dto.ToLoanResponse(loan, nil))
		result = loan
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to disburse loan", slog.String("loan_id", loanID))
		return nil, err
	}
	s.LogInfo(ctx, "Loan disbursed", slog.String("loan_id", loanID), slog.Int("installments", len(result.Payments)))
	return result, nil
}

func (s *loanService) GenerateSchedule(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	var result *domain.Loan
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		loan, err := repos.LoanRepo.FindLoanByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		rows, err := accounting.GenerateSchedule(*loan)
		if err != nil {
			return err
		}
		if err := repos.LoanRepo.SaveLoanPayments(ctx, rows); err != nil {
			return err
		}
		loan.Payments = rows
		loan.Touch(actor, s.clock.Now())
		result = loan
		return repos.LoanRepo.UpdateLoan(ctx, *loan)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to generate schedule", slog.String("loan_id", loanID))
		return nil, err
	}
	return result, nil
}

// RecordPayment debits the repayment account and applies the amount to one
// schedule row. The loan closes once every row is paid.
func (s *loanService) RecordPayment(ctx context.Context, loanID string, paymentNumber int, amount decimal.Decimal, actor string) (*domain.Loan, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %s must be positive", apperrors.ErrInvalidAmount, amount)
	}

	var result *domain.Loan
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		loan, err := repos.LoanRepo.FindLoanByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if err := requireLoanState(loan, domain.LoanDisbursed, domain.LoanDefaulted); err != nil {
			return err
		}
		if loan.AccountID == nil {
			return fmt.Errorf("%w: loan %s has no repayment account", apperrors.ErrMissingPrerequisite, loanID)
		}

		idx := -1
		for i := range loan.Payments {
			if loan.Payments[i].PaymentNumber == paymentNumber {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: loan %s has no installment %d", apperrors.ErrNotFound, loanID, paymentNumber)
		}
		row := &loan.Payments[idx]
		if row.State == domain.PaymentPaid {
			return fmt.Errorf("%w: installment %d is already paid", apperrors.ErrInvalidState, paymentNumber)
		}
		if outstanding := row.OutstandingAmount(); amount.GreaterThan(outstanding) {
			return fmt.Errorf("%w: amount %s exceeds outstanding %s on installment %d", apperrors.ErrInvalidAmount, amount, outstanding, paymentNumber)
		}

		txn, err := s.poster.createAndPost(ctx, repos, out, postingRequest{
			Type:         domain.TxPayment,
			AccountID:    *loan.AccountID,
			Amount:       amount,
			CurrencyCode: loan.CurrencyCode,
			Reference:    fmt.Sprintf("%s-%03d", loan.Reference, paymentNumber),
			Description:  fmt.Sprintf("Loan %s installment %d", loan.Reference, paymentNumber),
		}, actor)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		today := s.clock.Today()
		row.PaidAmount = row.PaidAmount.Add(amount)
		row.PaymentDate = &today
		row.TransactionID = &txn.TransactionID
		if row.PaidAmount.GreaterThanOrEqual(row.TotalAmount()) {
			row.State = domain.PaymentPaid
		} else {
			row.State = domain.PaymentPartial
		}
		if err := repos.LoanRepo.UpdateLoanPayment(ctx, *row); err != nil {
			return err
		}

		if allPaid(loan.Payments) {
			loan.State = domain.LoanClosed
		}
		loan.Touch(actor, now)
		result = loan
		return repos.LoanRepo.UpdateLoan(ctx, *loan)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record loan payment",
			slog.String("loan_id", loanID),
			slog.Int("payment_number", paymentNumber))
		return nil, err
	}
	s.LogInfo(ctx, "Loan payment recorded",
		slog.String("loan_id", loanID),
		slog.Int("payment_number", paymentNumber),
		slog.String("amount", amount.String()))
	return result, nil
}

func allPaid(rows []domain.LoanPayment) bool {
	if len(rows) == 0 {
		return false
	}
	for _, p := range rows {
		if p.State != domain.PaymentPaid {
			return false
		}
	}
	return true
}

func (s *loanService) RefreshOverdue(ctx context.Context, today time.Time) (int, error) {
	n, err := s.repos().LoanRepo.MarkOverduePayments(ctx, accounting.StartOfDay(today))
	if err != nil {
		s.LogError(ctx, err, "Failed to refresh overdue installments")
		return 0, err
	}
	if n > 0 {
		s.LogInfo(ctx, "Installments marked overdue", slog.Int("count", n))
	}
	return n, nil
}
