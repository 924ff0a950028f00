package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
)

type loanRepo struct{ *view }

var _ portsrepo.LoanRepositoryFacade = (*loanRepo)(nil)

func (r *loanRepo) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	var (
		loan domain.Loan
		ok   bool
	)
	r.read(func(c, st *dataset) {
		loan, ok = lookup(c.loans, st.loans, loanID)
		if !ok {
			return
		}
		loan.Payments = nil
		for _, p := range merged(c.loanPayments, st.loanPayments) {
			if p.LoanID == loanID {
				loan.Payments = append(loan.Payments, p)
			}
		}
	})
	if !ok {
		return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
	}
	sort.Slice(loan.Payments, func(i, j int) bool { return loan.Payments[i].PaymentNumber < loan.Payments[j].PaymentNumber })
	return &loan, nil
}

func (r *loanRepo) FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if err := r.lock(ctx, "loan", loanID); err != nil {
		return nil, err
	}
	return r.FindLoanByID(ctx, loanID)
}

func (r *loanRepo) SaveLoan(ctx context.Context, loan domain.Loan) error {
	return r.write(func(c, st *dataset) error {
		if _, exists := lookup(c.loans, st.loans, loan.LoanID); exists {
			return fmt.Errorf("%w: loan %s", apperrors.ErrDuplicate, loan.LoanID)
		}
		loan.Payments = nil
		st.loans[loan.LoanID] = loan
		return nil
	})
}

// UpdateLoan writes the loan header; schedule rows go through the payment methods.
func (r *loanRepo) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	return r.write(func(c, st *dataset) error {
		if _, ok := lookup(c.loans, st.loans, loan.LoanID); !ok {
			return fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loan.LoanID)
		}
		loan.Payments = nil
		st.loans[loan.LoanID] = loan
		return nil
	})
}

func (r *loanRepo) SaveLoanPayments(ctx context.Context, payments []domain.LoanPayment) error {
	return r.write(func(c, st *dataset) error {
		for _, p := range payments {
			key := paymentKey(p.LoanID, p.PaymentNumber)
			if _, exists := lookup(c.loanPayments, st.loanPayments, key); exists {
				return fmt.Errorf("%w: loan %s payment %d", apperrors.ErrDuplicate, p.LoanID, p.PaymentNumber)
			}
			st.loanPayments[key] = p
		}
		return nil
	})
}

func (r *loanRepo) UpdateLoanPayment(ctx context.Context, payment domain.LoanPayment) error {
	return r.write(func(c, st *dataset) error {
		key := paymentKey(payment.LoanID, payment.PaymentNumber)
		if _, ok := lookup(c.loanPayments, st.loanPayments, key); !ok {
			return fmt.Errorf("%w: loan %s payment %d", apperrors.ErrNotFound, payment.LoanID, payment.PaymentNumber)
		}
		st.loanPayments[key] = payment
		return nil
	})
}

// MarkOverduePayments flags pending and partial rows of disbursed loans.
func (r *loanRepo) MarkOverduePayments(ctx context.Context, today time.Time) (int, error) {
	changed := 0
	err := r.write(func(c, st *dataset) error {
		for key, p := range merged(c.loanPayments, st.loanPayments) {
			if p.State != domain.PaymentPending && p.State != domain.PaymentPartial {
				continue
			}
			if !p.DueDate.Before(today) {
				continue
			}
			if loan, ok := lookup(c.loans, st.loans, p.LoanID); !ok || loan.State != domain.LoanDisbursed {
				continue
			}
			p.State = domain.PaymentOverdue
			st.loanPayments[key] = p
			changed++
		}
		return nil
	})
	return changed, err
}
