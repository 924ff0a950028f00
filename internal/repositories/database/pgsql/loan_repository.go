package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/models"
	"github.com/SscSPs/core_banking_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxLoanRepository struct {
	BaseRepository
}

var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

const loanColumns = `
	loan_id, reference, customer_ref, account_id, principal_amount, currency_code,
	interest_rate, term_months, payment_frequency, emi_amount, application_date,
	approval_date, disbursement_date, maturity_date, state, created_at, created_by,
	last_updated_at, last_updated_by`

var loanPaymentColumns = []string{
	"loan_id", "payment_number", "due_date", "principal_amount", "interest_amount",
	"penalty_amount", "paid_amount", "payment_date", "transaction_id", "state",
}

func (r *PgxLoanRepository) getLoan(ctx context.Context, loanID string, lock bool) (*domain.Loan, error) {
	if !isUUID(loanID) {
		return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
	}
	query := `SELECT` + loanColumns + ` FROM loans WHERE loan_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, mapError(err, "query loan")
	}
	header, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Loan])
	if err != nil {
		return nil, notFound(err, "loan "+loanID)
	}

	rows, err = r.db.Query(ctx, `
		SELECT loan_id, payment_number, due_date, principal_amount, interest_amount,
			penalty_amount, paid_amount, payment_date, transaction_id, state
		FROM loan_payments WHERE loan_id = $1 ORDER BY payment_number`, loanID)
	if err != nil {
		return nil, mapError(err, "query loan payments")
	}
	payments, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LoanPayment])
	if err != nil {
		return nil, mapError(err, "collect loan payment rows")
	}

	loan := mapping.ToDomainLoan(header)
	for _, p := range payments {
		loan.Payments = append(loan.Payments, mapping.ToDomainLoanPayment(p))
	}
	return &loan, nil
}

// FindLoanByID returns the loan with its schedule ordered by payment number.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return r.getLoan(ctx, loanID, false)
}

func (r *PgxLoanRepository) FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	return r.getLoan(ctx, loanID, true)
}

func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)
	_, err := r.db.Exec(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		m.LoanID, m.Reference, m.CustomerRef, m.AccountID, m.PrincipalAmount, m.CurrencyCode,
		m.InterestRate, m.TermMonths, m.PaymentFrequency, m.EMIAmount, m.ApplicationDate,
		m.ApprovalDate, m.DisbursementDate, m.MaturityDate, m.State, m.CreatedAt, m.CreatedBy,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError(err, "save loan "+loan.LoanID)
}

// UpdateLoan writes the loan header; schedule rows go through the payment methods.
func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)
	ct, err := r.db.Exec(ctx, `
		UPDATE loans
		SET state = $2, approval_date = $3, disbursement_date = $4, maturity_date = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE loan_id = $1`,
		m.LoanID, m.State, m.ApprovalDate, m.DisbursementDate, m.MaturityDate,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "update loan "+loan.LoanID)
	}
	return requireAffected(ct, "loan "+loan.LoanID)
}

// SaveLoanPayments bulk loads schedule rows with COPY.
func (r *PgxLoanRepository) SaveLoanPayments(ctx context.Context, payments []domain.LoanPayment) error {
	if len(payments) == 0 {
		return nil
	}
	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"loan_payments"}, loanPaymentColumns,
		pgx.CopyFromSlice(len(payments), func(i int) ([]any, error) {
			p := mapping.ToModelLoanPayment(payments[i])
			return []any{
				p.LoanID, p.PaymentNumber, p.DueDate, p.PrincipalAmount, p.InterestAmount,
				p.PenaltyAmount, p.PaidAmount, p.PaymentDate, p.TransactionID, p.State,
			}, nil
		}))
	if err != nil {
		return mapError(err, "save loan payments")
	}
	if int(n) != len(payments) {
		return apperrors.NewAppError(500, fmt.Sprintf("saved %d of %d loan payments", n, len(payments)), nil)
	}
	return nil
}

func (r *PgxLoanRepository) UpdateLoanPayment(ctx context.Context, payment domain.LoanPayment) error {
	p := mapping.ToModelLoanPayment(payment)
	ct, err := r.db.Exec(ctx, `
		UPDATE loan_payments
		SET penalty_amount = $3, paid_amount = $4, payment_date = $5, transaction_id = $6, state = $7
		WHERE loan_id = $1 AND payment_number = $2`,
		p.LoanID, p.PaymentNumber, p.PenaltyAmount, p.PaidAmount, p.PaymentDate, p.TransactionID, p.State,
	)
	what := fmt.Sprintf("loan %s payment %d", payment.LoanID, payment.PaymentNumber)
	if err != nil {
		return mapError(err, "update "+what)
	}
	return requireAffected(ct, what)
}

// MarkOverduePayments flags pending and partial rows of disbursed loans.
func (r *PgxLoanRepository) MarkOverduePayments(ctx context.Context, today time.Time) (int, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE loan_payments p
		SET state = 'overdue'
		FROM loans l
		WHERE p.loan_id = l.loan_id
			AND l.state = 'disbursed'
			AND p.state IN ('pending', 'partial')
			AND p.due_date < $1`, today)
	if err != nil {
		return 0, mapError(err, "mark overdue loan payments")
	}
	return int(ct.RowsAffected()), nil
}
