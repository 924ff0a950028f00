package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/models"
	"github.com/SscSPs/core_banking_ledger/internal/utils/mapping"
	"github.com/SscSPs/core_banking_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxTransactionRepository struct {
	BaseRepository
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `
	transaction_id, reference, transaction_type, account_id, destination_account_id,
	amount, currency_code, exchange_rate, state, reversed_entry_id, reversal_id,
	transaction_date, value_date, description, posted_by, posted_at, reconciled_by,
	reconciled_at, channel, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxTransactionRepository) getTransactions(ctx context.Context, filterQuery string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `SELECT`+transactionColumns+` FROM transactions `+filterQuery, args...)
	if err != nil {
		return nil, mapError(err, "query transactions")
	}
	modelTxns, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, mapError(err, "collect transaction rows")
	}
	out := make([]domain.Transaction, 0, len(modelTxns))
	for _, m := range modelTxns {
		t, err := mapping.ToDomainTransaction(m)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *PgxTransactionRepository) getTransaction(ctx context.Context, transactionID string, lock bool) (*domain.Transaction, error) {
	if !isUUID(transactionID) {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	filter := `WHERE transaction_id = $1`
	if lock {
		filter += ` FOR UPDATE`
	}
	txns, err := r.getTransactions(ctx, filter, transactionID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return &txns[0], nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.getTransaction(ctx, transactionID, false)
}

func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.getTransaction(ctx, transactionID, true)
}

// ListTransactionsByAccountID pages newest first using a keyset on
// (transaction_date, created_at, transaction_id). One extra row is fetched
// to decide whether a next token is needed.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if !isUUID(accountID) {
		return []domain.Transaction{}, nil, nil
	}

	query := `WHERE (account_id = $1 OR destination_account_id = $1)`
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (transaction_date, created_at, transaction_id) < ($2, $3, $4::uuid)`
		args = append(args, cursor.TransactionDate, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit+1)
	}

	txns, err := r.getTransactions(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 || len(txns) <= limit {
		return txns, nil, nil
	}
	txns = txns[:limit]
	last := txns[limit-1]
	token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt, last.TransactionID)
	return txns, &token, nil
}

func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m, err := mapping.ToModelTransaction(txn)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		m.TransactionID, m.Reference, m.TransactionType, m.AccountID, m.DestinationAccountID,
		m.Amount, m.CurrencyCode, m.ExchangeRate, m.State, m.ReversedEntryID, m.ReversalID,
		m.TransactionDate, m.ValueDate, m.Description, m.PostedBy, m.PostedAt, m.ReconciledBy,
		m.ReconciledAt, m.Channel, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError(err, "save transaction "+txn.TransactionID)
}

// UpdateTransaction writes the mutable lifecycle columns.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	m, err := mapping.ToModelTransaction(txn)
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET state = $2, reversal_id = $3, posted_by = $4, posted_at = $5,
			reconciled_by = $6, reconciled_at = $7, last_updated_at = $8, last_updated_by = $9
		WHERE transaction_id = $1`,
		m.TransactionID, m.State, m.ReversalID, m.PostedBy, m.PostedAt,
		m.ReconciledBy, m.ReconciledAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "update transaction "+txn.TransactionID)
	}
	return requireAffected(ct, "transaction "+txn.TransactionID)
}
