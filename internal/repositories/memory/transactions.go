package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/utils/pagination"
)

type transactionRepo struct{ *view }

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepo)(nil)

func (r *transactionRepo) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var (
		txn domain.Transaction
		ok  bool
	)
	r.read(func(c, st *dataset) { txn, ok = lookup(c.transactions, st.transactions, transactionID) })
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return &txn, nil
}

func (r *transactionRepo) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if err := r.lock(ctx, "transaction", transactionID); err != nil {
		return nil, err
	}
	return r.FindTransactionByID(ctx, transactionID)
}

// ListTransactionsByAccountID pages newest first, fetching one extra row to
// decide whether a next token is needed.
func (r *transactionRepo) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	var rows []domain.Transaction
	r.read(func(c, st *dataset) {
		for _, t := range merged(c.transactions, st.transactions) {
			if t.AccountID != accountID && domain.Deref(t.DestinationAccountID) != accountID {
				continue
			}
			if cursor != nil && !cursor.Before(t.TransactionDate, t.CreatedAt, t.TransactionID) {
				continue
			}
			rows = append(rows, t)
		}
	})

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.TransactionID > b.TransactionID
	})

	if limit <= 0 || len(rows) <= limit {
		return rows, nil, nil
	}
	rows = rows[:limit]
	last := rows[limit-1]
	token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt, last.TransactionID)
	return rows, &token, nil
}

func (r *transactionRepo) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.write(func(c, st *dataset) error {
		if _, exists := lookup(c.transactions, st.transactions, txn.TransactionID); exists {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		st.transactions[txn.TransactionID] = cloneTransaction(txn)
		return nil
	})
}

func (r *transactionRepo) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.write(func(c, st *dataset) error {
		if _, ok := lookup(c.transactions, st.transactions, txn.TransactionID); !ok {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, txn.TransactionID)
		}
		st.transactions[txn.TransactionID] = cloneTransaction(txn)
		return nil
	})
}

func cloneTransaction(t domain.Transaction) domain.Transaction {
	if t.Channel != nil {
		ch := *t.Channel
		t.Channel = &ch
	}
	return t
}
