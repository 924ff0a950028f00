package pgsql

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/models"
	"github.com/SscSPs/core_banking_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxAccountRepository struct {
	BaseRepository
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, account_number, name, customer_ref, currency_code, balance,
	hold_amount, overdraft_allowed, overdraft_limit, state, last_transaction_at,
	activated_at, closed_at, created_at, created_by, last_updated_at, last_updated_by`

const selectAccounts = `SELECT` + accountColumns + ` FROM accounts `

func (r *PgxAccountRepository) getAccounts(ctx context.Context, filterQuery string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, selectAccounts+filterQuery, args...)
	if err != nil {
		return nil, mapError(err, "query accounts")
	}
	modelAccounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, mapError(err, "collect account rows")
	}
	return mapping.ToDomainAccountSlice(modelAccounts), nil
}

func (r *PgxAccountRepository) getAccount(ctx context.Context, what string, filterQuery string, args ...any) (*domain.Account, error) {
	rows, err := r.db.Query(ctx, selectAccounts+filterQuery, args...)
	if err != nil {
		return nil, mapError(err, "query account")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, notFound(err, what)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if !isUUID(accountID) {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return r.getAccount(ctx, "account "+accountID, `WHERE account_id = $1`, accountID)
}

func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.getAccount(ctx, "account number "+accountNumber, `WHERE account_number = $1`, accountNumber)
}

// FindAccountsByIDs retrieves multiple accounts by their IDs. Unknown ids are
// simply absent from the result.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	ids := validIDs(accountIDs)
	if len(ids) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := r.getAccounts(ctx, `WHERE account_id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	return r.getAccounts(ctx, `ORDER BY account_number LIMIT $1 OFFSET $2`, limit, offset)
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		m.AccountID, m.AccountNumber, m.Name, m.CustomerRef, m.CurrencyCode, m.Balance,
		m.HoldAmount, m.OverdraftAllowed, m.OverdraftLimit, m.State, m.LastTransactionAt,
		m.ActivatedAt, m.ClosedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError(err, "save account "+account.AccountID)
}

// UpdateAccount writes everything except the balance and last transaction time.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	ct, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET name = $2, hold_amount = $3, overdraft_allowed = $4, overdraft_limit = $5,
			state = $6, activated_at = $7, closed_at = $8, last_updated_at = $9, last_updated_by = $10
		WHERE account_id = $1`,
		m.AccountID, m.Name, m.HoldAmount, m.OverdraftAllowed, m.OverdraftLimit,
		m.State, m.ActivatedAt, m.ClosedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "update account "+account.AccountID)
	}
	return requireAffected(ct, "account "+account.AccountID)
}

// FindAccountsByIDsForUpdate locks the rows in ascending id order so two
// units touching the same pair of accounts cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	ids := uniqueSorted(accountIDs)
	if len(ids) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := r.getAccounts(ctx, `WHERE account_id = ANY($1::uuid[]) ORDER BY account_id FOR UPDATE`, validIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}
	return out, nil
}

// UpdateAccountBalances writes absolute balances; the rows are already locked.
func (r *PgxAccountRepository) UpdateAccountBalances(ctx context.Context, accounts []domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	keys := make([]string, 0, len(accounts))
	for _, a := range accounts {
		b.Queue(`
			UPDATE accounts
			SET balance = $2, last_transaction_at = $3, last_updated_at = $4, last_updated_by = $5
			WHERE account_id = $1`,
			a.AccountID, a.Balance, a.LastTransactionAt, a.LastUpdatedAt, a.LastUpdatedBy)
		keys = append(keys, a.AccountID)
	}
	return r.execBatch(ctx, b, "update balance of account", keys)
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
