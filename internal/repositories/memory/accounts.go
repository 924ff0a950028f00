package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
)

type accountRepo struct{ *view }

var _ portsrepo.AccountRepositoryFacade = (*accountRepo)(nil)

func (r *accountRepo) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var (
		acc domain.Account
		ok  bool
	)
	r.read(func(c, st *dataset) { acc, ok = lookup(c.accounts, st.accounts, accountID) })
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

func (r *accountRepo) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	var (
		acc   domain.Account
		found bool
	)
	r.read(func(c, st *dataset) {
		for _, a := range merged(c.accounts, st.accounts) {
			if a.AccountNumber == accountNumber {
				acc, found = a, true
				return
			}
		}
	})
	if !found {
		return nil, fmt.Errorf("%w: account number %s", apperrors.ErrNotFound, accountNumber)
	}
	return &acc, nil
}

func (r *accountRepo) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	r.read(func(c, st *dataset) {
		for _, id := range accountIDs {
			if a, ok := lookup(c.accounts, st.accounts, id); ok {
				out[id] = a
			}
		}
	})
	return out, nil
}

func (r *accountRepo) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	var all []domain.Account
	r.read(func(c, st *dataset) {
		for _, a := range merged(c.accounts, st.accounts) {
			all = append(all, a)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].AccountNumber < all[j].AccountNumber })
	return page(all, limit, offset), nil
}

func (r *accountRepo) SaveAccount(ctx context.Context, account domain.Account) error {
	return r.write(func(c, st *dataset) error {
		if _, exists := lookup(c.accounts, st.accounts, account.AccountID); exists {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
		}
		for _, a := range merged(c.accounts, st.accounts) {
			if a.AccountNumber == account.AccountNumber {
				return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.AccountNumber)
			}
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

// UpdateAccount writes everything except the balance and last transaction time.
func (r *accountRepo) UpdateAccount(ctx context.Context, account domain.Account) error {
	return r.write(func(c, st *dataset) error {
		cur, ok := lookup(c.accounts, st.accounts, account.AccountID)
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
		}
		account.Balance = cur.Balance
		account.LastTransactionAt = cur.LastTransactionAt
		st.accounts[account.AccountID] = account
		return nil
	})
}

// FindAccountsByIDsForUpdate locks every account in ascending id order.
// Missing ids fail the call with ErrAccountNotFound.
func (r *accountRepo) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	ids := uniqueSorted(accountIDs)
	for _, id := range ids {
		if err := r.lock(ctx, "account", id); err != nil {
			return nil, err
		}
	}
	out, err := r.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}
	return out, nil
}

// UpdateAccountBalances writes only balance and last transaction time.
func (r *accountRepo) UpdateAccountBalances(ctx context.Context, accounts []domain.Account) error {
	return r.write(func(c, st *dataset) error {
		for _, a := range accounts {
			cur, ok := lookup(c.accounts, st.accounts, a.AccountID)
			if !ok {
				return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, a.AccountID)
			}
			cur.Balance = a.Balance
			cur.LastTransactionAt = a.LastTransactionAt
			cur.AuditFields = a.AuditFields
			st.accounts[a.AccountID] = cur
		}
		return nil
	})
}

// checkAccountNumbers rejects a commit that would create two accounts with
// the same number.
func checkAccountNumbers(committed, staged *dataset) error {
	if len(staged.accounts) == 0 {
		return nil
	}
	seen := make(map[string]string, len(committed.accounts)+len(staged.accounts))
	for id, a := range merged(committed.accounts, staged.accounts) {
		if other, dup := seen[a.AccountNumber]; dup && other != id {
			return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, a.AccountNumber)
		}
		seen[a.AccountNumber] = id
	}
	return nil
}

func uniqueSorted(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok || id == "" {
			continue
		}
		set[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
