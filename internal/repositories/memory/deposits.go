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

type depositRepo struct{ *view }

var _ portsrepo.DepositRepositoryFacade = (*depositRepo)(nil)

func (r *depositRepo) FindDepositByID(ctx context.Context, depositID string) (*domain.FixedDeposit, error) {
	var (
		fd domain.FixedDeposit
		ok bool
	)
	r.read(func(c, st *dataset) { fd, ok = lookup(c.deposits, st.deposits, depositID) })
	if !ok {
		return nil, fmt.Errorf("%w: deposit %s", apperrors.ErrNotFound, depositID)
	}
	return &fd, nil
}

func (r *depositRepo) FindDepositByIDForUpdate(ctx context.Context, depositID string) (*domain.FixedDeposit, error) {
	if err := r.lock(ctx, "deposit", depositID); err != nil {
		return nil, err
	}
	return r.FindDepositByID(ctx, depositID)
}

func (r *depositRepo) FindMaturedDeposits(ctx context.Context, today time.Time) ([]domain.FixedDeposit, error) {
	var out []domain.FixedDeposit
	r.read(func(c, st *dataset) {
		for _, fd := range merged(c.deposits, st.deposits) {
			if fd.State == domain.DepositActive && !fd.MaturityDate.After(today) {
				out = append(out, fd)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MaturityDate.Equal(out[j].MaturityDate) {
			return out[i].MaturityDate.Before(out[j].MaturityDate)
		}
		return out[i].DepositID < out[j].DepositID
	})
	return out, nil
}

func (r *depositRepo) SaveDeposit(ctx context.Context, deposit domain.FixedDeposit) error {
	return r.write(func(c, st *dataset) error {
		if _, exists := lookup(c.deposits, st.deposits, deposit.DepositID); exists {
			return fmt.Errorf("%w: deposit %s", apperrors.ErrDuplicate, deposit.DepositID)
		}
		st.deposits[deposit.DepositID] = deposit
		return nil
	})
}

func (r *depositRepo) UpdateDeposit(ctx context.Context, deposit domain.FixedDeposit) error {
	return r.write(func(c, st *dataset) error {
		if _, ok := lookup(c.deposits, st.deposits, deposit.DepositID); !ok {
			return fmt.Errorf("%w: deposit %s", apperrors.ErrNotFound, deposit.DepositID)
		}
		st.deposits[deposit.DepositID] = deposit
		return nil
	})
}
