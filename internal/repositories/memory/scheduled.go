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

type scheduledRepo struct{ *view }

var _ portsrepo.ScheduledRepositoryFacade = (*scheduledRepo)(nil)

func (r *scheduledRepo) FindScheduledByID(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error) {
	var (
		st domain.ScheduledTransaction
		ok bool
	)
	r.read(func(c, staged *dataset) { st, ok = lookup(c.scheduled, staged.scheduled, scheduledID) })
	if !ok {
		return nil, fmt.Errorf("%w: scheduled transaction %s", apperrors.ErrNotFound, scheduledID)
	}
	return &st, nil
}

func (r *scheduledRepo) FindScheduledByIDForUpdate(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error) {
	if err := r.lock(ctx, "scheduled", scheduledID); err != nil {
		return nil, err
	}
	return r.FindScheduledByID(ctx, scheduledID)
}

func (r *scheduledRepo) FindDueScheduled(ctx context.Context, today time.Time) ([]domain.ScheduledTransaction, error) {
	var due []domain.ScheduledTransaction
	r.read(func(c, staged *dataset) {
		for _, st := range merged(c.scheduled, staged.scheduled) {
			if st.IsDue(today) {
				due = append(due, st)
			}
		}
	})
	sort.Slice(due, func(i, j int) bool {
		if !due[i].ScheduledDate.Equal(due[j].ScheduledDate) {
			return due[i].ScheduledDate.Before(due[j].ScheduledDate)
		}
		return due[i].ScheduledID < due[j].ScheduledID
	})
	return due, nil
}

func (r *scheduledRepo) SaveScheduled(ctx context.Context, scheduled domain.ScheduledTransaction) error {
	return r.write(func(c, staged *dataset) error {
		if _, exists := lookup(c.scheduled, staged.scheduled, scheduled.ScheduledID); exists {
			return fmt.Errorf("%w: scheduled transaction %s", apperrors.ErrDuplicate, scheduled.ScheduledID)
		}
		staged.scheduled[scheduled.ScheduledID] = scheduled
		return nil
	})
}

func (r *scheduledRepo) UpdateScheduled(ctx context.Context, scheduled domain.ScheduledTransaction) error {
	return r.write(func(c, staged *dataset) error {
		if _, ok := lookup(c.scheduled, staged.scheduled, scheduled.ScheduledID); !ok {
			return fmt.Errorf("%w: scheduled transaction %s", apperrors.ErrNotFound, scheduled.ScheduledID)
		}
		staged.scheduled[scheduled.ScheduledID] = scheduled
		return nil
	})
}
