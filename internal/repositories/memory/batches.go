package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
)

type batchRepo struct{ *view }

var _ portsrepo.BatchRepositoryFacade = (*batchRepo)(nil)

func (r *batchRepo) FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error) {
	var (
		b  domain.Batch
		ok bool
	)
	r.read(func(c, st *dataset) {
		b, ok = lookup(c.batches, st.batches, batchID)
		if !ok {
			return
		}
		b.Lines = nil
		for _, l := range merged(c.batchLines, st.batchLines) {
			if l.BatchID == batchID {
				b.Lines = append(b.Lines, l)
			}
		}
	})
	if !ok {
		return nil, fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, batchID)
	}
	sort.Slice(b.Lines, func(i, j int) bool { return b.Lines[i].RowNumber < b.Lines[j].RowNumber })
	return &b, nil
}

func (r *batchRepo) FindBatchByIDForUpdate(ctx context.Context, batchID string) (*domain.Batch, error) {
	if err := r.lock(ctx, "batch", batchID); err != nil {
		return nil, err
	}
	return r.FindBatchByID(ctx, batchID)
}

func (r *batchRepo) SaveBatch(ctx context.Context, batch domain.Batch) error {
	return r.write(func(c, st *dataset) error {
		if _, exists := lookup(c.batches, st.batches, batch.BatchID); exists {
			return fmt.Errorf("%w: batch %s", apperrors.ErrDuplicate, batch.BatchID)
		}
		for _, l := range batch.Lines {
			l.BatchID = batch.BatchID
			st.batchLines[l.LineID] = l
		}
		batch.Lines = nil
		st.batches[batch.BatchID] = batch
		return nil
	})
}

// UpdateBatch writes the header only.
func (r *batchRepo) UpdateBatch(ctx context.Context, batch domain.Batch) error {
	return r.write(func(c, st *dataset) error {
		if _, ok := lookup(c.batches, st.batches, batch.BatchID); !ok {
			return fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, batch.BatchID)
		}
		batch.Lines = nil
		st.batches[batch.BatchID] = batch
		return nil
	})
}

func (r *batchRepo) UpdateBatchLine(ctx context.Context, line domain.BatchLine) error {
	return r.write(func(c, st *dataset) error {
		if _, ok := lookup(c.batchLines, st.batchLines, line.LineID); !ok {
			return fmt.Errorf("%w: batch line %s", apperrors.ErrNotFound, line.LineID)
		}
		st.batchLines[line.LineID] = line
		return nil
	})
}
