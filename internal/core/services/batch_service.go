package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/utils/csvimport"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type batchService struct {
	BaseService
	poster   *ledgerPoster
	validate *validator.Validate
}

// NewBatchService creates the bulk processor.
func NewBatchService(store portsrepo.Store, options ...ServiceOption) portssvc.BatchSvcFacade {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their import column name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("csv"); name != "" && name != "-" {
			return name
		}
		return f.Name
	})

	s := &batchService{BaseService: newBaseService(store, options...), validate: v}
	s.poster = &ledgerPoster{BaseService: &s.BaseService}
	return s
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

// ValidateRows resolves every row. The first failing row aborts validation
// and nothing is returned for the others.
func (s *batchService) ValidateRows(ctx context.Context, kind domain.BatchKind, rows []domain.BatchRow) ([]domain.BatchLine, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: batch kind %q", apperrors.ErrValidation, kind)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: batch has no rows", apperrors.ErrValidation)
	}

	accounts := s.repos().AccountRepo
	lines := make([]domain.BatchLine, 0, len(rows))
	for _, row := range rows {
		if missing := s.missingFields(kind, row); len(missing) > 0 {
			return nil, apperrors.NewRowError(row.RowNumber, apperrors.ErrMissingField, missing...)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
		if err != nil || !amount.IsPositive() {
			return nil, apperrors.NewRowError(row.RowNumber, fmt.Errorf("%w: %q", apperrors.ErrInvalidAmount, row.Amount), "amount")
		}

		src, err := resolveAccount(ctx, accounts, row.Account)
		if err != nil {
			return nil, apperrors.NewRowError(row.RowNumber, err, "account_number")
		}

		var dest *string
		if d := strings.TrimSpace(row.DestinationAccount); d != "" {
			if !kind.TransactionType().AllowsDestination() {
				return nil, apperrors.NewRowError(row.RowNumber, fmt.Errorf("%w: %s batches take no destination account", apperrors.ErrValidation, kind), "destination_account")
			}
			acc, err := resolveAccount(ctx, accounts, d)
			if err != nil {
				return nil, apperrors.NewRowError(row.RowNumber, err, "destination_account")
			}
			dest = &acc.AccountID
		}

		lines = append(lines, domain.BatchLine{
			LineID:               uuid.NewString(),
			RowNumber:            row.RowNumber,
			AccountID:            src.AccountID,
			DestinationAccountID: dest,
			Amount:               amount,
			Reference:            strings.TrimSpace(row.Reference),
			Description:          row.Description,
			State:                domain.LinePending,
		})
	}
	return lines, nil
}

func (s *batchService) missingFields(kind domain.BatchKind, row domain.BatchRow) []string {
	var missing []string
	if err := s.validate.Struct(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
		}
	}
	// Whitespace-only values count as missing
	for name, v := range map[string]string{"account_number": row.Account, "amount": row.Amount, "reference": row.Reference} {
		if v != "" && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if kind.RequiresDestination() && strings.TrimSpace(row.DestinationAccount) == "" {
		missing = append(missing, "destination_account")
	}
	return missing
}

// resolveAccount accepts an account id or an account number.
func resolveAccount(ctx context.Context, repo portsrepo.AccountReader, ref string) (*domain.Account, error) {
	ref = strings.TrimSpace(ref)
	acc, err := repo.FindAccountByNumber(ctx, ref)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if _, perr := uuid.Parse(ref); perr == nil {
		acc, err = repo.FindAccountByID(ctx, ref)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, ref)
}

func (s *batchService) CreateBatch(ctx context.Context, req dto.CreateBatchRequest, actor string) (*domain.Batch, error) {
	return s.createBatch(ctx, req.Kind, req.CurrencyCode, req.Description, req.ToBatchRows(), actor)
}

func (s *batchService) ImportBatchCSV(ctx context.Context, params dto.ImportBatchParams, r io.Reader, actor string) (*domain.Batch, error) {
	rows, err := csvimport.ReadBatchRows(r)
	if err != nil {
		s.LogError(ctx, err, "Failed to read batch file")
		return nil, err
	}
	return s.createBatch(ctx, params.Kind, params.CurrencyCode, params.Description, rows, actor)
}

func (s *batchService) createBatch(ctx context.Context, kind domain.BatchKind, currency, description string, rows []domain.BatchRow, actor string) (*domain.Batch, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency code %q", apperrors.ErrValidation, currency)
	}
	lines, err := s.ValidateRows(ctx, kind, rows)
	if err != nil {
		s.LogError(ctx, err, "Batch validation failed", slog.String("kind", string(kind)))
		return nil, err
	}

	repos := s.repos()
	reference, err := repos.Sequences.NextReference(ctx, portsrepo.PrefixBatch)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	batchID := uuid.NewString()
	for i := range lines {
		lines[i].BatchID = batchID
		total = total.Add(lines[i].Amount)
	}

	batch := domain.Batch{
		BatchID:      batchID,
		Reference:    reference,
		Kind:         kind,
		CurrencyCode: currency,
		Description:  description,
		State:        domain.BatchValidated,
		TotalLines:   len(lines),
		TotalAmount:  total,
		Lines:        lines,
		AuditFields:  domain.NewAuditFields(actor, s.clock.Now()),
	}
	if err := repos.BatchRepo.SaveBatch(ctx, batch); err != nil {
		s.LogError(ctx, err, "Failed to save batch", slog.String("batch_id", batchID))
		return nil, err
	}
	s.LogInfo(ctx, "Batch created",
		slog.String("batch_id", batchID),
		slog.String("reference", reference),
		slog.Int("lines", len(lines)))
	return &batch, nil
}

func (s *batchService) GetBatch(ctx context.Context, batchID string) (*domain.Batch, error) {
	return s.repos().BatchRepo.FindBatchByID(ctx, batchID)
}

func (s *batchService) CancelBatch(ctx context.Context, batchID string, actor string) (*domain.Batch, error) {
	var result *domain.Batch
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		b, err := repos.BatchRepo.FindBatchByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if b.State != domain.BatchDraft && b.State != domain.BatchValidated {
			return fmt.Errorf("%w: batch %s is %s", apperrors.ErrInvalidState, batchID, b.State)
		}
		b.State = domain.BatchCancelled
		b.Touch(actor, s.clock.Now())
		result = b
		return repos.BatchRepo.UpdateBatch(ctx, *b)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel batch", slog.String("batch_id", batchID))
		return nil, err
	}
	return result, nil
}

// ProcessBatch posts each pending line in its own unit of work. A failing
// line is marked failed and processing moves on. Cancellation of ctx is
// only observed between lines: the batch is left in processing with its
// counts saved, and a later call resumes with the lines still pending.
func (s *batchService) ProcessBatch(ctx context.Context, batchID string, actor string) (*domain.Batch, error) {
	batch, err := s.startProcessing(ctx, batchID, actor)
	if err != nil {
		s.LogError(ctx, err, "Failed to start batch processing", slog.String("batch_id", batchID))
		return nil, err
	}

	var stopErr error
	for i := range batch.Lines {
		line := &batch.Lines[i]
		if line.State != domain.LinePending {
			continue
		}
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}

		if err := s.processLine(ctx, batch, line, actor); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			s.metrics.RecordBatchLine(batch.Kind, false)
			s.LogDebug(ctx, "Batch line failed",
				slog.String("batch_id", batchID),
				slog.Int("row", line.RowNumber),
				slog.String("error", err.Error()))
			if ferr := s.failLine(context.WithoutCancel(ctx), batchID, line, err); ferr != nil {
				s.LogError(ctx, ferr, "Failed to record batch line failure", slog.String("line_id", line.LineID))
			}
			continue
		}
		s.metrics.RecordBatchLine(batch.Kind, true)
	}

	finished, err := s.finishProcessing(context.WithoutCancel(ctx), batchID, actor, stopErr == nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to finalise batch", slog.String("batch_id", batchID))
		return nil, err
	}
	if stopErr != nil {
		s.LogInfo(ctx, "Batch processing interrupted",
			slog.String("batch_id", batchID),
			slog.Int("processed", finished.ProcessedCount))
		return finished, fmt.Errorf("batch %s interrupted: %w", batchID, stopErr)
	}

	s.LogInfo(ctx, "Batch processed",
		slog.String("batch_id", batchID),
		slog.Int("success", finished.SuccessCount),
		slog.Int("failed", finished.FailedCount),
		slog.String("state", string(finished.State)))
	return finished, nil
}

func (s *batchService) startProcessing(ctx context.Context, batchID, actor string) (*domain.Batch, error) {
	var batch *domain.Batch
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		b, err := repos.BatchRepo.FindBatchByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		switch b.State {
		case domain.BatchValidated:
			now := s.clock.Now()
			b.State = domain.BatchProcessing
			b.ProcessedBy = actor
			b.ProcessedAt = &now
			b.Touch(actor, now)
			if err := repos.BatchRepo.UpdateBatch(ctx, *b); err != nil {
				return err
			}
		case domain.BatchProcessing:
			// resuming an interrupted run
		default:
			return fmt.Errorf("%w: batch %s is %s, it must be validated before processing", apperrors.ErrInvalidState, batchID, b.State)
		}
		batch = b
		return nil
	})
	return batch, err
}

// processLine locks the batch row, re-checks the line, and posts it.
func (s *batchService) processLine(ctx context.Context, batch *domain.Batch, line *domain.BatchLine, actor string) error {
	var txnID string
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		current, err := repos.BatchRepo.FindBatchByIDForUpdate(ctx, batch.BatchID)
		if err != nil {
			return err
		}
		if !linePending(current, line.LineID) {
			return fmt.Errorf("%w: line %s was already handled", apperrors.ErrConflict, line.LineID)
		}

		description := line.Description
		if description == "" {
			description = fmt.Sprintf("Bulk %s: %s", batch.Kind, line.Reference)
		}
		txn, err := s.poster.createAndPost(ctx, repos, out, postingRequest{
			Type:                 batch.Kind.TransactionType(),
			AccountID:            line.AccountID,
			DestinationAccountID: line.DestinationAccountID,
			Amount:               line.Amount,
			CurrencyCode:         batch.CurrencyCode,
			Reference:            line.Reference,
			Description:          description,
		}, actor)
		if err != nil {
			return err
		}

		processed := *line
		processed.State = domain.LineProcessed
		processed.ErrorMessage = ""
		processed.TransactionID = &txn.TransactionID
		txnID = txn.TransactionID
		return repos.BatchRepo.UpdateBatchLine(ctx, processed)
	})
	if err != nil {
		return err
	}
	line.State = domain.LineProcessed
	line.TransactionID = &txnID
	return nil
}

// failLine records cause on the line in its own unit of work. The write is
// skipped when a concurrent run has already settled the line.
func (s *batchService) failLine(ctx context.Context, batchID string, line *domain.BatchLine, cause error) error {
	return s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		current, err := repos.BatchRepo.FindBatchByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if !linePending(current, line.LineID) {
			s.LogDebug(ctx, "Batch line settled by another run", slog.String("line_id", line.LineID))
			return nil
		}
		failed := *line
		failed.State = domain.LineFailed
		failed.ErrorMessage = cause.Error()
		failed.TransactionID = nil
		if err := repos.BatchRepo.UpdateBatchLine(ctx, failed); err != nil {
			return err
		}
		*line = failed
		return nil
	})
}

func linePending(b *domain.Batch, lineID string) bool {
	for _, l := range b.Lines {
		if l.LineID == lineID {
			return l.State == domain.LinePending
		}
	}
	return false
}

// finishProcessing recounts the lines and writes the header. The batch
// only leaves processing when complete is true.
func (s *batchService) finishProcessing(ctx context.Context, batchID, actor string, complete bool) (*domain.Batch, error) {
	var result *domain.Batch
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		b, err := repos.BatchRepo.FindBatchByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}

		success, failed := 0, 0
		var log []string
		for _, l := range b.Lines {
			switch l.State {
			case domain.LineProcessed:
				success++
			case domain.LineFailed:
				failed++
				log = append(log, fmt.Sprintf("Line %d: %s", l.RowNumber, l.ErrorMessage))
			}
		}
		b.SuccessCount = success
		b.FailedCount = failed
		b.ProcessedCount = success + failed
		b.ErrorLog = strings.Join(log, "\n")

		if complete {
			if failed == 0 {
				b.State = domain.BatchCompleted
			} else {
				b.State = domain.BatchFailed
			}
		}
		now := s.clock.Now()
		b.Touch(actor, now)
		if err := repos.BatchRepo.UpdateBatch(ctx, *b); err != nil {
			return err
		}
		if complete {
			out.add(domain.EventBatchProcessed, b.BatchID, now, dto.ToBatchResponse(b))
		}
		result = b
		return nil
	})
	return result, err
}
