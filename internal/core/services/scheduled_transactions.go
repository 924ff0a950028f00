package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

func (s *schedulerService) CreateScheduledTransaction(ctx context.Context, req dto.CreateScheduledTransactionRequest, actor string) (*domain.ScheduledTransaction, error) {
	if !domain.IsSchedulableType(req.TransactionType) {
		return nil, fmt.Errorf("%w: %s transactions cannot be scheduled", apperrors.ErrValidation, req.TransactionType)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %s must be positive", apperrors.ErrInvalidAmount, req.Amount)
	}
	if req.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduled date is required", apperrors.ErrValidation)
	}

	repos := s.repos()
	reference, err := repos.Sequences.NextReference(ctx, portsrepo.PrefixScheduled)
	if err != nil {
		return nil, err
	}

	// Build the posting now so account, currency and destination errors
	// surface at creation rather than on the run date.
	preview, err := s.poster.build(ctx, repos, postingRequest{
		Type:                 req.TransactionType,
		AccountID:            req.AccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		CurrencyCode:         req.CurrencyCode,
		Reference:            reference,
	}, actor)
	if err != nil {
		return nil, err
	}

	autoProcess := true
	if req.AutoProcess != nil {
		autoProcess = *req.AutoProcess
	}
	st := domain.ScheduledTransaction{
		ScheduledID:          uuid.NewString(),
		Reference:            reference,
		TransactionType:      req.TransactionType,
		AccountID:            req.AccountID,
		DestinationAccountID: preview.DestinationAccountID,
		Amount:               req.Amount,
		CurrencyCode:         preview.CurrencyCode,
		PaymentReference:     strings.TrimSpace(req.PaymentReference),
		Description:          strings.TrimSpace(req.Description),
		ScheduledDate:        accounting.StartOfDay(req.ScheduledDate),
		AutoProcess:          autoProcess,
		State:                domain.ScheduledPending,
		AuditFields:          domain.NewAuditFields(actor, s.clock.Now()),
	}
	if err := repos.ScheduledRepo.SaveScheduled(ctx, st); err != nil {
		s.LogError(ctx, err, "Failed to save scheduled transaction", slog.String("account_id", req.AccountID))
		return nil, err
	}
	s.LogInfo(ctx, "Scheduled transaction created",
		slog.String("scheduled_id", st.ScheduledID),
		slog.String("reference", reference),
		slog.String("scheduled_date", st.ScheduledDate.Format(time.DateOnly)))
	return &st, nil
}

func (s *schedulerService) GetScheduledTransaction(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error) {
	return s.repos().ScheduledRepo.FindScheduledByID(ctx, scheduledID)
}

func (s *schedulerService) CancelScheduledTransaction(ctx context.Context, scheduledID string, actor string) (*domain.ScheduledTransaction, error) {
	var result *domain.ScheduledTransaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		st, err := repos.ScheduledRepo.FindScheduledByIDForUpdate(ctx, scheduledID)
		if err != nil {
			return err
		}
		if st.State != domain.ScheduledPending {
			return fmt.Errorf("%w: scheduled transaction %s is %s", apperrors.ErrInvalidState, st.ScheduledID, st.State)
		}
		st.State = domain.ScheduledCancelled
		st.Touch(actor, s.clock.Now())
		result = st
		return repos.ScheduledRepo.UpdateScheduled(ctx, *st)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel scheduled transaction", slog.String("scheduled_id", scheduledID))
		return nil, err
	}
	return result, nil
}

func (s *schedulerService) ExecuteScheduledTransaction(ctx context.Context, scheduledID string, actor string) (*domain.ScheduledTransaction, error) {
	st, err := s.executeScheduled(ctx, scheduledID, actor, func(st *domain.ScheduledTransaction) error {
		if st.State != domain.ScheduledPending {
			return fmt.Errorf("%w: scheduled transaction %s is %s", apperrors.ErrInvalidState, st.ScheduledID, st.State)
		}
		return nil
	})
	if err != nil {
		if st != nil {
			s.recordScheduledFailure(ctx, *st, actor, err)
		}
		return nil, err
	}
	return st, nil
}

// executeScheduled posts the entry and marks it processed in one unit of
// work. eligible runs under the row lock and vetoes the run with its error. On a posting error the
// locked entry is returned alongside the error so the caller can record it.
func (s *schedulerService) executeScheduled(ctx context.Context, scheduledID, actor string, eligible func(*domain.ScheduledTransaction) error) (*domain.ScheduledTransaction, error) {
	var (
		result  *domain.ScheduledTransaction
		failed  *domain.ScheduledTransaction
		posting bool
	)
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		st, err := repos.ScheduledRepo.FindScheduledByIDForUpdate(ctx, scheduledID)
		if err != nil {
			return err
		}
		if err := eligible(st); err != nil {
			return err
		}

		reference := st.PaymentReference
		if reference == "" {
			reference = st.Reference
		}
		description := st.Description
		if description == "" {
			description = fmt.Sprintf("Scheduled %s: %s", st.TransactionType, st.Reference)
		}
		posting = true
		failed = st
		txn, err := s.poster.createAndPost(ctx, repos, out, postingRequest{
			Type:                 st.TransactionType,
			AccountID:            st.AccountID,
			DestinationAccountID: st.DestinationAccountID,
			Amount:               st.Amount,
			CurrencyCode:         st.CurrencyCode,
			Reference:            reference,
			Description:          description,
		}, actor)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		st.State = domain.ScheduledProcessed
		st.ProcessedAt = &now
		st.TransactionID = &txn.TransactionID
		st.ErrorMessage = ""
		st.Touch(actor, now)
		result = st
		return repos.ScheduledRepo.UpdateScheduled(ctx, *st)
	})
	if err != nil {
		if posting {
			return failed, err
		}
		return nil, err
	}
	return result, nil
}

// recordScheduledFailure marks a still-pending entry failed. Failure is
// terminal; the entry is not retried by later runs.
func (s *schedulerService) recordScheduledFailure(ctx context.Context, st domain.ScheduledTransaction, actor string, cause error) {
	s.LogError(ctx, cause, "Scheduled transaction failed",
		slog.String("scheduled_id", st.ScheduledID),
		slog.String("reference", st.Reference))

	err := s.inTx(context.WithoutCancel(ctx), func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		current, err := repos.ScheduledRepo.FindScheduledByIDForUpdate(ctx, st.ScheduledID)
		if err != nil {
			return err
		}
		if current.State != domain.ScheduledPending {
			return nil
		}
		now := s.clock.Now()
		current.State = domain.ScheduledFailed
		current.ErrorMessage = cause.Error()
		current.Touch(actor, now)
		if err := repos.ScheduledRepo.UpdateScheduled(ctx, *current); err != nil {
			return err
		}
		out.add(domain.EventScheduledFailed, current.ScheduledID, now, domain.InstructionError{
			InstructionID: current.ScheduledID,
			Reference:     current.Reference,
			Error:         current.ErrorMessage,
		})
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record scheduled transaction failure", slog.String("scheduled_id", st.ScheduledID))
	}
}

// runDueScheduled executes every auto-processed entry dated on or before today.
func (s *schedulerService) runDueScheduled(ctx context.Context, today time.Time, result *domain.SchedulerRunResult) error {
	due, err := s.repos().ScheduledRepo.FindDueScheduled(ctx, today)
	if err != nil {
		s.LogError(ctx, err, "Failed to load due scheduled transactions")
		return err
	}
	for _, st := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := s.executeScheduled(ctx, st.ScheduledID, domain.SystemActor, func(locked *domain.ScheduledTransaction) error {
			if !locked.IsDue(today) {
				return errNotDue
			}
			return nil
		})
		switch {
		case err == nil:
			result.ScheduledExecuted++
		case errors.Is(err, errNotDue):
			// settled by another run or cancelled since the listing
		default:
			result.ScheduledFailed++
			result.Errors = append(result.Errors, domain.InstructionError{
				InstructionID: st.ScheduledID,
				Reference:     st.Reference,
				Error:         err.Error(),
			})
			s.recordScheduledFailure(ctx, st, domain.SystemActor, err)
		}
	}
	return nil
}
