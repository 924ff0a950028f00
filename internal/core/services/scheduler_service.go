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
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

type schedulerService struct {
	BaseService
	poster *ledgerPoster
}

// NewSchedulerService creates the standing order service.
func NewSchedulerService(store portsrepo.Store, options ...ServiceOption) portssvc.SchedulerSvcFacade {
	s := &schedulerService{BaseService: newBaseService(store, options...)}
	s.poster = &ledgerPoster{BaseService: &s.BaseService}
	return s
}

var _ portssvc.SchedulerSvcFacade = (*schedulerService)(nil)

// errNotDue is returned inside a run when another run already advanced the instruction.
var errNotDue = errors.New("instruction no longer due")

func (s *schedulerService) CreateInstruction(ctx context.Context, req dto.CreateInstructionRequest, actor string) (*domain.RecurringInstruction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %s must be positive", apperrors.ErrInvalidAmount, req.Amount)
	}
	if !req.Frequency.IsValid() {
		return nil, fmt.Errorf("%w: frequency %q", apperrors.ErrValidation, req.Frequency)
	}
	if strings.TrimSpace(req.BeneficiaryName) == "" {
		return nil, fmt.Errorf("%w: beneficiary name is required", apperrors.ErrValidation)
	}
	start := accounting.StartOfDay(req.StartDate)
	var end *time.Time
	if req.EndDate != nil {
		e := accounting.StartOfDay(*req.EndDate)
		if e.Before(start) {
			return nil, fmt.Errorf("%w: end date %s is before start date %s", apperrors.ErrValidation, e.Format(time.DateOnly), start.Format(time.DateOnly))
		}
		end = &e
	}
	dest := domain.Deref(req.DestinationAccountID)
	if dest == req.AccountID {
		return nil, fmt.Errorf("%w: source and destination account are both %s", apperrors.ErrValidation, dest)
	}

	repos := s.repos()
	ids := []string{req.AccountID}
	if dest != "" {
		ids = append(ids, dest)
	}
	accounts, err := repos.AccountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}

	reference, err := repos.Sequences.NextReference(ctx, portsrepo.PrefixInstruction)
	if err != nil {
		return nil, err
	}
	state := domain.InstructionDraft
	if req.Activate {
		state = domain.InstructionActive
	}
	instr := domain.RecurringInstruction{
		InstructionID:        uuid.NewString(),
		Reference:            reference,
		AccountID:            req.AccountID,
		DestinationAccountID: domain.StringPtr(dest),
		BeneficiaryName:      strings.TrimSpace(req.BeneficiaryName),
		Amount:               req.Amount,
		Frequency:            req.Frequency,
		NextExecutionDate:    start,
		EndDate:              end,
		PaymentReference:     strings.TrimSpace(req.PaymentReference),
		State:                state,
		AuditFields:          domain.NewAuditFields(actor, s.clock.Now()),
	}
	if err := repos.InstructionRepo.SaveInstruction(ctx, instr); err != nil {
		s.LogError(ctx, err, "Failed to save instruction", slog.String("account_id", req.AccountID))
		return nil, err
	}
	s.LogInfo(ctx, "Standing order created",
		slog.String("instruction_id", instr.InstructionID),
		slog.String("reference", reference),
		slog.String("frequency", string(instr.Frequency)))
	return &instr, nil
}

func (s *schedulerService) GetInstruction(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error) {
	return s.repos().InstructionRepo.FindInstructionByID(ctx, instructionID)
}

func (s *schedulerService) ActivateInstruction(ctx context.Context, instructionID string, actor string) (*domain.RecurringInstruction, error) {
	return s.transition(ctx, instructionID, actor, func(r *domain.RecurringInstruction) error {
		if r.State != domain.InstructionDraft {
			return fmt.Errorf("%w: instruction %s is %s", apperrors.ErrInvalidState, r.InstructionID, r.State)
		}
		r.State = domain.InstructionActive
		return nil
	})
}

func (s *schedulerService) CancelInstruction(ctx context.Context, instructionID string, actor string) (*domain.RecurringInstruction, error) {
	return s.transition(ctx, instructionID, actor, func(r *domain.RecurringInstruction) error {
		if r.State != domain.InstructionDraft && r.State != domain.InstructionActive {
			return fmt.Errorf("%w: instruction %s is %s", apperrors.ErrInvalidState, r.InstructionID, r.State)
		}
		r.State = domain.InstructionCancelled
		return nil
	})
}

func (s *schedulerService) transition(ctx context.Context, instructionID, actor string, change func(*domain.RecurringInstruction) error) (*domain.RecurringInstruction, error) {
	var result *domain.RecurringInstruction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		r, err := repos.InstructionRepo.FindInstructionByIDForUpdate(ctx, instructionID)
		if err != nil {
			return err
		}
		if err := change(r); err != nil {
			return err
		}
		r.Touch(actor, s.clock.Now())
		result = r
		return repos.InstructionRepo.UpdateInstruction(ctx, *r)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update instruction", slog.String("instruction_id", instructionID))
		return nil, err
	}
	return result, nil
}

func (s *schedulerService) FindDueInstructions(ctx context.Context, today time.Time) ([]domain.RecurringInstruction, error) {
	return s.repos().InstructionRepo.FindDueInstructions(ctx, accounting.StartOfDay(today))
}

// RunDue executes each due instruction once and advances it by one period,
// then posts the due one-shot scheduled transactions. Instructions that
// missed several periods catch up one period per run.
func (s *schedulerService) RunDue(ctx context.Context, today time.Time) (*domain.SchedulerRunResult, error) {
	start := time.Now()
	today = accounting.StartOfDay(today)
	result := &domain.SchedulerRunResult{RunDate: today}

	due, err := s.FindDueInstructions(ctx, today)
	if err != nil {
		s.LogError(ctx, err, "Failed to load due instructions")
		return nil, err
	}
	s.LogInfo(ctx, "Running standing orders", slog.Int("due", len(due)), slog.String("run_date", today.Format(time.DateOnly)))

	for _, instr := range due {
		if err := ctx.Err(); err != nil {
			s.metrics.RecordSchedulerRun(*result, time.Since(start))
			return result, err
		}

		expired, err := s.execute(ctx, instr.InstructionID, today)
		switch {
		case errors.Is(err, errNotDue):
			continue
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, domain.InstructionError{
				InstructionID: instr.InstructionID,
				Reference:     instr.Reference,
				Error:         err.Error(),
			})
			s.recordFailure(ctx, instr, err)
			continue
		}

		result.Executed++
		if expired {
			result.Expired++
		} else {
			result.Rearmed++
		}
	}

	if err := s.runDueScheduled(ctx, today, result); err != nil {
		s.metrics.RecordSchedulerRun(*result, time.Since(start))
		return result, err
	}

	s.metrics.RecordSchedulerRun(*result, time.Since(start))
	s.LogInfo(ctx, "Scheduler run finished",
		slog.Int("executed", result.Executed),
		slog.Int("rearmed", result.Rearmed),
		slog.Int("expired", result.Expired),
		slog.Int("failed", result.Failed),
		slog.Int("scheduled_executed", result.ScheduledExecuted),
		slog.Int("scheduled_failed", result.ScheduledFailed))
	return result, nil
}

// execute posts one instruction and advances its schedule in the same unit.
func (s *schedulerService) execute(ctx context.Context, instructionID string, today time.Time) (expired bool, err error) {
	err = s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		r, err := repos.InstructionRepo.FindInstructionByIDForUpdate(ctx, instructionID)
		if err != nil {
			return err
		}
		if !r.IsDue(today) {
			return errNotDue
		}

		description := "Standing order to " + r.BeneficiaryName
		if _, err := s.poster.createAndPost(ctx, repos, out, postingRequest{
			Type:                 r.TransactionType(),
			AccountID:            r.AccountID,
			DestinationAccountID: r.DestinationAccountID,
			Amount:               r.Amount,
			Reference:            r.PaymentReference,
			Description:          description,
			TransactionDate:      &today,
		}, domain.SystemActor); err != nil {
			return err
		}

		now := s.clock.Now()
		r.NextExecutionDate = accounting.AddPeriod(r.NextExecutionDate, r.Frequency, 1)
		r.ExecutionCount++
		r.LastExecutedAt = &now
		r.LastError = ""
		if r.EndDate != nil && r.NextExecutionDate.After(*r.EndDate) {
			r.State = domain.InstructionExpired
			expired = true
		}
		r.Touch(domain.SystemActor, now)
		return repos.InstructionRepo.UpdateInstruction(ctx, *r)
	})
	return expired, err
}

// recordFailure stores the error on the instruction without moving its date.
func (s *schedulerService) recordFailure(ctx context.Context, instr domain.RecurringInstruction, cause error) {
	s.LogError(ctx, cause, "Standing order failed",
		slog.String("instruction_id", instr.InstructionID),
		slog.String("reference", instr.Reference))

	err := s.inTx(context.WithoutCancel(ctx), func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		r, err := repos.InstructionRepo.FindInstructionByIDForUpdate(ctx, instr.InstructionID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		r.LastError = cause.Error()
		r.Touch(domain.SystemActor, now)
		if err := repos.InstructionRepo.UpdateInstruction(ctx, *r); err != nil {
			return err
		}
		out.add(domain.EventInstructionFailed, r.InstructionID, now, domain.InstructionError{
			InstructionID: r.InstructionID,
			Reference:     r.Reference,
			Error:         r.LastError,
		})
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record instruction failure", slog.String("instruction_id", instr.InstructionID))
	}
}
