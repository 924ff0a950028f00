package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type SchedulerServiceTestSuite struct {
	ledgerSuite
	payer    domain.Account
	landlord domain.Account
}

func (s *SchedulerServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.payer = s.openAccount("USD", "1000")
	s.landlord = s.openAccount("USD", "0")
}

func (s *SchedulerServiceTestSuite) rent(amount string, freq domain.Frequency, start time.Time, end *time.Time) dto.CreateInstructionRequest {
	return dto.CreateInstructionRequest{
		AccountID:            s.payer.AccountID,
		DestinationAccountID: &s.landlord.AccountID,
		BeneficiaryName:      "Landlord",
		Amount:               dec(amount),
		Frequency:            freq,
		StartDate:            start,
		EndDate:              end,
		PaymentReference:     "RENT",
		Activate:             true,
	}
}

func (s *SchedulerServiceTestSuite) TestCreateInstruction_Validation() {
	today := s.clock.Today()
	before := today.AddDate(0, 0, -1)
	cases := []struct {
		name   string
		mutate func(r *dto.CreateInstructionRequest)
		want   error
	}{
		{"zero amount", func(r *dto.CreateInstructionRequest) { r.Amount = dec("0") }, apperrors.ErrInvalidAmount},
		{"bad frequency", func(r *dto.CreateInstructionRequest) { r.Frequency = "hourly" }, apperrors.ErrValidation},
		{"end before start", func(r *dto.CreateInstructionRequest) { r.EndDate = &before }, apperrors.ErrValidation},
		{"unknown account", func(r *dto.CreateInstructionRequest) { r.AccountID = "missing" }, apperrors.ErrAccountNotFound},
		{"no beneficiary", func(r *dto.CreateInstructionRequest) { r.BeneficiaryName = " " }, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := s.rent("10", domain.FrequencyMonthly, today, nil)
			tc.mutate(&req)
			_, err := s.svc.Scheduler.CreateInstruction(s.ctx, req, testActor)
			s.ErrorIs(err, tc.want)
		})
	}
}

func (s *SchedulerServiceTestSuite) TestRunDue_ExecutesAndRearms() {
	today := s.clock.Today()
	instr, err := s.svc.Scheduler.CreateInstruction(s.ctx, s.rent("300", domain.FrequencyMonthly, today.Add(8*time.Hour), nil), testActor)
	s.Require().NoError(err)
	s.Regexp(`^SO\d{6}$`, instr.Reference)
	s.Equal(today, instr.NextExecutionDate)

	res, err := s.svc.Scheduler.RunDue(s.ctx, today)
	s.Require().NoError(err)
	s.Equal(1, res.Executed)
	s.Equal(1, res.Rearmed)
	s.Zero(res.Failed)

	s.requireBalance(s.payer.AccountID, "700")
	s.requireBalance(s.landlord.AccountID, "300")

	after, err := s.svc.Scheduler.GetInstruction(s.ctx, instr.InstructionID)
	s.Require().NoError(err)
	s.Equal(date(2024, time.February, 15), after.NextExecutionDate)
	s.Equal(1, after.ExecutionCount)
	s.Equal(domain.InstructionActive, after.State)
	s.NotNil(after.LastExecutedAt)

	// Already advanced, so a second run on the same day does nothing
	res, err = s.svc.Scheduler.RunDue(s.ctx, today)
	s.Require().NoError(err)
	s.Zero(res.Executed)
	s.requireBalance(s.payer.AccountID, "700")
}

func (s *SchedulerServiceTestSuite) TestRunDue_MonthEndIsCalendarCorrect() {
	start := date(2024, time.January, 31)
	instr, err := s.svc.Scheduler.CreateInstruction(s.ctx, s.rent("1", domain.FrequencyMonthly, start, nil), testActor)
	s.Require().NoError(err)

	_, err = s.svc.Scheduler.RunDue(s.ctx, start)
	s.Require().NoError(err)

	after, err := s.svc.Scheduler.GetInstruction(s.ctx, instr.InstructionID)
	s.Require().NoError(err)
	s.Equal(date(2024, time.February, 29), after.NextExecutionDate)
}

func (s *SchedulerServiceTestSuite) TestRunDue_ExpiresAfterEndDate() {
	today := s.clock.Today()
	end := today.AddDate(0, 0, 3)
	instr, err := s.svc.Scheduler.CreateInstruction(s.ctx, s.rent("5", domain.FrequencyWeekly, today, &end), testActor)
	s.Require().NoError(err)

	res, err := s.svc.Scheduler.RunDue(s.ctx, today)
	s.Require().NoError(err)
	s.Equal(1, res.Executed)
	s.Equal(1, res.Expired)
	s.Zero(res.Rearmed)

	after, err := s.svc.Scheduler.GetInstruction(s.ctx, instr.InstructionID)
	s.Require().NoError(err)
	s.Equal(domain.InstructionExpired, after.State)

	due, err := s.svc.Scheduler.FindDueInstructions(s.ctx, today.AddDate(0, 0, 7))
	s.Require().NoError(err)
	s.Empty(due)
}

func (s *SchedulerServiceTestSuite) TestRunDue_FailureKeepsScheduleAndContinues() {
	today := s.clock.Today()
	tooBig, err := s.svc.Scheduler.CreateInstruction(s.ctx, s.rent("5000", domain.FrequencyMonthly, today, nil), testActor)
	s.Require().NoError(err)

	bill := s.rent("25", domain.FrequencyMonthly, today, nil)
	bill.DestinationAccountID = nil
	bill.BeneficiaryName = "Power Co"
	ok, err := s.svc.Scheduler.CreateInstruction(s.ctx, bill, testActor)
	s.Require().NoError(err)

	res, err := s.svc.Scheduler.RunDue(s.ctx, today)
	s.Require().NoError(err)
	s.Equal(1, res.Executed)
	s.Equal(1, res.Failed)
	s.Require().Len(res.Errors, 1)
	s.Equal(tooBig.InstructionID, res.Errors[0].InstructionID)
	s.Contains(res.Errors[0].Error, apperrors.ErrInsufficientFunds.Error())

	failed, err := s.svc.Scheduler.GetInstruction(s.ctx, tooBig.InstructionID)
	s.Require().NoError(err)
	s.Equal(today, failed.NextExecutionDate)
	s.Equal(domain.InstructionActive, failed.State)
	s.Zero(failed.ExecutionCount)
	s.NotEmpty(failed.LastError)
	s.Len(s.events.OfType(domain.EventInstructionFailed), 1)

	// The external payment is a plain withdrawal
	s.requireBalance(s.payer.AccountID, "975")
	done, err := s.svc.Scheduler.GetInstruction(s.ctx, ok.InstructionID)
	s.Require().NoError(err)
	s.Empty(done.LastError)
}

func (s *SchedulerServiceTestSuite) TestDraftInstructionIsNotDue() {
	today := s.clock.Today()
	req := s.rent("10", domain.FrequencyDaily, today, nil)
	req.Activate = false
	instr, err := s.svc.Scheduler.CreateInstruction(s.ctx, req, testActor)
	s.Require().NoError(err)
	s.Equal(domain.InstructionDraft, instr.State)

	due, err := s.svc.Scheduler.FindDueInstructions(s.ctx, today)
	s.Require().NoError(err)
	s.Empty(due)

	_, err = s.svc.Scheduler.ActivateInstruction(s.ctx, instr.InstructionID, testActor)
	s.Require().NoError(err)
	due, err = s.svc.Scheduler.FindDueInstructions(s.ctx, today)
	s.Require().NoError(err)
	s.Len(due, 1)

	cancelled, err := s.svc.Scheduler.CancelInstruction(s.ctx, instr.InstructionID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.InstructionCancelled, cancelled.State)
	_, err = s.svc.Scheduler.ActivateInstruction(s.ctx, instr.InstructionID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func TestSchedulerService(t *testing.T) {
	suite.Run(t, new(SchedulerServiceTestSuite))
}
