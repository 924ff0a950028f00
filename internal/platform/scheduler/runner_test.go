package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/core/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/platform/clock"
	"github.com/SscSPs/core_banking_ledger/internal/platform/lock"
	"github.com/SscSPs/core_banking_ledger/internal/platform/scheduler"
	"github.com/SscSPs/core_banking_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RunnerTestSuite struct {
	suite.Suite
	ctx    context.Context
	clock  *clock.Fixed
	svc    *portssvc.ServiceContainer
	locker *lock.LocalLocker
	runner *scheduler.Runner

	source, dest, instructionID string
}

func (s *RunnerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFixed(time.Date(2024, time.January, 15, 6, 0, 0, 0, time.UTC))
	s.svc = services.NewServiceContainer(memory.NewStore(), services.WithClock(s.clock))
	s.locker = lock.NewLocalLocker()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.runner = scheduler.NewRunner(s.svc, s.clock, s.locker, logger, time.Minute)

	s.source = s.open("1000")
	s.dest = s.open("0")

	ins, err := s.svc.Scheduler.CreateInstruction(s.ctx, dto.CreateInstructionRequest{
		AccountID:            s.source,
		DestinationAccountID: &s.dest,
		BeneficiaryName:      "Landlord",
		Amount:               decimal.NewFromInt(100),
		Frequency:            "monthly",
		StartDate:            s.clock.Today(),
		PaymentReference:     "RENT",
		Activate:             true,
	}, "ops")
	s.Require().NoError(err)
	s.instructionID = ins.InstructionID
}

func (s *RunnerTestSuite) open(funds string) string {
	acc, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Name:         "Runner account",
		CustomerRef:  "CUST-R",
		CurrencyCode: "EUR",
		Activate:     true,
	}, "ops")
	s.Require().NoError(err)
	if amount := decimal.RequireFromString(funds); amount.IsPositive() {
		_, err = s.svc.Account.Deposit(s.ctx, acc.AccountID, dto.MoneyMovementRequest{Amount: amount}, "ops")
		s.Require().NoError(err)
	}
	return acc.AccountID
}

func (s *RunnerTestSuite) balance(accountID string) decimal.Decimal {
	acc, err := s.svc.Account.GetAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return acc.Balance
}

func TestRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (s *RunnerTestSuite) TestTick_ExecutesDueInstructions() {
	s.Require().NoError(s.runner.Tick(s.ctx))

	s.True(s.balance(s.source).Equal(decimal.NewFromInt(900)))
	s.True(s.balance(s.dest).Equal(decimal.NewFromInt(100)))

	ins, err := s.svc.Scheduler.GetInstruction(s.ctx, s.instructionID)
	s.Require().NoError(err)
	s.Equal(time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), ins.NextExecutionDate)

	// A second tick on the same day finds nothing due.
	s.Require().NoError(s.runner.Tick(s.ctx))
	s.True(s.balance(s.source).Equal(decimal.NewFromInt(900)))
}

func (s *RunnerTestSuite) TestTick_SkipsWhenLockHeldElsewhere() {
	release, ok, err := s.locker.TryLock(s.ctx, scheduler.DefaultLockName, time.Hour)
	s.Require().NoError(err)
	s.Require().True(ok)

	s.Require().NoError(s.runner.Tick(s.ctx))
	s.True(s.balance(s.source).Equal(decimal.NewFromInt(1000)))

	s.Require().NoError(release(s.ctx))
	s.Require().NoError(s.runner.Tick(s.ctx))
	s.True(s.balance(s.source).Equal(decimal.NewFromInt(900)))
}

func (s *RunnerTestSuite) TestTick_ReleasesLock() {
	s.Require().NoError(s.runner.Tick(s.ctx))

	_, ok, err := s.locker.TryLock(s.ctx, scheduler.DefaultLockName, time.Minute)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RunnerTestSuite) TestStart_StopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.runner.Start(ctx) }()

	s.Eventually(func() bool {
		return s.balance(s.source).Equal(decimal.NewFromInt(900))
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("runner did not stop")
	}
}
