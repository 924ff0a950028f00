package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/core/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/platform/clock"
	"github.com/SscSPs/core_banking_ledger/internal/platform/events"
	"github.com/SscSPs/core_banking_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testActor = "teller-1"

var testNow = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ledgerSuite wires every service to a fresh in-memory store.
type ledgerSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	clock  *clock.Fixed
	events *events.RecordingPublisher
	svc    *portssvc.ServiceContainer
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.clock = clock.NewFixed(testNow)
	s.events = &events.RecordingPublisher{}
	s.svc = services.NewServiceContainer(s.store,
		services.WithClock(s.clock),
		services.WithEventPublisher(s.events),
	)
}

// openAccount creates an active account and funds it with a deposit.
func (s *ledgerSuite) openAccount(currency, funds string) domain.Account {
	acc, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Name:         "Test account",
		CustomerRef:  "CUST-1",
		CurrencyCode: currency,
		Activate:     true,
	}, testActor)
	s.Require().NoError(err)

	if amount := dec(funds); amount.IsPositive() {
		_, err = s.svc.Account.Deposit(s.ctx, acc.AccountID, dto.MoneyMovementRequest{Amount: amount}, testActor)
		s.Require().NoError(err)
	}
	return s.balanceOf(acc.AccountID)
}

func (s *ledgerSuite) balanceOf(accountID string) domain.Account {
	acc, err := s.svc.Account.GetAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return *acc
}

func (s *ledgerSuite) requireBalance(accountID, want string) {
	s.T().Helper()
	got := s.balanceOf(accountID).Balance
	s.Require().Truef(got.Equal(dec(want)), "balance of %s: want %s, got %s", accountID, want, got)
}
