package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ConcurrencyTestSuite struct {
	ledgerSuite
}

func (s *ConcurrencyTestSuite) TestConcurrentWithdrawalsNeverOverdraw() {
	acc := s.openAccount("USD", "100")
	const workers = 50
	amount := dec("30")

	var (
		wg           sync.WaitGroup
		successes    atomic.Int32
		unexpectedMu sync.Mutex
		unexpected   []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.svc.Account.Withdraw(s.ctx, acc.AccountID, dto.MoneyMovementRequest{Amount: amount, Reference: "ATM"}, testActor)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, apperrors.ErrInsufficientFunds):
			default:
				unexpectedMu.Lock()
				unexpected = append(unexpected, err)
				unexpectedMu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Empty(unexpected)
	paid := amount.Mul(decimal.NewFromInt32(successes.Load()))
	s.True(paid.LessThanOrEqual(dec("100")), "paid out %s from 100", paid)
	s.Equal(int32(3), successes.Load())

	final := s.balanceOf(acc.AccountID).Balance
	s.False(final.IsNegative(), "balance went negative: %s", final)
	s.requireBalance(acc.AccountID, "10")

	page, err := s.svc.Account.ListTransactions(s.ctx, acc.AccountID, dto.ListTransactionsParams{Limit: 100})
	s.Require().NoError(err)
	withdrawals := 0
	for _, t := range page.Transactions {
		if t.TransactionType == domain.TxWithdrawal {
			withdrawals++
		}
	}
	s.Equal(3, withdrawals)
}

func (s *ConcurrencyTestSuite) TestOpposingTransfersCompleteAndConserveTotal() {
	a := s.openAccount("USD", "1000")
	b := s.openAccount("USD", "1000")
	const rounds = 40

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	transfer := func(from, to string) error {
		_, err := s.svc.Transaction.CreateAndPostTransaction(ctx, dto.CreateTransactionRequest{
			TransactionType:      domain.TxTransfer,
			AccountID:            from,
			DestinationAccountID: &to,
			Amount:               dec("7.25"),
			CurrencyCode:         "USD",
			Reference:            "SWEEP",
		}, testActor)
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	start := make(chan struct{})
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			errs <- transfer(a.AccountID, b.AccountID)
		}()
		go func() {
			defer wg.Done()
			<-start
			errs <- transfer(b.AccountID, a.AccountID)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}
	s.Require().NoError(ctx.Err())

	s.requireBalance(a.AccountID, "1000")
	s.requireBalance(b.AccountID, "1000")
}

func TestConcurrency(t *testing.T) {
	suite.Run(t, new(ConcurrencyTestSuite))
}
