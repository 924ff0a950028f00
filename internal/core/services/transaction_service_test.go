package services_test

import (
	"testing"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	ledgerSuite
	source domain.Account
	dest   domain.Account
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.source = s.openAccount("USD", "1000")
	s.dest = s.openAccount("USD", "0")
}

func (s *TransactionServiceTestSuite) transfer(amount string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		TransactionType:      domain.TxTransfer,
		AccountID:            s.source.AccountID,
		DestinationAccountID: &s.dest.AccountID,
		Amount:               dec(amount),
	}
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_SignFollowsType() {
	cases := []struct {
		txType domain.TransactionType
		want   string
	}{
		{domain.TxDeposit, "50"},
		{domain.TxInterest, "50"},
		{domain.TxRefund, "50"},
		{domain.TxWithdrawal, "-50"},
		{domain.TxFee, "-50"},
		{domain.TxPayment, "-50"},
	}
	for _, tc := range cases {
		s.Run(string(tc.txType), func() {
			txn, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
				TransactionType: tc.txType,
				AccountID:       s.source.AccountID,
				Amount:          dec("50"),
			}, testActor)
			s.Require().NoError(err)
			s.True(txn.Amount.Equal(dec(tc.want)), "amount %s", txn.Amount)
			s.Equal(domain.TxStateDraft, txn.State)
			s.Equal("USD", txn.CurrencyCode)
			s.True(txn.ExchangeRate.Equal(decimal.NewFromInt(1)))
			s.NotEmpty(txn.Reference)
		})
	}
	// Drafts never move money
	s.requireBalance(s.source.AccountID, "1000")
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_Validation() {
	other := s.openAccount("EUR", "0")
	cases := []struct {
		name string
		req  dto.CreateTransactionRequest
		want error
	}{
		{"zero amount", dto.CreateTransactionRequest{TransactionType: domain.TxDeposit, AccountID: s.source.AccountID}, apperrors.ErrInvalidAmount},
		{"negative amount", dto.CreateTransactionRequest{TransactionType: domain.TxDeposit, AccountID: s.source.AccountID, Amount: dec("-1")}, apperrors.ErrInvalidAmount},
		{"transfer without destination", dto.CreateTransactionRequest{TransactionType: domain.TxTransfer, AccountID: s.source.AccountID, Amount: dec("1")}, apperrors.ErrValidation},
		{"deposit with destination", dto.CreateTransactionRequest{TransactionType: domain.TxDeposit, AccountID: s.source.AccountID, DestinationAccountID: &s.dest.AccountID, Amount: dec("1")}, apperrors.ErrValidation},
		{"unknown account", dto.CreateTransactionRequest{TransactionType: domain.TxDeposit, AccountID: "missing", Amount: dec("1")}, apperrors.ErrAccountNotFound},
		{"currency mismatch", dto.CreateTransactionRequest{TransactionType: domain.TxDeposit, AccountID: s.source.AccountID, CurrencyCode: "EUR", Amount: dec("1")}, apperrors.ErrValidation},
		{"cross currency transfer", dto.CreateTransactionRequest{TransactionType: domain.TxTransfer, AccountID: s.source.AccountID, DestinationAccountID: &other.AccountID, Amount: dec("1")}, apperrors.ErrValidation},
		{"reversal type", dto.CreateTransactionRequest{TransactionType: domain.TxReversal, AccountID: s.source.AccountID, Amount: dec("1")}, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.Transaction.CreateTransaction(s.ctx, tc.req, testActor)
			s.ErrorIs(err, tc.want)
		})
	}
}

func (s *TransactionServiceTestSuite) TestPostTransaction_Transfer() {
	txn, err := s.svc.Transaction.CreateTransaction(s.ctx, s.transfer("250"), testActor)
	s.Require().NoError(err)

	posted, err := s.svc.Transaction.PostTransaction(s.ctx, txn.TransactionID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.TxStatePosted, posted.State)
	s.Equal(testActor, posted.PostedBy)
	s.Require().NotNil(posted.PostedAt)

	s.requireBalance(s.source.AccountID, "750")
	s.requireBalance(s.dest.AccountID, "250")

	_, err = s.svc.Transaction.PostTransaction(s.ctx, txn.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.requireBalance(s.source.AccountID, "750")
}

func (s *TransactionServiceTestSuite) TestPostTransaction_InsufficientFundsRollsBack() {
	txn, err := s.svc.Transaction.CreateTransaction(s.ctx, s.transfer("1000.01"), testActor)
	s.Require().NoError(err)

	_, err = s.svc.Transaction.PostTransaction(s.ctx, txn.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	stored, err := s.svc.Transaction.GetTransaction(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TxStateDraft, stored.State)
	s.requireBalance(s.source.AccountID, "1000")
	s.requireBalance(s.dest.AccountID, "0")
}

func (s *TransactionServiceTestSuite) TestPostTransaction_Overdraft() {
	_, err := s.svc.Account.SetOverdraft(s.ctx, s.source.AccountID, true, dec("200"), testActor)
	s.Require().NoError(err)

	_, err = s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("1150"), testActor)
	s.Require().NoError(err)
	s.requireBalance(s.source.AccountID, "-150")

	_, err = s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("50.01"), testActor)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (s *TransactionServiceTestSuite) TestReverseTransaction_RoundTrip() {
	txn, err := s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("300"), testActor)
	s.Require().NoError(err)
	s.requireBalance(s.source.AccountID, "700")
	s.requireBalance(s.dest.AccountID, "300")

	rev, err := s.svc.Transaction.ReverseTransaction(s.ctx, txn.TransactionID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.TxReversal, rev.TransactionType)
	s.Equal(domain.TxStatePosted, rev.State)
	s.Equal("REV-"+txn.Reference, rev.Reference)
	s.True(rev.Amount.Equal(txn.Amount.Neg()))
	s.Require().NotNil(rev.ReversedEntryID)
	s.Equal(txn.TransactionID, *rev.ReversedEntryID)

	s.requireBalance(s.source.AccountID, "1000")
	s.requireBalance(s.dest.AccountID, "0")

	orig, err := s.svc.Transaction.GetTransaction(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TxStateReversed, orig.State)
	s.Require().NotNil(orig.ReversalID)
	s.Equal(rev.TransactionID, *orig.ReversalID)

	s.Len(s.events.OfType(domain.EventTransactionReversed), 1)
}

func (s *TransactionServiceTestSuite) TestReverseTransaction_Twice() {
	txn, err := s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("10"), testActor)
	s.Require().NoError(err)
	rev, err := s.svc.Transaction.ReverseTransaction(s.ctx, txn.TransactionID, testActor)
	s.Require().NoError(err)

	_, err = s.svc.Transaction.ReverseTransaction(s.ctx, txn.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrAlreadyReversed)

	_, err = s.svc.Transaction.ReverseTransaction(s.ctx, rev.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)

	s.requireBalance(s.source.AccountID, "1000")
}

func (s *TransactionServiceTestSuite) TestReverseTransaction_NotPosted() {
	txn, err := s.svc.Transaction.CreateTransaction(s.ctx, s.transfer("10"), testActor)
	s.Require().NoError(err)

	_, err = s.svc.Transaction.ReverseTransaction(s.ctx, txn.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func (s *TransactionServiceTestSuite) TestCancelTransaction() {
	txn, err := s.svc.Transaction.CreateTransaction(s.ctx, s.transfer("10"), testActor)
	s.Require().NoError(err)

	cancelled, err := s.svc.Transaction.CancelTransaction(s.ctx, txn.TransactionID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.TxStateCancelled, cancelled.State)

	_, err = s.svc.Transaction.PostTransaction(s.ctx, txn.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	_, err = s.svc.Transaction.CancelTransaction(s.ctx, txn.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func (s *TransactionServiceTestSuite) TestReconcileTransactions_AllOrNothing() {
	a, err := s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("1"), testActor)
	s.Require().NoError(err)
	b, err := s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("2"), testActor)
	s.Require().NoError(err)
	draft, err := s.svc.Transaction.CreateTransaction(s.ctx, s.transfer("3"), testActor)
	s.Require().NoError(err)

	_, err = s.svc.Transaction.ReconcileTransactions(s.ctx, []string{a.TransactionID, draft.TransactionID}, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	stored, err := s.svc.Transaction.GetTransaction(s.ctx, a.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TxStatePosted, stored.State)

	done, err := s.svc.Transaction.ReconcileTransactions(s.ctx, []string{b.TransactionID, a.TransactionID, a.TransactionID}, testActor)
	s.Require().NoError(err)
	s.Len(done, 2)
	for _, txn := range done {
		s.Equal(domain.TxStateReconciled, txn.State)
		s.NotNil(txn.ReconciledAt)
	}

	_, err = s.svc.Transaction.ReverseTransaction(s.ctx, a.TransactionID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func (s *TransactionServiceTestSuite) TestPostedEventsPublishedAfterCommit() {
	_, err := s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("5000"), testActor)
	s.Require().Error(err)
	before := len(s.events.OfType(domain.EventTransactionPosted))

	_, err = s.svc.Transaction.CreateAndPostTransaction(s.ctx, s.transfer("5"), testActor)
	s.Require().NoError(err)
	s.Len(s.events.OfType(domain.EventTransactionPosted), before+1)
}

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
