package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
)

type transactionService struct {
	BaseService
	poster *ledgerPoster
}

// NewTransactionService creates the transaction engine.
func NewTransactionService(store portsrepo.Store, options ...ServiceOption) portssvc.TransactionSvcFacade {
	s := &transactionService{BaseService: newBaseService(store, options...)}
	s.poster = &ledgerPoster{BaseService: &s.BaseService}
	return s
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func toPostingRequest(req dto.CreateTransactionRequest) postingRequest {
	return postingRequest{
		Type:                 req.TransactionType,
		AccountID:            req.AccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		CurrencyCode:         req.CurrencyCode,
		ExchangeRate:         req.ExchangeRate,
		Reference:            req.Reference,
		Description:          req.Description,
		TransactionDate:      req.TransactionDate,
		ValueDate:            req.ValueDate,
		Pending:              req.Pending,
		Channel:              req.Channel.ToChannelMetadata(),
	}
}

func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.repos().TransactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error) {
	var created *domain.Transaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		txn, err := s.poster.create(ctx, repos, toPostingRequest(req), actor)
		created = txn
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("account_id", req.AccountID))
		return nil, err
	}
	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", created.TransactionID),
		slog.String("reference", created.Reference),
		slog.String("state", string(created.State)))
	return created, nil
}

func (s *transactionService) CreateAndPostTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error) {
	var posted *domain.Transaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		txn, err := s.poster.createAndPost(ctx, repos, out, toPostingRequest(req), actor)
		posted = txn
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create and post transaction", slog.String("account_id", req.AccountID))
		return nil, err
	}
	return posted, nil
}

func (s *transactionService) PostTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	var posted *domain.Transaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		txn, err := repos.TransactionRepo.FindTransactionByIDForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := s.poster.post(ctx, repos, out, txn, actor); err != nil {
			return err
		}
		posted = txn
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	s.LogInfo(ctx, "Transaction posted", slog.String("transaction_id", transactionID))
	return posted, nil
}

func (s *transactionService) ReverseTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	var reversal *domain.Transaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		rev, err := s.poster.reverse(ctx, repos, out, transactionID, actor)
		reversal = rev
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	s.LogInfo(ctx, "Transaction reversed",
		slog.String("transaction_id", transactionID),
		slog.String("reversal_id", reversal.TransactionID))
	return reversal, nil
}

func (s *transactionService) CancelTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	var cancelled *domain.Transaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		txn, err := repos.TransactionRepo.FindTransactionByIDForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if !txn.State.IsOpen() {
			return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrInvalidState, txn.TransactionID, txn.State)
		}
		txn.State = domain.TxStateCancelled
		txn.Touch(actor, s.clock.Now())
		cancelled = txn
		return repos.TransactionRepo.UpdateTransaction(ctx, *txn)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return cancelled, nil
}

// ReconcileTransactions locks ids in ascending order so concurrent calls
// with overlapping sets cannot deadlock.
func (s *transactionService) ReconcileTransactions(ctx context.Context, transactionIDs []string, actor string) ([]domain.Transaction, error) {
	if len(transactionIDs) == 0 {
		return nil, fmt.Errorf("%w: no transactions to reconcile", apperrors.ErrValidation)
	}
	ids := append([]string(nil), transactionIDs...)
	sort.Strings(ids)

	var reconciled []domain.Transaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		now := s.clock.Now()
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			txn, err := repos.TransactionRepo.FindTransactionByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if txn.State != domain.TxStatePosted {
				return fmt.Errorf("%w: transaction %s is %s, only posted transactions can be reconciled", apperrors.ErrInvalidState, id, txn.State)
			}
			txn.State = domain.TxStateReconciled
			txn.ReconciledBy = actor
			txn.ReconciledAt = &now
			txn.Touch(actor, now)
			if err := repos.TransactionRepo.UpdateTransaction(ctx, *txn); err != nil {
				return err
			}
			reconciled = append(reconciled, *txn)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reconcile transactions", slog.Int("count", len(ids)))
		return nil, err
	}
	s.LogInfo(ctx, "Transactions reconciled", slog.Int("count", len(reconciled)))
	return reconciled, nil
}
