package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	poster *ledgerPoster
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(store portsrepo.Store, options ...ServiceOption) portssvc.AccountSvcFacade {
	s := &accountService{BaseService: newBaseService(store, options...)}
	s.poster = &ledgerPoster{BaseService: &s.BaseService}
	return s
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if name == "" || strings.TrimSpace(req.CustomerRef) == "" {
		return nil, fmt.Errorf("%w: name and customer reference are required", apperrors.ErrValidation)
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency code %q", apperrors.ErrValidation, req.CurrencyCode)
	}
	if req.OverdraftLimit.IsNegative() {
		return nil, fmt.Errorf("%w: overdraft limit %s", apperrors.ErrInvalidAmount, req.OverdraftLimit)
	}

	repos := s.repos()
	number, err := repos.Sequences.NextReference(ctx, portsrepo.PrefixAccount)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate account number")
		return nil, err
	}

	now := s.clock.Now()
	account := domain.Account{
		AccountID:        uuid.NewString(),
		AccountNumber:    number,
		Name:             name,
		CustomerRef:      req.CustomerRef,
		CurrencyCode:     currency,
		Balance:          decimal.Zero,
		HoldAmount:       decimal.Zero,
		OverdraftAllowed: req.OverdraftAllowed,
		OverdraftLimit:   req.OverdraftLimit,
		State:            domain.AccountDraft,
		AuditFields:      domain.NewAuditFields(actor, now),
	}
	if req.Activate {
		if err := account.Activate(now); err != nil {
			return nil, err
		}
	}

	if err := repos.AccountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account in repository", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.repos().AccountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		// Not found is an expected outcome
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.repos().AccountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by number", slog.String("account_number", accountNumber))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.repos().AccountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.Int("limit", limit), slog.Int("offset", offset))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	repos := s.repos()
	if _, err := repos.AccountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	txns, next, err := repos.TransactionRepo.ListTransactionsByAccountID(ctx, accountID, clampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("account_id", accountID))
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    next,
	}, nil
}

// mutate runs change against the locked account and persists the
// non-balance fields.
func (s *accountService) mutate(ctx context.Context, accountID, actor, action string, change func(acc *domain.Account) error) (*domain.Account, error) {
	var result domain.Account
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, _ *outbox) error {
		accounts, err := repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, []string{accountID})
		if err != nil {
			if errors.Is(err, apperrors.ErrAccountNotFound) {
				return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
			}
			return err
		}
		acc := accounts[accountID]
		if err := change(&acc); err != nil {
			return err
		}
		acc.Touch(actor, s.clock.Now())
		result = acc
		return repos.AccountRepo.UpdateAccount(ctx, acc)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to "+action+" account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated",
		slog.String("account_id", accountID),
		slog.String("action", action),
		slog.String("state", string(result.State)))
	return &result, nil
}

func (s *accountService) ActivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.mutate(ctx, accountID, actor, "activate", func(acc *domain.Account) error {
		return acc.Activate(s.clock.Now())
	})
}

func (s *accountService) MarkDormant(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.mutate(ctx, accountID, actor, "mark dormant", func(acc *domain.Account) error {
		return acc.MarkDormant()
	})
}

func (s *accountService) RestrictAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.mutate(ctx, accountID, actor, "restrict", func(acc *domain.Account) error {
		return acc.Restrict()
	})
}

func (s *accountService) UnrestrictAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.mutate(ctx, accountID, actor, "unrestrict", func(acc *domain.Account) error {
		return acc.Unrestrict()
	})
}

func (s *accountService) CloseAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.mutate(ctx, accountID, actor, "close", func(acc *domain.Account) error {
		return acc.Close(s.clock.Now())
	})
}

func (s *accountService) SetHold(ctx context.Context, accountID string, amount decimal.Decimal, actor string) (*domain.Account, error) {
	return s.mutate(ctx, accountID, actor, "set hold on", func(acc *domain.Account) error {
		return acc.SetHold(amount)
	})
}

func (s *accountService) SetOverdraft(ctx context.Context, accountID string, allowed bool, limit decimal.Decimal, actor string) (*domain.Account, error) {
	return s.mutate(ctx, accountID, actor, "set overdraft on", func(acc *domain.Account) error {
		return acc.SetOverdraft(allowed, limit)
	})
}

func (s *accountService) Deposit(ctx context.Context, accountID string, req dto.MoneyMovementRequest, actor string) (*domain.Transaction, error) {
	return s.move(ctx, domain.TxDeposit, accountID, req, actor)
}

func (s *accountService) Withdraw(ctx context.Context, accountID string, req dto.MoneyMovementRequest, actor string) (*domain.Transaction, error) {
	return s.move(ctx, domain.TxWithdrawal, accountID, req, actor)
}

// move creates and posts a single-account movement in one unit of work.
func (s *accountService) move(ctx context.Context, txType domain.TransactionType, accountID string, req dto.MoneyMovementRequest, actor string) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s amount %s must be positive", apperrors.ErrInvalidAmount, txType, req.Amount)
	}
	var txn *domain.Transaction
	err := s.inTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox) error {
		var err error
		txn, err = s.poster.createAndPost(ctx, repos, out, postingRequest{
			Type:        txType,
			AccountID:   accountID,
			Amount:      req.Amount,
			Reference:   req.Reference,
			Description: req.Description,
			Channel:     req.Channel.ToChannelMetadata(),
		}, actor)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post "+string(txType),
			slog.String("account_id", accountID),
			slog.String("amount", req.Amount.String()))
		return nil, err
	}
	s.LogInfo(ctx, "Account movement posted",
		slog.String("account_id", accountID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txType)))
	return txn, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
