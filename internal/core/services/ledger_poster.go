package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// postingRequest describes a movement before the sign convention is applied.
// Amount is always a positive magnitude.
type postingRequest struct {
	Type                 domain.TransactionType
	AccountID            string
	DestinationAccountID *string
	Amount               decimal.Decimal
	CurrencyCode         string
	ExchangeRate         *decimal.Decimal
	Reference            string
	Description          string
	TransactionDate      *time.Time
	ValueDate            *time.Time
	Pending              bool
	Channel              *domain.ChannelMetadata
}

// ledgerPoster is the single place where transactions are signed, posted
// and reversed. Every balance change in the system goes through it, always
// inside a unit of work owned by the caller.
type ledgerPoster struct {
	*BaseService
}

// signedAmount applies the sign convention: outflow types take money out
// of the source account.
func signedAmount(t domain.TransactionType, magnitude decimal.Decimal) decimal.Decimal {
	if t.IsOutflow() {
		return magnitude.Neg()
	}
	return magnitude
}

// build validates req against the current accounts and returns an unsaved
// draft or pending transaction.
func (p *ledgerPoster) build(ctx context.Context, repos portsrepo.RepositoryProvider, req postingRequest, actor string) (domain.Transaction, error) {
	if !req.Type.IsValid() || req.Type == domain.TxReversal {
		return domain.Transaction{}, fmt.Errorf("%w: transaction type %q", apperrors.ErrValidation, req.Type)
	}
	if !req.Amount.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("%w: amount %s must be positive", apperrors.ErrInvalidAmount, req.Amount)
	}
	if req.AccountID == "" {
		return domain.Transaction{}, fmt.Errorf("%w: account is required", apperrors.ErrValidation)
	}

	dest := domain.Deref(req.DestinationAccountID)
	switch {
	case dest != "" && !req.Type.AllowsDestination():
		return domain.Transaction{}, fmt.Errorf("%w: %s transactions cannot have a destination account", apperrors.ErrValidation, req.Type)
	case dest == "" && req.Type == domain.TxTransfer:
		return domain.Transaction{}, fmt.Errorf("%w: transfer requires a destination account", apperrors.ErrValidation)
	case dest != "" && dest == req.AccountID:
		return domain.Transaction{}, fmt.Errorf("%w: source and destination account are both %s", apperrors.ErrValidation, dest)
	}

	ids := []string{req.AccountID}
	if dest != "" {
		ids = append(ids, dest)
	}
	accounts, err := repos.AccountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return domain.Transaction{}, err
	}
	src, ok := accounts[req.AccountID]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, req.AccountID)
	}

	currency := strings.ToUpper(req.CurrencyCode)
	if currency == "" {
		currency = src.CurrencyCode
	}
	if currency != src.CurrencyCode {
		return domain.Transaction{}, fmt.Errorf("%w: currency %s does not match account %s (%s)", apperrors.ErrValidation, currency, src.AccountID, src.CurrencyCode)
	}
	if dest != "" {
		d, ok := accounts[dest]
		if !ok {
			return domain.Transaction{}, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, dest)
		}
		if d.CurrencyCode != src.CurrencyCode {
			return domain.Transaction{}, fmt.Errorf("%w: destination %s is in %s, source is in %s", apperrors.ErrValidation, dest, d.CurrencyCode, src.CurrencyCode)
		}
	}

	rate := decimal.NewFromInt(1)
	if req.ExchangeRate != nil {
		if !req.ExchangeRate.IsPositive() {
			return domain.Transaction{}, fmt.Errorf("%w: exchange rate %s", apperrors.ErrValidation, req.ExchangeRate)
		}
		rate = *req.ExchangeRate
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference, err = repos.Sequences.NextReference(ctx, portsrepo.PrefixTransaction)
		if err != nil {
			return domain.Transaction{}, err
		}
	}

	now := p.clock.Now()
	txnDate := p.clock.Today()
	if req.TransactionDate != nil {
		txnDate = accounting.StartOfDay(*req.TransactionDate)
	}
	valueDate := txnDate
	if req.ValueDate != nil {
		valueDate = accounting.StartOfDay(*req.ValueDate)
	}

	state := domain.TxStateDraft
	if req.Pending {
		state = domain.TxStatePending
	}

	return domain.Transaction{
		TransactionID:        uuid.NewString(),
		Reference:            reference,
		TransactionType:      req.Type,
		AccountID:            req.AccountID,
		DestinationAccountID: domain.StringPtr(dest),
		Amount:               signedAmount(req.Type, req.Amount),
		CurrencyCode:         currency,
		ExchangeRate:         rate,
		State:                state,
		TransactionDate:      txnDate,
		ValueDate:            valueDate,
		Description:          req.Description,
		Channel:              req.Channel,
		AuditFields:          domain.NewAuditFields(actor, now),
	}, nil
}

// create validates and stores a draft or pending transaction.
func (p *ledgerPoster) create(ctx context.Context, repos portsrepo.RepositoryProvider, req postingRequest, actor string) (*domain.Transaction, error) {
	txn, err := p.build(ctx, repos, req, actor)
	if err != nil {
		return nil, err
	}
	if err := repos.TransactionRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// createAndPost builds, posts and stores the transaction in the caller's unit.
func (p *ledgerPoster) createAndPost(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox, req postingRequest, actor string) (*domain.Transaction, error) {
	txn, err := p.build(ctx, repos, req, actor)
	if err != nil {
		return nil, err
	}
	if err := p.apply(ctx, repos, &txn, actor); err != nil {
		return nil, err
	}
	if err := repos.TransactionRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	out.add(domain.EventTransactionPosted, txn.AccountID, p.clock.Now(), txn)
	return &txn, nil
}

// post moves a stored open transaction to posted. The caller must already
// hold the transaction row lock.
func (p *ledgerPoster) post(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox, txn *domain.Transaction, actor string) error {
	if !txn.State.IsOpen() {
		return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrInvalidState, txn.TransactionID, txn.State)
	}
	if err := p.apply(ctx, repos, txn, actor); err != nil {
		return err
	}
	if err := repos.TransactionRepo.UpdateTransaction(ctx, *txn); err != nil {
		return err
	}
	out.add(domain.EventTransactionPosted, txn.AccountID, p.clock.Now(), *txn)
	return nil
}

// apply locks every touched account in ascending id order, applies the
// balance effects and stamps the transaction as posted. Nothing is written
// for the transaction itself.
func (p *ledgerPoster) apply(ctx context.Context, repos portsrepo.RepositoryProvider, txn *domain.Transaction, actor string) (err error) {
	start := time.Now()
	defer func() {
		p.metrics.RecordPosting(txn.TransactionType, err == nil, time.Since(start))
	}()

	if txn.Amount.IsZero() {
		return fmt.Errorf("%w: transaction %s has zero amount", apperrors.ErrInvalidAmount, txn.TransactionID)
	}

	accounts, err := repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, txn.AccountIDs())
	if err != nil {
		return err
	}

	now := p.clock.Now()
	effects := txn.BalanceEffects()
	ids := make([]string, 0, len(effects))
	for id := range effects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	updated := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if err := acc.Apply(effects[id]); err != nil {
			return err
		}
		acc.LastTransactionAt = &now
		acc.Touch(actor, now)
		updated = append(updated, acc)
	}
	if err := repos.AccountRepo.UpdateAccountBalances(ctx, updated); err != nil {
		return err
	}

	txn.State = domain.TxStatePosted
	txn.PostedBy = actor
	txn.PostedAt = &now
	txn.Touch(actor, now)

	p.LogDebug(ctx, "Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("reference", txn.Reference),
		slog.String("amount", txn.Amount.String()))
	return nil
}

// reverse posts a compensating entry for a posted transaction. The original
// row is locked before any account.
func (p *ledgerPoster) reverse(ctx context.Context, repos portsrepo.RepositoryProvider, out *outbox, transactionID string, actor string) (rev *domain.Transaction, err error) {
	defer func() { p.metrics.RecordReversal(err == nil) }()

	orig, err := repos.TransactionRepo.FindTransactionByIDForUpdate(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if orig.IsReversal() {
		return nil, fmt.Errorf("%w: transaction %s is itself a reversal", apperrors.ErrInvalidState, orig.TransactionID)
	}
	if orig.ReversalID != nil {
		return nil, fmt.Errorf("%w: transaction %s by %s", apperrors.ErrAlreadyReversed, orig.TransactionID, *orig.ReversalID)
	}
	if orig.State != domain.TxStatePosted {
		return nil, fmt.Errorf("%w: transaction %s is %s, only posted transactions can be reversed", apperrors.ErrInvalidState, orig.TransactionID, orig.State)
	}

	now := p.clock.Now()
	today := p.clock.Today()
	origID := orig.TransactionID
	reversal := domain.Transaction{
		TransactionID:        uuid.NewString(),
		Reference:            "REV-" + orig.Reference,
		TransactionType:      domain.TxReversal,
		AccountID:            orig.AccountID,
		DestinationAccountID: orig.DestinationAccountID,
		Amount:               orig.Amount.Neg(),
		CurrencyCode:         orig.CurrencyCode,
		ExchangeRate:         orig.ExchangeRate,
		State:                domain.TxStateDraft,
		ReversedEntryID:      &origID,
		TransactionDate:      today,
		ValueDate:            today,
		Description:          "Reversal of " + orig.Reference,
		AuditFields:          domain.NewAuditFields(actor, now),
	}
	if err := p.apply(ctx, repos, &reversal, actor); err != nil {
		return nil, err
	}
	if err := repos.TransactionRepo.SaveTransaction(ctx, reversal); err != nil {
		return nil, err
	}

	orig.ReversalID = &reversal.TransactionID
	orig.State = domain.TxStateReversed
	orig.Touch(actor, now)
	if err := repos.TransactionRepo.UpdateTransaction(ctx, *orig); err != nil {
		return nil, err
	}

	out.add(domain.EventTransactionReversed, orig.AccountID, now, map[string]domain.Transaction{
		"original": *orig,
		"reversal": reversal,
	})
	return &reversal, nil
}
