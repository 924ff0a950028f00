package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountState is the lifecycle state of a customer account.
type AccountState string

const (
	AccountDraft      AccountState = "draft"
	AccountActive     AccountState = "active"
	AccountDormant    AccountState = "dormant"
	AccountRestricted AccountState = "restricted"
	AccountClosed     AccountState = "closed"
)

// Account represents a customer-owned deposit account.
// Balance is only ever changed through Credit and Debit, which the posting
// path calls while holding the account's row lock.
type Account struct {
	AccountID         string          `json:"accountID"`     // Primary Key (UUID)
	AccountNumber     string          `json:"accountNumber"` // Customer facing reference, e.g. ACC000001
	Name              string          `json:"name"`
	CustomerRef       string          `json:"customerRef"` // Owning party, managed elsewhere
	CurrencyCode      string          `json:"currencyCode"`
	Balance           decimal.Decimal `json:"balance"`
	HoldAmount        decimal.Decimal `json:"holdAmount"`
	OverdraftAllowed  bool            `json:"overdraftAllowed"`
	OverdraftLimit    decimal.Decimal `json:"overdraftLimit"`
	State             AccountState    `json:"state"`
	LastTransactionAt *time.Time      `json:"lastTransactionAt,omitempty"`
	ActivatedAt       *time.Time      `json:"activatedAt,omitempty"`
	ClosedAt          *time.Time      `json:"closedAt,omitempty"`
	AuditFields
}

// AvailableBalance is the amount that can be debited right now.
func (a Account) AvailableBalance() decimal.Decimal {
	if a.OverdraftAllowed {
		return a.Balance.Add(a.OverdraftLimit).Sub(a.HoldAmount)
	}
	return decimal.Max(decimal.Zero, a.Balance.Sub(a.HoldAmount))
}

// Credit adds amount to the balance. Dormant accounts may still receive funds.
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: credit of %s to account %s", apperrors.ErrInvalidAmount, amount, a.AccountID)
	}
	if a.State != AccountActive && a.State != AccountDormant {
		return fmt.Errorf("%w: account %s is %s and cannot be credited", apperrors.ErrInvalidState, a.AccountID, a.State)
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Debit subtracts amount from the balance, enforcing the available balance.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debit of %s from account %s", apperrors.ErrInvalidAmount, amount, a.AccountID)
	}
	if a.State != AccountActive {
		return fmt.Errorf("%w: account %s is %s and cannot be debited", apperrors.ErrInvalidState, a.AccountID, a.State)
	}
	if available := a.AvailableBalance(); amount.GreaterThan(available) {
		return fmt.Errorf("%w: account %s available %s, requested %s", apperrors.ErrInsufficientFunds, a.AccountID, available, amount)
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Apply routes a signed balance effect through Credit or Debit.
func (a *Account) Apply(delta decimal.Decimal) error {
	if delta.IsNegative() {
		return a.Debit(delta.Neg())
	}
	return a.Credit(delta)
}

// Activate moves a draft, dormant or restricted account to active.
func (a *Account) Activate(now time.Time) error {
	switch a.State {
	case AccountDraft, AccountDormant, AccountRestricted:
		if a.ActivatedAt == nil {
			a.ActivatedAt = &now
		}
		a.State = AccountActive
		return nil
	default:
		return a.transitionError("activate")
	}
}

// MarkDormant flags an active account as dormant.
func (a *Account) MarkDormant() error {
	if a.State != AccountActive {
		return a.transitionError("mark dormant")
	}
	a.State = AccountDormant
	return nil
}

// Restrict freezes an account so it can no longer move money.
func (a *Account) Restrict() error {
	if a.State != AccountActive && a.State != AccountDormant {
		return a.transitionError("restrict")
	}
	a.State = AccountRestricted
	return nil
}

// Unrestrict returns a restricted account to active.
func (a *Account) Unrestrict() error {
	if a.State != AccountRestricted {
		return a.transitionError("unrestrict")
	}
	a.State = AccountActive
	return nil
}

// Close closes the account. The balance must be exactly zero.
func (a *Account) Close(now time.Time) error {
	if a.State == AccountClosed {
		return a.transitionError("close")
	}
	if !a.Balance.IsZero() {
		return fmt.Errorf("%w: account %s has balance %s", apperrors.ErrNonZeroBalance, a.AccountID, a.Balance)
	}
	a.State = AccountClosed
	a.ClosedAt = &now
	return nil
}

// SetHold replaces the held amount. It never touches Balance.
func (a *Account) SetHold(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: hold amount %s", apperrors.ErrInvalidAmount, amount)
	}
	if a.State == AccountClosed {
		return a.transitionError("place hold on")
	}
	a.HoldAmount = amount
	return nil
}

// SetOverdraft changes the overdraft policy.
func (a *Account) SetOverdraft(allowed bool, limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("%w: overdraft limit %s", apperrors.ErrInvalidAmount, limit)
	}
	if a.State == AccountClosed {
		return a.transitionError("change overdraft of")
	}
	a.OverdraftAllowed = allowed
	a.OverdraftLimit = limit
	return nil
}

func (a *Account) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s account %s in state %s", apperrors.ErrInvalidState, action, a.AccountID, a.State)
}
