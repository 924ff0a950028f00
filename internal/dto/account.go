package dto

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	Name             string          `json:"name" binding:"required"`
	CustomerRef      string          `json:"customerRef" binding:"required"`
	CurrencyCode     string          `json:"currencyCode" binding:"required,len=3"`
	OverdraftAllowed bool            `json:"overdraftAllowed"`
	OverdraftLimit   decimal.Decimal `json:"overdraftLimit"`
	Activate         bool            `json:"activate"` // Open directly in the active state
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID         string              `json:"accountID"`
	AccountNumber     string              `json:"accountNumber"`
	Name              string              `json:"name"`
	CustomerRef       string              `json:"customerRef"`
	CurrencyCode      string              `json:"currencyCode"`
	Balance           decimal.Decimal     `json:"balance"`
	AvailableBalance  decimal.Decimal     `json:"availableBalance"`
	HoldAmount        decimal.Decimal     `json:"holdAmount"`
	OverdraftAllowed  bool                `json:"overdraftAllowed"`
	OverdraftLimit    decimal.Decimal     `json:"overdraftLimit"`
	State             domain.AccountState `json:"state"`
	LastTransactionAt *time.Time          `json:"lastTransactionAt,omitempty"`
	ActivatedAt       *time.Time          `json:"activatedAt,omitempty"`
	ClosedAt          *time.Time          `json:"closedAt,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	CreatedBy         string              `json:"createdBy"`
	LastUpdatedAt     time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy     string              `json:"lastUpdatedBy"`
}

// MoneyMovementRequest is the body of a deposit or withdrawal. Amount is a
// positive magnitude.
type MoneyMovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Channel     *ChannelRequest `json:"channel"`
}

// HoldRequest replaces the held amount on an account.
type HoldRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// OverdraftRequest changes the overdraft policy of an account.
type OverdraftRequest struct {
	Allowed bool            `json:"allowed"`
	Limit   decimal.Decimal `json:"limit"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:         acc.AccountID,
		AccountNumber:     acc.AccountNumber,
		Name:              acc.Name,
		CustomerRef:       acc.CustomerRef,
		CurrencyCode:      acc.CurrencyCode,
		Balance:           acc.Balance,
		AvailableBalance:  acc.AvailableBalance(),
		HoldAmount:        acc.HoldAmount,
		OverdraftAllowed:  acc.OverdraftAllowed,
		OverdraftLimit:    acc.OverdraftLimit,
		State:             acc.State,
		LastTransactionAt: acc.LastTransactionAt,
		ActivatedAt:       acc.ActivatedAt,
		ClosedAt:          acc.ClosedAt,
		CreatedAt:         acc.CreatedAt,
		CreatedBy:         acc.CreatedBy,
		LastUpdatedAt:     acc.LastUpdatedAt,
		LastUpdatedBy:     acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
