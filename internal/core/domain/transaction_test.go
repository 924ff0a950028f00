package domain_test

import (
	"testing"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionType_IsOutflow(t *testing.T) {
	tests := []struct {
		txType domain.TransactionType
		want   bool
	}{
		{domain.TxDeposit, false},
		{domain.TxWithdrawal, true},
		{domain.TxTransfer, true},
		{domain.TxFee, true},
		{domain.TxInterest, false},
		{domain.TxPayment, true},
		{domain.TxRefund, false},
		{domain.TxAdjustment, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.txType.IsOutflow())
		})
	}
}

func TestTransaction_BalanceEffects(t *testing.T) {
	dest := "acc-b"
	transfer := domain.Transaction{
		AccountID:            "acc-a",
		DestinationAccountID: &dest,
		Amount:               decimal.NewFromInt(-50),
	}

	effects := transfer.BalanceEffects()
	assert.Len(t, effects, 2)
	assert.True(t, decimal.NewFromInt(-50).Equal(effects["acc-a"]))
	assert.True(t, decimal.NewFromInt(50).Equal(effects["acc-b"]))

	// A reversal negates the amount and keeps the destination, so every
	// effect flips sign.
	reversal := transfer
	reversal.Amount = transfer.Amount.Neg()
	revEffects := reversal.BalanceEffects()
	for id, delta := range effects {
		assert.True(t, delta.Neg().Equal(revEffects[id]), "account %s", id)
	}

	deposit := domain.Transaction{AccountID: "acc-a", Amount: decimal.NewFromInt(10)}
	assert.Equal(t, []string{"acc-a"}, deposit.AccountIDs())
	assert.Len(t, deposit.BalanceEffects(), 1)
}

func TestTransaction_AmountInCurrency(t *testing.T) {
	txn := domain.Transaction{Amount: decimal.NewFromInt(100)}
	assert.True(t, decimal.NewFromInt(100).Equal(txn.AmountInCurrency()), "zero rate defaults to 1")

	txn.ExchangeRate = decimal.RequireFromString("1.5")
	assert.True(t, decimal.NewFromInt(150).Equal(txn.AmountInCurrency()))
}
