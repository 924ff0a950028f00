package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccount_AvailableBalance(t *testing.T) {
	tests := []struct {
		name      string
		balance   string
		hold      string
		overdraft bool
		limit     string
		want      string
	}{
		{name: "plain", balance: "100", hold: "0", limit: "0", want: "100"},
		{name: "hold reduces", balance: "100", hold: "30", limit: "0", want: "70"},
		{name: "clamped at zero", balance: "10", hold: "30", limit: "0", want: "0"},
		{name: "overdraft extends", balance: "100", hold: "20", overdraft: true, limit: "50", want: "130"},
		{name: "limit ignored when not allowed", balance: "100", hold: "0", overdraft: false, limit: "50", want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := domain.Account{
				Balance:          d(tt.balance),
				HoldAmount:       d(tt.hold),
				OverdraftAllowed: tt.overdraft,
				OverdraftLimit:   d(tt.limit),
			}
			assert.True(t, d(tt.want).Equal(acc.AvailableBalance()), "got %s", acc.AvailableBalance())
		})
	}
}

func TestAccount_DebitCredit(t *testing.T) {
	acc := domain.Account{AccountID: "a", State: domain.AccountActive, Balance: d("100")}

	require.NoError(t, acc.Debit(d("40")))
	assert.True(t, d("60").Equal(acc.Balance))

	err := acc.Debit(d("60.01"))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.True(t, d("60").Equal(acc.Balance), "failed debit must not change balance")

	assert.ErrorIs(t, acc.Credit(decimal.Zero), apperrors.ErrInvalidAmount)
	assert.ErrorIs(t, acc.Debit(d("-1")), apperrors.ErrInvalidAmount)

	require.NoError(t, acc.Apply(d("-60")))
	assert.True(t, acc.Balance.IsZero())
}

func TestAccount_StateGuards(t *testing.T) {
	dormant := domain.Account{AccountID: "a", State: domain.AccountDormant}
	assert.NoError(t, dormant.Credit(d("5")), "dormant accounts may receive funds")
	assert.ErrorIs(t, dormant.Debit(d("1")), apperrors.ErrInvalidState)

	restricted := domain.Account{AccountID: "b", State: domain.AccountRestricted, Balance: d("10")}
	assert.ErrorIs(t, restricted.Credit(d("1")), apperrors.ErrInvalidState)
	assert.ErrorIs(t, restricted.Debit(d("1")), apperrors.ErrInvalidState)
}

func TestAccount_Lifecycle(t *testing.T) {
	now := time.Now()
	acc := domain.Account{AccountID: "a", State: domain.AccountDraft}

	require.NoError(t, acc.Activate(now))
	assert.Equal(t, domain.AccountActive, acc.State)
	require.NotNil(t, acc.ActivatedAt)

	require.NoError(t, acc.MarkDormant())
	require.NoError(t, acc.Restrict())
	require.NoError(t, acc.Unrestrict())
	assert.Equal(t, domain.AccountActive, acc.State)

	acc.Balance = d("0.01")
	assert.ErrorIs(t, acc.Close(now), apperrors.ErrNonZeroBalance)

	acc.Balance = decimal.Zero
	require.NoError(t, acc.Close(now))
	assert.Equal(t, domain.AccountClosed, acc.State)
	assert.ErrorIs(t, acc.Close(now), apperrors.ErrInvalidState)
	assert.ErrorIs(t, acc.SetHold(d("1")), apperrors.ErrInvalidState)
}

func TestLoan_Status(t *testing.T) {
	due1 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	due2 := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	loan := domain.Loan{
		LoanID:          "l",
		PrincipalAmount: d("1000"),
		Payments: []domain.LoanPayment{
			{PaymentNumber: 1, DueDate: due1, PrincipalAmount: d("490"), InterestAmount: d("10"), PaidAmount: d("500"), State: domain.PaymentPaid},
			{PaymentNumber: 2, DueDate: due2, PrincipalAmount: d("510"), InterestAmount: d("5"), PaidAmount: d("15"), State: domain.PaymentPartial},
		},
	}

	st := loan.Status(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC))
	assert.True(t, d("515").Equal(st.TotalPaid))
	assert.True(t, d("510").Equal(st.OutstandingPrincipal))
	assert.True(t, st.IsOverdue)
	assert.Equal(t, 10, st.OverdueDays)
	assert.True(t, d("500").Equal(st.OverdueAmount))
}
