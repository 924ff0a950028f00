package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, store *memory.Store, id, number string) {
	t.Helper()
	err := store.Repositories().AccountRepo.SaveAccount(context.Background(), domain.Account{
		AccountID:     id,
		AccountNumber: number,
		CurrencyCode:  "USD",
		Balance:       decimal.Zero,
		State:         domain.AccountActive,
	})
	require.NoError(t, err)
}

func TestWithinTransaction_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedAccount(t, store, "a", "ACC000001")

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		accs, err := repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, []string{"a"})
		require.NoError(t, err)
		acc := accs["a"]
		acc.Balance = decimal.NewFromInt(99)
		require.NoError(t, repos.AccountRepo.UpdateAccountBalances(ctx, []domain.Account{acc}))

		// Visible inside the unit
		inside, err := repos.AccountRepo.FindAccountByID(ctx, "a")
		require.NoError(t, err)
		assert.True(t, inside.Balance.Equal(decimal.NewFromInt(99)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	acc, err := store.Repositories().AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
}

func TestWithinTransaction_PanicIsReturned(t *testing.T) {
	store := memory.NewStore()
	err := store.WithinTransaction(context.Background(), func(context.Context, portsrepo.RepositoryProvider) error {
		panic("oops")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestRowLocksSerialiseUnits(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedAccount(t, store, "a", "ACC000001")
	seedAccount(t, store, "b", "ACC000002")

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		// Alternate the argument order; the repository sorts before locking.
		ids := []string{"a", "b"}
		if i%2 == 1 {
			ids = []string{"b", "a"}
		}
		go func() {
			defer wg.Done()
			err := store.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
				accs, err := repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, ids)
				if err != nil {
					return err
				}
				a, b := accs["a"], accs["b"]
				a.Balance = a.Balance.Sub(decimal.NewFromInt(1))
				b.Balance = b.Balance.Add(decimal.NewFromInt(1))
				return repos.AccountRepo.UpdateAccountBalances(ctx, []domain.Account{a, b})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	accs, err := store.Repositories().AccountRepo.FindAccountsByIDs(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, accs["a"].Balance.Equal(decimal.NewFromInt(-workers)))
	assert.True(t, accs["b"].Balance.Equal(decimal.NewFromInt(workers)))
}

func TestLockWaitHonoursContext(t *testing.T) {
	store := memory.NewStore()
	seedAccount(t, store, "a", "ACC000001")

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = store.WithinTransaction(context.Background(), func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
			_, err := repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, []string{"a"})
			close(held)
			<-release
			return err
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := store.WithinTransaction(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		_, err := repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, []string{"a"})
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFindAccountsByIDsForUpdate_Missing(t *testing.T) {
	store := memory.NewStore()
	seedAccount(t, store, "a", "ACC000001")

	err := store.WithinTransaction(context.Background(), func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		_, err := repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, []string{"a", "zz"})
		return err
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestSaveAccount_DuplicateNumber(t *testing.T) {
	store := memory.NewStore()
	seedAccount(t, store, "a", "ACC000001")

	err := store.Repositories().AccountRepo.SaveAccount(context.Background(), domain.Account{AccountID: "b", AccountNumber: "ACC000001"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestUpdateAccount_KeepsBalance(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedAccount(t, store, "a", "ACC000001")
	repos := store.Repositories()

	require.NoError(t, repos.AccountRepo.UpdateAccountBalances(ctx, []domain.Account{{AccountID: "a", Balance: decimal.NewFromInt(10)}}))

	acc, err := repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	acc.State = domain.AccountDormant
	acc.Balance = decimal.NewFromInt(500)
	require.NoError(t, repos.AccountRepo.UpdateAccount(ctx, *acc))

	acc, err = repos.AccountRepo.FindAccountByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountDormant, acc.State)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(10)))
}

func TestSequences(t *testing.T) {
	seq := memory.NewSequences()
	ctx := context.Background()

	first, err := seq.NextReference(ctx, portsrepo.PrefixTransaction)
	require.NoError(t, err)
	second, err := seq.NextReference(ctx, portsrepo.PrefixTransaction)
	require.NoError(t, err)
	other, err := seq.NextReference(ctx, portsrepo.PrefixLoan)
	require.NoError(t, err)

	assert.Equal(t, "TXN000001", first)
	assert.Equal(t, "TXN000002", second)
	assert.Equal(t, "LN000001", other)
}

func TestFindDueInstructions(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Repositories().InstructionRepo
	today := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	rows := []domain.RecurringInstruction{
		{InstructionID: "due-late", State: domain.InstructionActive, NextExecutionDate: today},
		{InstructionID: "due-early", State: domain.InstructionActive, NextExecutionDate: today.AddDate(0, 0, -5)},
		{InstructionID: "future", State: domain.InstructionActive, NextExecutionDate: today.AddDate(0, 0, 1)},
		{InstructionID: "ended", State: domain.InstructionActive, NextExecutionDate: today, EndDate: &yesterday},
		{InstructionID: "draft", State: domain.InstructionDraft, NextExecutionDate: today},
	}
	for _, r := range rows {
		require.NoError(t, repo.SaveInstruction(ctx, r))
	}

	due, err := repo.FindDueInstructions(ctx, today)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "due-early", due[0].InstructionID)
	assert.Equal(t, "due-late", due[1].InstructionID)
}
