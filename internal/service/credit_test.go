package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/service"
	"fromprom-backend/internal/storage"
)

func newAccounts(t *testing.T, users ...string) repository.AccountRepository {
	t.Helper()
	repo := table.NewAccountRepository(storage.NewMemoryStore())
	for _, u := range users {
		require.NoError(t, repo.Create(context.Background(), &domain.Account{UserID: u, Email: u + "@example.com"}))
	}
	return repo
}

func TestCreditService_ChargeAndSpend(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts(t, "u1")
	svc := service.NewCreditService(accounts, 0, 0, 3)

	entry, err := svc.Charge(ctx, "u1", 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, entry.Amount)
	assert.Equal(t, 1000, entry.BalanceAfter)
	assert.Equal(t, domain.DescCreditCharge, entry.Description)

	entry, err = svc.Spend(ctx, "u1", 300, "")
	require.NoError(t, err)
	assert.Equal(t, -300, entry.Amount)
	assert.Equal(t, 700, entry.BalanceAfter)
	assert.Equal(t, domain.DescCreditSpend, entry.Description)

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 700, balance)
}

func TestCreditService_RejectsBadAmounts(t *testing.T) {
	ctx := context.Background()
	svc := service.NewCreditService(newAccounts(t, "u1"), 0, 0, 3)

	_, err := svc.Charge(ctx, "u1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = svc.Charge(ctx, "u1", -5)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = svc.Spend(ctx, "u1", 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Charge(ctx, "nobody", 100)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestCreditService_BalanceCeiling(t *testing.T) {
	ctx := context.Background()
	svc := service.NewCreditService(newAccounts(t, "u1"), 500, 0, 3)

	_, err := svc.Charge(ctx, "u1", 400)
	require.NoError(t, err)

	// A charge over the ceiling is rejected outright.
	_, err = svc.Charge(ctx, "u1", 101)
	assert.ErrorIs(t, err, domain.ErrBalanceLimitExceeded)

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 400, balance)

	// An exact landing on the ceiling is allowed.
	_, err = svc.Charge(ctx, "u1", 100)
	assert.NoError(t, err)
}

func TestCreditService_ClampPolicy(t *testing.T) {
	ctx := context.Background()
	svc := service.NewCreditService(newAccounts(t, "u1"), 500, 0, 3)

	_, err := svc.Charge(ctx, "u1", 450)
	require.NoError(t, err)

	// Under the clamp policy the balance stops at the ceiling while the
	// entry records the full amount.
	entry, err := svc.Credit(ctx, "u1", 200, domain.LedgerEntry{Description: domain.DescPromptSale}, domain.OverflowClamp)
	require.NoError(t, err)
	assert.Equal(t, 200, entry.Amount)
	assert.Equal(t, 500, entry.BalanceAfter)

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 500, balance)
}

func TestCreditService_BalanceReplay(t *testing.T) {
	ctx := context.Background()
	const ceiling = 500
	svc := service.NewCreditService(newAccounts(t, "u1"), ceiling, 0, 3)

	// A mixed sequence including one clamped payout.
	_, err := svc.Charge(ctx, "u1", 300)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, "u1", 100, "")
	require.NoError(t, err)
	_, err = svc.Charge(ctx, "u1", 200)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, "u1", 200, domain.LedgerEntry{Description: domain.DescPromptSale}, domain.OverflowClamp)
	require.NoError(t, err)
	_, err = svc.Spend(ctx, "u1", 50, "")
	require.NoError(t, err)

	entries, err := svc.GetHistory(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Replaying the signed amounts from zero reproduces every balance
	// snapshot; only clamped entries land short of the raw sum.
	running := 0
	clamped := 0
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		expected := running + e.Amount
		if expected > ceiling {
			expected = ceiling
			clamped++
		}
		assert.Equal(t, expected, e.BalanceAfter, "entry %q", e.Description)
		running = e.BalanceAfter
	}
	assert.Equal(t, 1, clamped)

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, running, balance)
}

func TestCreditService_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	svc := service.NewCreditService(newAccounts(t, "u1"), 0, 0, 3)

	_, err := svc.Charge(ctx, "u1", 100)
	require.NoError(t, err)

	_, err = svc.Spend(ctx, "u1", 250, "")
	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 100, insufficient.Balance)
	assert.Equal(t, 250, insufficient.Required)

	// The failed spend left no trace.
	entries, err := svc.GetHistory(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreditService_History(t *testing.T) {
	ctx := context.Background()
	svc := service.NewCreditService(newAccounts(t, "u1"), 0, 2, 3)

	for _, amount := range []int{100, 200, 300} {
		_, err := svc.Charge(ctx, "u1", amount)
		require.NoError(t, err)
	}

	// Zero limit falls back to the configured default.
	entries, err := svc.GetHistory(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 300, entries[0].Amount)
	assert.Equal(t, 200, entries[1].Amount)

	entries, err = svc.GetHistory(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
