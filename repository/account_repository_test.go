package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minebet/models"
	"minebet/repository/testutil"
)

func TestAccountRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates with zero balance", func(t *testing.T) {
		account, err := repo.GetOrCreate(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, int64(1001), account.UserID)
		assert.Equal(t, int64(0), account.Balance)
	})

	t.Run("second call returns the same account", func(t *testing.T) {
		_, err := repo.ApplyDelta(ctx, 1001, 5000)
		require.NoError(t, err)

		account, err := repo.GetOrCreate(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), account.Balance)
	})
}

func TestAccountRepository_ApplyDelta(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 2002)
	require.NoError(t, err)

	t.Run("credit and debit", func(t *testing.T) {
		balance, err := repo.ApplyDelta(ctx, 2002, 10000)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), balance)

		balance, err = repo.ApplyDelta(ctx, 2002, -3000)
		require.NoError(t, err)
		assert.Equal(t, int64(7000), balance)
	})

	t.Run("overdraft rejected atomically", func(t *testing.T) {
		_, err := repo.ApplyDelta(ctx, 2002, -8000)

		var insufficient *models.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, int64(7000), insufficient.Have)
		assert.Equal(t, int64(8000), insufficient.Need)

		// The failed debit must not have moved anything.
		account, err := repo.GetOrCreate(ctx, 2002)
		require.NoError(t, err)
		assert.Equal(t, int64(7000), account.Balance)
	})

	t.Run("debit to exactly zero allowed", func(t *testing.T) {
		balance, err := repo.ApplyDelta(ctx, 2002, -7000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})
}

func TestAccountRepository_ApplyDelta_ConcurrentDebits(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 3003)
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, 3003, 10000)
	require.NoError(t, err)

	// 20 concurrent debits of 1000 against 10000: exactly 10 may win.
	const attempts = 20
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := repo.ApplyDelta(ctx, 3003, -1000)
			results <- err
		}()
	}

	var succeeded, rejected int
	for i := 0; i < attempts; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, models.ErrInsufficientFunds)
			rejected++
		}
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, rejected)

	account, err := repo.GetOrCreate(ctx, 3003)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
}

func TestAccountRepository_SetBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates account when absent", func(t *testing.T) {
		err := repo.SetBalance(ctx, 4004, 25000)
		require.NoError(t, err)

		account, err := repo.GetOrCreate(ctx, 4004)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), account.Balance)
	})

	t.Run("overwrites existing balance", func(t *testing.T) {
		err := repo.SetBalance(ctx, 4004, 100)
		require.NoError(t, err)

		account, err := repo.GetOrCreate(ctx, 4004)
		require.NoError(t, err)
		assert.Equal(t, int64(100), account.Balance)
	})
}

func TestAccountRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	accounts, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	for _, userID := range []int64{10, 20, 30} {
		_, err := repo.GetOrCreate(ctx, userID)
		require.NoError(t, err)
	}

	accounts, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}
