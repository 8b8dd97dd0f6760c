package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minebet/events"
	"minebet/models"
	"minebet/repository/testutil"
)

func TestDepositRequestRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewDepositRequestRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.GetOrCreate(ctx, 42)
	require.NoError(t, err)

	receiptRef := "photo:abc123"
	request := &models.DepositRequest{
		UserID:     42,
		Amount:     5000,
		ReceiptRef: &receiptRef,
	}
	require.NoError(t, repo.Create(ctx, request))
	assert.NotZero(t, request.ID)
	assert.Equal(t, models.RequestStatusPending, request.Status)

	t.Run("get for update", func(t *testing.T) {
		fetched, err := repo.GetForUpdate(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(42), fetched.UserID)
		assert.Equal(t, int64(5000), fetched.Amount)
		require.NotNil(t, fetched.ReceiptRef)
		assert.Equal(t, receiptRef, *fetched.ReceiptRef)
	})

	t.Run("listed while pending", func(t *testing.T) {
		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, request.ID, pending[0].ID)
	})

	t.Run("mark decided", func(t *testing.T) {
		require.NoError(t, repo.MarkDecided(ctx, request.ID, models.RequestStatusApproved))

		fetched, err := repo.GetForUpdate(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, fetched.Status)
		assert.NotNil(t, fetched.DecidedAt)

		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("missing request", func(t *testing.T) {
		_, err := repo.GetForUpdate(ctx, 99999)
		assert.ErrorIs(t, err, models.ErrNotFound)

		err = repo.MarkDecided(ctx, 99999, models.RequestStatusRejected)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestWithdrawalRequestRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewWithdrawalRequestRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.GetOrCreate(ctx, 42)
	require.NoError(t, err)

	first := &models.WithdrawalRequest{UserID: 42, Amount: 10000}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.WithdrawalRequest{UserID: 42, Amount: 20000}
	require.NoError(t, repo.Create(ctx, second))

	t.Run("pending ordered oldest first", func(t *testing.T) {
		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, first.ID, pending[0].ID)
		assert.Equal(t, second.ID, pending[1].ID)
	})

	t.Run("decision removes from pending", func(t *testing.T) {
		require.NoError(t, repo.MarkDecided(ctx, first.ID, models.RequestStatusRejected))

		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, second.ID, pending[0].ID)
	})
}

func TestLedgerEntryRepository_RecordAndFetch(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewLedgerEntryRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.GetOrCreate(ctx, 42)
	require.NoError(t, err)

	entries := []*models.LedgerEntry{
		{UserID: 42, BalanceBefore: 0, BalanceAfter: 5000, ChangeAmount: 5000, EntryType: models.EntryTypeDepositApproved},
		{UserID: 42, BalanceBefore: 5000, BalanceAfter: 2000, ChangeAmount: -3000, EntryType: models.EntryTypeGameStake, Metadata: map[string]any{"stake": 3000}},
	}
	for _, entry := range entries {
		require.NoError(t, repo.Record(ctx, entry))
		assert.NotZero(t, entry.ID)
	}

	fetched, err := repo.GetByUser(ctx, 42, 10)
	require.NoError(t, err)
	require.Len(t, fetched, 2)

	// Most recent first.
	assert.Equal(t, models.EntryTypeGameStake, fetched[0].EntryType)
	assert.Equal(t, int64(3000), int64(fetched[0].Metadata["stake"].(float64)))
	assert.Equal(t, models.EntryTypeDepositApproved, fetched[1].EntryType)
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().GetOrCreate(ctx, 42)
	require.NoError(t, err)
	_, err = uow.AccountRepository().ApplyDelta(ctx, 42, 5000)
	require.NoError(t, err)

	require.NoError(t, uow.Rollback())

	accountRepo := NewAccountRepository(testDB.DB)
	account, err := accountRepo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance, "rolled back writes must not be visible")
}
