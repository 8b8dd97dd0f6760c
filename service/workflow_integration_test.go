package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minebet/events"
	"minebet/game"
	"minebet/models"
	"minebet/repository"
	"minebet/repository/testutil"
	"minebet/service"
)

// The full deposit -> play -> withdraw flow against a real database,
// checking that every money movement leaves a matching audit entry.
func TestMoneyWorkflow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	ledgerService := service.NewLedgerService(uowFactory)
	requestService := service.NewRequestService(uowFactory)

	const userID = int64(42)

	// Deposit request: no balance change until approval.
	receiptRef := "photo:receipt1"
	depositID, err := requestService.CreateDepositRequest(ctx, userID, 10000, &receiptRef)
	require.NoError(t, err)

	balance, err := ledgerService.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	// Approval credits the full amount exactly once.
	_, err = requestService.DecideDeposit(ctx, depositID, true)
	require.NoError(t, err)

	balance, err = ledgerService.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)

	// A second decision must fail and change nothing.
	_, err = requestService.DecideDeposit(ctx, depositID, true)
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)

	balance, err = ledgerService.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)

	// Game round: stake debit then payout credit.
	_, err = ledgerService.AdjustBalance(ctx, userID, -3000, models.EntryTypeGameStake, nil)
	require.NoError(t, err)
	_, err = ledgerService.AdjustBalance(ctx, userID, 3630, models.EntryTypeGamePayout, nil)
	require.NoError(t, err)

	balance, err = ledgerService.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10630), balance)

	// Withdrawal escrows immediately; rejection refunds in full.
	withdrawalID, err := requestService.CreateWithdrawalRequest(ctx, userID, 10000)
	require.NoError(t, err)

	balance, err = ledgerService.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(630), balance)

	_, err = requestService.DecideWithdrawal(ctx, withdrawalID, false)
	require.NoError(t, err)

	balance, err = ledgerService.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10630), balance)

	// Every movement is in the audit trail and the arithmetic chains.
	ledgerRepo := repository.NewLedgerEntryRepository(testDB.DB)
	entries, err := ledgerRepo.GetByUser(ctx, userID, 50)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	var sum int64
	for _, entry := range entries {
		assert.Equal(t, entry.BalanceAfter, entry.BalanceBefore+entry.ChangeAmount)
		sum += entry.ChangeAmount
	}
	assert.Equal(t, balance, sum, "the balance is the sum of all recorded changes")
}

func TestGameRound_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	ledgerService := service.NewLedgerService(uowFactory)
	sessionService := service.NewSessionService(ledgerService, game.NewEngine(), 3000)

	const userID = int64(7)

	require.NoError(t, ledgerService.SetBalance(ctx, userID, 10000))

	// Stake below the minimum never reaches the ledger.
	_, err := sessionService.StartGame(ctx, userID, 100)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	result, err := sessionService.StartGame(ctx, userID, 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), result.NewBalance)

	// Abandoning forfeits the stake.
	require.NoError(t, sessionService.Abandon(ctx, userID))

	balance, err := ledgerService.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), balance)
}
