package service

import (
	"context"
	"fmt"
	"time"

	"minebet/events"
	"minebet/models"
)

// readRetries bounds how often idempotent reads are retried on storage
// failures. Mutations are never retried: an ambiguous failure could
// double-apply.
const (
	readRetries      = 3
	readRetryBackoff = 50 * time.Millisecond
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// GetBalance returns the persisted balance, creating the account with
// balance 0 on first access.
func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := withReadRetries(func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback() // No-op if already committed

		account, err := uow.AccountRepository().GetOrCreate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}

		// The lazy insert must survive the read.
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		balance = account.Balance
		return nil
	})
	return balance, err
}

// AdjustBalance applies balance += delta, records the audit entry and
// publishes the balance change event, all inside one transaction.
func (s *ledgerService) AdjustBalance(ctx context.Context, userID int64, delta int64, entryType models.EntryType, metadata map[string]any) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := uow.AccountRepository().GetOrCreate(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	newBalance, err := uow.AccountRepository().ApplyDelta(ctx, userID, delta)
	if err != nil {
		// Rejected in full; report the untouched balance upstream.
		return newBalance, err
	}

	// The conditional update holds the row lock, so the pre-image is
	// exactly newBalance - delta.
	entry := &models.LedgerEntry{
		UserID:        userID,
		BalanceBefore: newBalance - delta,
		BalanceAfter:  newBalance,
		ChangeAmount:  delta,
		EntryType:     entryType,
		Metadata:      metadata,
	}
	if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
		return 0, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       userID,
		OldBalance:   newBalance - delta,
		NewBalance:   newBalance,
		ChangeAmount: delta,
		EntryType:    entryType,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// SetBalance overwrites a balance for privileged callers.
func (s *ledgerService) SetBalance(ctx context.Context, userID int64, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("cannot set balance to %d: %w", amount, models.ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	if err := uow.AccountRepository().SetBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}

	entry := &models.LedgerEntry{
		UserID:        userID,
		BalanceBefore: account.Balance,
		BalanceAfter:  amount,
		ChangeAmount:  amount - account.Balance,
		EntryType:     models.EntryTypeAdminSet,
	}
	if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       userID,
		OldBalance:   account.Balance,
		NewBalance:   amount,
		ChangeAmount: amount - account.Balance,
		EntryType:    models.EntryTypeAdminSet,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListBalances returns a snapshot of all accounts.
func (s *ledgerService) ListBalances(ctx context.Context) ([]*models.Account, error) {
	var accounts []*models.Account
	err := withReadRetries(func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		var err error
		accounts, err = uow.AccountRepository().GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		return nil
	})
	return accounts, err
}

// History returns the most recent audit entries for a user, newest
// first.
func (s *ledgerService) History(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := withReadRetries(func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		var err error
		entries, err = uow.LedgerEntryRepository().GetByUser(ctx, userID, limit)
		if err != nil {
			return fmt.Errorf("failed to get ledger entries: %w", err)
		}
		return nil
	})
	return entries, err
}

// withReadRetries retries an idempotent read a bounded number of times.
// Domain errors are returned immediately; only infrastructure failures
// are retried.
func withReadRetries(fn func() error) error {
	var err error
	for attempt := 0; attempt < readRetries; attempt++ {
		if err = fn(); err == nil || models.IsDomainError(err) {
			return err
		}
		time.Sleep(readRetryBackoff)
	}
	return err
}
