package models

import (
	"time"
)

// EntryType represents the cause of a balance change.
type EntryType string

const (
	EntryTypeDepositApproved  EntryType = "deposit_approved"
	EntryTypeWithdrawalEscrow EntryType = "withdrawal_escrow"
	EntryTypeWithdrawalRefund EntryType = "withdrawal_refund"
	EntryTypeGameStake        EntryType = "game_stake"
	EntryTypeGamePayout       EntryType = "game_payout"
	EntryTypeAdminAdjust      EntryType = "admin_adjust"
	EntryTypeAdminSet         EntryType = "admin_set"
)

// LedgerEntry is an immutable audit record of a single balance change.
// Every mutation to an account balance writes one of these in the same
// transaction.
type LedgerEntry struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	BalanceBefore int64          `db:"balance_before"`
	BalanceAfter  int64          `db:"balance_after"`
	ChangeAmount  int64          `db:"change_amount"`
	EntryType     EntryType      `db:"entry_type"`
	Metadata      map[string]any `db:"metadata"`
	CreatedAt     time.Time      `db:"created_at"`
}
