package models

import (
	"time"
)

// RequestStatus represents the lifecycle state of a funding request.
// Requests transition pending -> approved or pending -> rejected exactly
// once and are never deleted.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// RequestKind distinguishes the two funding request queues.
type RequestKind string

const (
	RequestKindDeposit    RequestKind = "deposit"
	RequestKindWithdrawal RequestKind = "withdrawal"
)

// DepositRequest represents a user's claim of an off-platform payment.
// Funds move only when the request is approved.
type DepositRequest struct {
	ID         int64         `db:"id"`
	UserID     int64         `db:"user_id"`
	Amount     int64         `db:"amount"`
	ReceiptRef *string       `db:"receipt_ref"`
	Status     RequestStatus `db:"status"`
	CreatedAt  time.Time     `db:"created_at"`
	DecidedAt  *time.Time    `db:"decided_at"`
}

// WithdrawalRequest represents a payout request. The amount is escrowed
// (debited) when the request is created; a rejection refunds it, an
// approval moves no further funds.
type WithdrawalRequest struct {
	ID        int64         `db:"id"`
	UserID    int64         `db:"user_id"`
	Amount    int64         `db:"amount"`
	Status    RequestStatus `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
	DecidedAt *time.Time    `db:"decided_at"`
}
