package service

import (
	"context"

	"minebet/events"
	"minebet/game"
	"minebet/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetOrCreate returns the account for the user, creating it with a
	// zero balance if absent. The create-if-absent is atomic.
	GetOrCreate(ctx context.Context, userID int64) (*models.Account, error)

	// ApplyDelta atomically applies balance += delta, failing with
	// InsufficientFundsError when the result would be negative.
	ApplyDelta(ctx context.Context, userID int64, delta int64) (int64, error)

	// SetBalance unconditionally overwrites the balance
	SetBalance(ctx context.Context, userID int64, amount int64) error

	// GetAll returns all accounts
	GetAll(ctx context.Context) ([]*models.Account, error)
}

// DepositRequestRepository defines the interface for deposit request data access
type DepositRequestRepository interface {
	// Create persists a new pending deposit request
	Create(ctx context.Context, req *models.DepositRequest) error

	// GetForUpdate retrieves a deposit request by ID with a row lock
	GetForUpdate(ctx context.Context, id int64) (*models.DepositRequest, error)

	// MarkDecided flips the request into a terminal status
	MarkDecided(ctx context.Context, id int64, status models.RequestStatus) error

	// ListPending returns pending deposit requests oldest first
	ListPending(ctx context.Context) ([]*models.DepositRequest, error)
}

// WithdrawalRequestRepository defines the interface for withdrawal request data access
type WithdrawalRequestRepository interface {
	// Create persists a new pending withdrawal request
	Create(ctx context.Context, req *models.WithdrawalRequest) error

	// GetForUpdate retrieves a withdrawal request by ID with a row lock
	GetForUpdate(ctx context.Context, id int64) (*models.WithdrawalRequest, error)

	// MarkDecided flips the request into a terminal status
	MarkDecided(ctx context.Context, id int64, status models.RequestStatus) error

	// ListPending returns pending withdrawal requests oldest first
	ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error)
}

// LedgerEntryRepository defines the interface for balance audit records
type LedgerEntryRepository interface {
	// Record creates a new audit entry for a balance change
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByUser returns the most recent ledger entries for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// LedgerService owns every balance mutation path. No other component
// writes account balances.
type LedgerService interface {
	// GetBalance returns the persisted balance, lazily creating the
	// account with balance 0 on first access.
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// AdjustBalance atomically applies balance += delta and records an
	// audit entry of the given type in the same transaction. Returns the
	// new balance, or InsufficientFundsError with the balance unchanged.
	AdjustBalance(ctx context.Context, userID int64, delta int64, entryType models.EntryType, metadata map[string]any) (int64, error)

	// SetBalance unconditionally overwrites a balance. Privileged
	// callers only; negative amounts fail with ErrInvalidAmount.
	SetBalance(ctx context.Context, userID int64, amount int64) error

	// ListBalances returns a snapshot of all accounts
	ListBalances(ctx context.Context) ([]*models.Account, error)

	// History returns the most recent audit entries for a user
	History(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// RequestService manages the deposit/withdrawal request lifecycle
type RequestService interface {
	// CreateDepositRequest persists a pending deposit claim. No balance
	// change until approval.
	CreateDepositRequest(ctx context.Context, userID int64, amount int64, receiptRef *string) (int64, error)

	// CreateWithdrawalRequest persists a pending withdrawal and escrows
	// the amount from the balance in the same transaction. If the debit
	// fails the request never exists.
	CreateWithdrawalRequest(ctx context.Context, userID int64, amount int64) (int64, error)

	// DecideDeposit approves (credits the amount) or rejects (no balance
	// change) a pending deposit request.
	DecideDeposit(ctx context.Context, requestID int64, approve bool) (*models.DepositRequest, error)

	// DecideWithdrawal approves (no balance change, funds already left)
	// or rejects (refunds the escrow) a pending withdrawal request.
	DecideWithdrawal(ctx context.Context, requestID int64, approve bool) (*models.WithdrawalRequest, error)

	// ListPendingDeposits returns pending deposits oldest first
	ListPendingDeposits(ctx context.Context) ([]*models.DepositRequest, error)

	// ListPendingWithdrawals returns pending withdrawals oldest first
	ListPendingWithdrawals(ctx context.Context) ([]*models.WithdrawalRequest, error)
}

// GameEngine defines the pure game rules the session store delegates to
type GameEngine interface {
	NewBoard() []int
	Multiplier(tilesOpened int) int64
	Payout(stake int64, tilesOpened int) int64
	Reveal(session *models.GameSession, tile int) (game.Outcome, error)
	RenderBoard(opened, mines []int, revealAll bool) string
}

// StartResult is returned when a game is started
type StartResult struct {
	Stake      int64
	NewBalance int64
	Board      string
}

// RevealResult is returned for every successful reveal
type RevealResult struct {
	GameOver    bool
	TilesOpened int
	Multiplier  int64
	Potential   int64
	Balance     int64
	Board       string
}

// CashoutResult is returned when a session is cashed out
type CashoutResult struct {
	TilesOpened int
	Multiplier  int64
	Payout      int64
	NewBalance  int64
	Board       string
}

// SessionService mediates the in-memory game sessions, at most one per
// user, serializing all session operations per user.
type SessionService interface {
	// StartGame escrows the stake and creates a session. Fails with
	// ErrSessionActive or InsufficientFundsError.
	StartGame(ctx context.Context, userID int64, stake int64) (*StartResult, error)

	// Reveal opens a tile. A mine destroys the session; the loss is the
	// earlier stake debit. Fails with ErrNoSession.
	Reveal(ctx context.Context, userID int64, tile int) (*RevealResult, error)

	// Cashout credits stake x multiplier and destroys the session
	Cashout(ctx context.Context, userID int64) (*CashoutResult, error)

	// Abandon destroys the session, forfeiting the stake
	Abandon(ctx context.Context, userID int64) error

	// ActiveSession returns a copy of the user's live session, if any
	ActiveSession(userID int64) (*models.GameSession, bool)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	DepositRequestRepository() DepositRequestRepository
	WithdrawalRequestRepository() WithdrawalRequestRepository
	LedgerEntryRepository() LedgerEntryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
