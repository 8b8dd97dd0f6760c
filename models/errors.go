package models

import (
	"errors"
	"fmt"
)

// Domain errors. Repositories and services return these (possibly
// wrapped) so callers can map them to user-facing messages without
// string matching.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNotFound       = errors.New("request not found")
	ErrAlreadyDecided = errors.New("request already decided")
	ErrSessionActive  = errors.New("game session already active")
	ErrNoSession      = errors.New("no active game session")
	ErrContention     = errors.New("operation contended, try again")

	// ErrInsufficientFunds is the errors.Is target for
	// InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// InsufficientFundsError is returned when a debit would take a balance
// negative. The balance is left unchanged.
type InsufficientFundsError struct {
	UserID int64
	Have   int64
	Need   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for user %d: have %d, need %d", e.UserID, e.Have, e.Need)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// IsDomainError reports whether err belongs to the expected, recoverable
// error taxonomy (as opposed to a storage or infrastructure failure).
func IsDomainError(err error) bool {
	for _, domain := range []error{
		ErrInvalidInput,
		ErrInvalidAmount,
		ErrNotFound,
		ErrAlreadyDecided,
		ErrSessionActive,
		ErrNoSession,
		ErrContention,
		ErrInsufficientFunds,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
