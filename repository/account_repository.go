package repository

import (
	"context"
	"fmt"

	"minebet/database"
	"minebet/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetOrCreate returns the account for the user, creating it with a zero
// balance if it does not exist. The create-if-absent is a single upsert,
// so concurrent first access from two callers never inserts twice.
func (r *AccountRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Account, error) {
	insert := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure account for user %d: %w", userID, err)
	}

	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", userID, err)
	}

	return &account, nil
}

// ApplyDelta atomically applies balance += delta and returns the new
// balance. The update is conditional on the result staying non-negative;
// a debit that would overdraw fails with InsufficientFundsError and
// leaves the balance unchanged.
func (r *AccountRepository) ApplyDelta(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2 AND balance + $1 >= 0
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, delta, userID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		// Either the account is missing or the debit would overdraw.
		account, getErr := r.GetOrCreate(ctx, userID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check account after rejected delta: %w", getErr)
		}
		return account.Balance, &models.InsufficientFundsError{
			UserID: userID,
			Have:   account.Balance,
			Need:   -delta,
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to apply delta %d for user %d: %w", delta, userID, err)
	}

	return newBalance, nil
}

// SetBalance unconditionally overwrites the balance, creating the
// account if needed. The caller validates amount >= 0.
func (r *AccountRepository) SetBalance(ctx context.Context, userID int64, amount int64) error {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			balance = EXCLUDED.balance,
			updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to set balance for user %d: %w", userID, err)
	}

	return nil
}

// GetAll returns all accounts. A plain scan, no lock held across rows.
func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM accounts
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.UserID,
			&account.Balance,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
