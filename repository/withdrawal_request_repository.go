package repository

import (
	"context"
	"fmt"

	"minebet/database"
	"minebet/models"

	"github.com/jackc/pgx/v5"
)

// WithdrawalRequestRepository implements the WithdrawalRequestRepository interface
type WithdrawalRequestRepository struct {
	q Queryable
}

// NewWithdrawalRequestRepository creates a new withdrawal request repository
func NewWithdrawalRequestRepository(db *database.DB) *WithdrawalRequestRepository {
	return &WithdrawalRequestRepository{q: db.Pool}
}

// newWithdrawalRequestRepositoryWithTx creates a new withdrawal request repository bound to a transaction
func newWithdrawalRequestRepositoryWithTx(tx Queryable) *WithdrawalRequestRepository {
	return &WithdrawalRequestRepository{q: tx}
}

// Create persists a new pending withdrawal request and fills in its
// generated ID, status and creation time. The escrow debit happens in
// the same transaction, at the service layer.
func (r *WithdrawalRequestRepository) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (user_id, amount)
		VALUES ($1, $2)
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query, req.UserID, req.Amount).Scan(
		&req.ID,
		&req.Status,
		&req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request for user %d: %w", req.UserID, err)
	}

	return nil
}

// GetForUpdate retrieves a withdrawal request by ID with a row lock.
func (r *WithdrawalRequestRepository) GetForUpdate(ctx context.Context, id int64) (*models.WithdrawalRequest, error) {
	query := `
		SELECT id, user_id, amount, status, created_at, decided_at
		FROM withdrawal_requests
		WHERE id = $1
		FOR UPDATE
	`

	var req models.WithdrawalRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.UserID,
		&req.Amount,
		&req.Status,
		&req.CreatedAt,
		&req.DecidedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("withdrawal request %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request %d: %w", id, err)
	}

	return &req, nil
}

// MarkDecided flips the request into a terminal status.
func (r *WithdrawalRequestRepository) MarkDecided(ctx context.Context, id int64, status models.RequestStatus) error {
	query := `
		UPDATE withdrawal_requests
		SET status = $2, decided_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to mark withdrawal request %d %s: %w", id, status, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal request %d: %w", id, models.ErrNotFound)
	}

	return nil
}

// ListPending returns pending withdrawal requests oldest first.
func (r *WithdrawalRequestRepository) ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error) {
	query := `
		SELECT id, user_id, amount, status, created_at, decided_at
		FROM withdrawal_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawal requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.WithdrawalRequest
	for rows.Next() {
		var req models.WithdrawalRequest
		err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.Amount,
			&req.Status,
			&req.CreatedAt,
			&req.DecidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawal requests: %w", err)
	}

	return requests, nil
}
