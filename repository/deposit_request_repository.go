package repository

import (
	"context"
	"fmt"

	"minebet/database"
	"minebet/models"

	"github.com/jackc/pgx/v5"
)

// DepositRequestRepository implements the DepositRequestRepository interface
type DepositRequestRepository struct {
	q Queryable
}

// NewDepositRequestRepository creates a new deposit request repository
func NewDepositRequestRepository(db *database.DB) *DepositRequestRepository {
	return &DepositRequestRepository{q: db.Pool}
}

// newDepositRequestRepositoryWithTx creates a new deposit request repository bound to a transaction
func newDepositRequestRepositoryWithTx(tx Queryable) *DepositRequestRepository {
	return &DepositRequestRepository{q: tx}
}

// Create persists a new pending deposit request and fills in its
// generated ID, status and creation time.
func (r *DepositRequestRepository) Create(ctx context.Context, req *models.DepositRequest) error {
	query := `
		INSERT INTO deposit_requests (user_id, amount, receipt_ref)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query, req.UserID, req.Amount, req.ReceiptRef).Scan(
		&req.ID,
		&req.Status,
		&req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deposit request for user %d: %w", req.UserID, err)
	}

	return nil
}

// GetForUpdate retrieves a deposit request by ID with a row lock, so a
// concurrent decision on the same request blocks until this transaction
// finishes.
func (r *DepositRequestRepository) GetForUpdate(ctx context.Context, id int64) (*models.DepositRequest, error) {
	query := `
		SELECT id, user_id, amount, receipt_ref, status, created_at, decided_at
		FROM deposit_requests
		WHERE id = $1
		FOR UPDATE
	`

	var req models.DepositRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.UserID,
		&req.Amount,
		&req.ReceiptRef,
		&req.Status,
		&req.CreatedAt,
		&req.DecidedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("deposit request %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit request %d: %w", id, err)
	}

	return &req, nil
}

// MarkDecided flips the request into a terminal status.
func (r *DepositRequestRepository) MarkDecided(ctx context.Context, id int64, status models.RequestStatus) error {
	query := `
		UPDATE deposit_requests
		SET status = $2, decided_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to mark deposit request %d %s: %w", id, status, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("deposit request %d: %w", id, models.ErrNotFound)
	}

	return nil
}

// ListPending returns pending deposit requests oldest first.
func (r *DepositRequestRepository) ListPending(ctx context.Context) ([]*models.DepositRequest, error) {
	query := `
		SELECT id, user_id, amount, receipt_ref, status, created_at, decided_at
		FROM deposit_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending deposit requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.DepositRequest
	for rows.Next() {
		var req models.DepositRequest
		err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.Amount,
			&req.ReceiptRef,
			&req.Status,
			&req.CreatedAt,
			&req.DecidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposit requests: %w", err)
	}

	return requests, nil
}
