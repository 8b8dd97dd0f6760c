package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"minebet/events"
	"minebet/models"
)

// requestService manages the deposit and withdrawal approval workflow.
// Deposits credit the balance only on approval; withdrawals escrow the
// amount at request time and refund it on rejection.
type requestService struct {
	uowFactory UnitOfWorkFactory
}

// NewRequestService creates a new request workflow service.
func NewRequestService(uowFactory UnitOfWorkFactory) RequestService {
	return &requestService{
		uowFactory: uowFactory,
	}
}

// CreateDepositRequest records a pending deposit for later review.
// No balance change happens until the request is approved.
func (s *requestService) CreateDepositRequest(ctx context.Context, userID int64, amount int64, receiptRef *string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("deposit amount must be positive: %w", models.ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Ensure the account row exists before the FK insert.
	if _, err := uow.AccountRepository().GetOrCreate(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	request := &models.DepositRequest{
		UserID:     userID,
		Amount:     amount,
		ReceiptRef: receiptRef,
	}
	if err := uow.DepositRequestRepository().Create(ctx, request); err != nil {
		return 0, fmt.Errorf("failed to create deposit request: %w", err)
	}

	uow.EventBus().Publish(events.RequestCreatedEvent{
		Kind:      models.RequestKindDeposit,
		RequestID: request.ID,
		UserID:    userID,
		Amount:    amount,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"requestID": request.ID,
		"amount":    amount,
	}).Info("deposit request created")

	return request.ID, nil
}

// CreateWithdrawalRequest escrows the amount and records a pending
// withdrawal in one transaction. An insufficient balance rolls the
// whole request back.
func (s *requestService) CreateWithdrawalRequest(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("withdrawal amount must be positive: %w", models.ErrInvalidAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.AccountRepository().GetOrCreate(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	newBalance, err := uow.AccountRepository().ApplyDelta(ctx, userID, -amount)
	if err != nil {
		return 0, err
	}

	request := &models.WithdrawalRequest{
		UserID: userID,
		Amount: amount,
	}
	if err := uow.WithdrawalRequestRepository().Create(ctx, request); err != nil {
		return 0, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	entry := &models.LedgerEntry{
		UserID:        userID,
		BalanceBefore: newBalance + amount,
		BalanceAfter:  newBalance,
		ChangeAmount:  -amount,
		EntryType:     models.EntryTypeWithdrawalEscrow,
		Metadata:      map[string]any{"request_id": request.ID},
	}
	if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
		return 0, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.RequestCreatedEvent{
		Kind:      models.RequestKindWithdrawal,
		RequestID: request.ID,
		UserID:    userID,
		Amount:    amount,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"requestID": request.ID,
		"amount":    amount,
		"escrowed":  newBalance,
	}).Info("withdrawal request created")

	return request.ID, nil
}

// DecideDeposit approves or rejects a pending deposit. Approval credits
// the full amount; rejection leaves the balance untouched. Either way
// the decision is final.
func (s *requestService) DecideDeposit(ctx context.Context, requestID int64, approve bool) (*models.DepositRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := uow.DepositRequestRepository().GetForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("deposit request %d is %s: %w", requestID, request.Status, models.ErrAlreadyDecided)
	}

	status := models.RequestStatusRejected
	if approve {
		status = models.RequestStatusApproved

		newBalance, err := uow.AccountRepository().ApplyDelta(ctx, request.UserID, request.Amount)
		if err != nil {
			return nil, err
		}

		entry := &models.LedgerEntry{
			UserID:        request.UserID,
			BalanceBefore: newBalance - request.Amount,
			BalanceAfter:  newBalance,
			ChangeAmount:  request.Amount,
			EntryType:     models.EntryTypeDepositApproved,
			Metadata:      map[string]any{"request_id": request.ID},
		}
		if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record ledger entry: %w", err)
		}
	}

	if err := uow.DepositRequestRepository().MarkDecided(ctx, requestID, status); err != nil {
		return nil, err
	}
	request.Status = status

	uow.EventBus().Publish(events.RequestDecidedEvent{
		Kind:      models.RequestKindDeposit,
		RequestID: request.ID,
		UserID:    request.UserID,
		Amount:    request.Amount,
		Approved:  approve,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID": requestID,
		"userID":    request.UserID,
		"amount":    request.Amount,
		"status":    status,
	}).Info("deposit request decided")

	return request, nil
}

// DecideWithdrawal approves or rejects a pending withdrawal. The amount
// was escrowed at request time, so approval only marks the request;
// rejection refunds the escrow.
func (s *requestService) DecideWithdrawal(ctx context.Context, requestID int64, approve bool) (*models.WithdrawalRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := uow.WithdrawalRequestRepository().GetForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("withdrawal request %d is %s: %w", requestID, request.Status, models.ErrAlreadyDecided)
	}

	status := models.RequestStatusApproved
	if !approve {
		status = models.RequestStatusRejected

		newBalance, err := uow.AccountRepository().ApplyDelta(ctx, request.UserID, request.Amount)
		if err != nil {
			return nil, err
		}

		entry := &models.LedgerEntry{
			UserID:        request.UserID,
			BalanceBefore: newBalance - request.Amount,
			BalanceAfter:  newBalance,
			ChangeAmount:  request.Amount,
			EntryType:     models.EntryTypeWithdrawalRefund,
			Metadata:      map[string]any{"request_id": request.ID},
		}
		if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record ledger entry: %w", err)
		}
	}

	if err := uow.WithdrawalRequestRepository().MarkDecided(ctx, requestID, status); err != nil {
		return nil, err
	}
	request.Status = status

	uow.EventBus().Publish(events.RequestDecidedEvent{
		Kind:      models.RequestKindWithdrawal,
		RequestID: request.ID,
		UserID:    request.UserID,
		Amount:    request.Amount,
		Approved:  approve,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestID": requestID,
		"userID":    request.UserID,
		"amount":    request.Amount,
		"status":    status,
	}).Info("withdrawal request decided")

	return request, nil
}

// ListPendingDeposits returns all deposit requests awaiting a decision,
// oldest first.
func (s *requestService) ListPendingDeposits(ctx context.Context) ([]*models.DepositRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.DepositRequestRepository().ListPending(ctx)
}

// ListPendingWithdrawals returns all withdrawal requests awaiting a
// decision, oldest first.
func (s *requestService) ListPendingWithdrawals(ctx context.Context) ([]*models.WithdrawalRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.WithdrawalRequestRepository().ListPending(ctx)
}
