package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"minebet/events"
	"minebet/models"
)

func newRequestMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockAccountRepository, *MockDepositRequestRepository, *MockWithdrawalRequestRepository, *MockLedgerEntryRepository, *MockEventPublisher) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockDepositRepo := new(MockDepositRequestRepository)
	mockWithdrawalRepo := new(MockWithdrawalRequestRepository)
	mockLedgerRepo := new(MockLedgerEntryRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockAccountRepo, mockDepositRepo, mockWithdrawalRepo, mockLedgerRepo, mockPublisher)
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockFactory, mockAccountRepo, mockDepositRepo, mockWithdrawalRepo, mockLedgerRepo, mockPublisher
}

func TestRequestService_CreateDepositRequest_NoBalanceChange(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockDepositRepo, _, _, mockPublisher := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetOrCreate", ctx, int64(42)).Return(&models.Account{UserID: 42}, nil)

	mockDepositRepo.On("Create", ctx, mock.MatchedBy(func(r *models.DepositRequest) bool {
		return r.UserID == 42 && r.Amount == 5000 && r.ReceiptRef != nil && *r.ReceiptRef == "photo:abc"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.DepositRequest).ID = 11
	})

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		created, ok := e.(events.RequestCreatedEvent)
		return ok && created.Kind == models.RequestKindDeposit && created.RequestID == 11
	})).Return()

	service := NewRequestService(mockFactory)

	ref := "photo:abc"
	id, err := service.CreateDepositRequest(ctx, 42, 5000, &ref)

	assert.NoError(t, err)
	assert.Equal(t, int64(11), id)
	// The balance never moves before approval.
	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	mockDepositRepo.AssertExpectations(t)
}

func TestRequestService_CreateDepositRequest_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)

	service := NewRequestService(mockFactory)

	_, err := service.CreateDepositRequest(ctx, 42, 0, nil)

	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestRequestService_CreateWithdrawalRequest_EscrowsAmount(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo, mockLedgerRepo, mockPublisher := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetOrCreate", ctx, int64(42)).Return(&models.Account{UserID: 42, Balance: 25000}, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(42), int64(-10000)).Return(int64(15000), nil)

	mockWithdrawalRepo.On("Create", ctx, mock.MatchedBy(func(r *models.WithdrawalRequest) bool {
		return r.UserID == 42 && r.Amount == 10000
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.WithdrawalRequest).ID = 21
	})

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.UserID == 42 &&
			e.BalanceBefore == 25000 &&
			e.BalanceAfter == 15000 &&
			e.ChangeAmount == -10000 &&
			e.EntryType == models.EntryTypeWithdrawalEscrow
	})).Return(nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		created, ok := e.(events.RequestCreatedEvent)
		return ok && created.Kind == models.RequestKindWithdrawal && created.RequestID == 21
	})).Return()

	service := NewRequestService(mockFactory)

	id, err := service.CreateWithdrawalRequest(ctx, 42, 10000)

	assert.NoError(t, err)
	assert.Equal(t, int64(21), id)
	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestRequestService_CreateWithdrawalRequest_InsufficientRollsBack(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo, _, _ := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetOrCreate", ctx, int64(42)).Return(&models.Account{UserID: 42, Balance: 4000}, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(42), int64(-10000)).Return(int64(4000), &models.InsufficientFundsError{
		UserID: 42,
		Have:   4000,
		Need:   10000,
	})

	service := NewRequestService(mockFactory)

	_, err := service.CreateWithdrawalRequest(ctx, 42, 10000)

	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	mockWithdrawalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestRequestService_DecideDeposit_ApproveCredits(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockDepositRepo, _, mockLedgerRepo, mockPublisher := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockDepositRepo.On("GetForUpdate", ctx, int64(11)).Return(&models.DepositRequest{
		ID:        11,
		UserID:    42,
		Amount:    5000,
		Status:    models.RequestStatusPending,
		CreatedAt: time.Now(),
	}, nil)

	mockAccountRepo.On("ApplyDelta", ctx, int64(42), int64(5000)).Return(int64(9000), nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.UserID == 42 &&
			e.BalanceBefore == 4000 &&
			e.BalanceAfter == 9000 &&
			e.EntryType == models.EntryTypeDepositApproved
	})).Return(nil)

	mockDepositRepo.On("MarkDecided", ctx, int64(11), models.RequestStatusApproved).Return(nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		decided, ok := e.(events.RequestDecidedEvent)
		return ok && decided.Kind == models.RequestKindDeposit && decided.RequestID == 11 && decided.Approved
	})).Return()

	service := NewRequestService(mockFactory)

	request, err := service.DecideDeposit(ctx, 11, true)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, request.Status)
	mockAccountRepo.AssertExpectations(t)
	mockDepositRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestRequestService_DecideDeposit_RejectLeavesBalance(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockDepositRepo, _, _, mockPublisher := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockDepositRepo.On("GetForUpdate", ctx, int64(11)).Return(&models.DepositRequest{
		ID:     11,
		UserID: 42,
		Amount: 5000,
		Status: models.RequestStatusPending,
	}, nil)
	mockDepositRepo.On("MarkDecided", ctx, int64(11), models.RequestStatusRejected).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	service := NewRequestService(mockFactory)

	request, err := service.DecideDeposit(ctx, 11, false)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, request.Status)
	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestService_DecideDeposit_AlreadyDecided(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, mockDepositRepo, _, _, _ := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockDepositRepo.On("GetForUpdate", ctx, int64(11)).Return(&models.DepositRequest{
		ID:     11,
		UserID: 42,
		Amount: 5000,
		Status: models.RequestStatusApproved,
	}, nil)

	service := NewRequestService(mockFactory)

	_, err := service.DecideDeposit(ctx, 11, true)

	assert.ErrorIs(t, err, models.ErrAlreadyDecided)
	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestRequestService_DecideWithdrawal_RejectRefundsEscrow(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo, mockLedgerRepo, mockPublisher := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetForUpdate", ctx, int64(21)).Return(&models.WithdrawalRequest{
		ID:     21,
		UserID: 42,
		Amount: 10000,
		Status: models.RequestStatusPending,
	}, nil)

	mockAccountRepo.On("ApplyDelta", ctx, int64(42), int64(10000)).Return(int64(15000), nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.EntryType == models.EntryTypeWithdrawalRefund && e.ChangeAmount == 10000
	})).Return(nil)

	mockWithdrawalRepo.On("MarkDecided", ctx, int64(21), models.RequestStatusRejected).Return(nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		decided, ok := e.(events.RequestDecidedEvent)
		return ok && decided.Kind == models.RequestKindWithdrawal && !decided.Approved
	})).Return()

	service := NewRequestService(mockFactory)

	request, err := service.DecideWithdrawal(ctx, 21, false)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, request.Status)
	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestRequestService_DecideWithdrawal_ApproveNoBalanceChange(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockAccountRepo, _, mockWithdrawalRepo, _, mockPublisher := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetForUpdate", ctx, int64(21)).Return(&models.WithdrawalRequest{
		ID:     21,
		UserID: 42,
		Amount: 10000,
		Status: models.RequestStatusPending,
	}, nil)
	mockWithdrawalRepo.On("MarkDecided", ctx, int64(21), models.RequestStatusApproved).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	service := NewRequestService(mockFactory)

	request, err := service.DecideWithdrawal(ctx, 21, true)

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, request.Status)
	// Funds already left at request time.
	mockAccountRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestService_DecideWithdrawal_NotFound(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, _, mockWithdrawalRepo, _, _ := newRequestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWithdrawalRepo.On("GetForUpdate", ctx, int64(99)).Return(nil, models.ErrNotFound)

	service := NewRequestService(mockFactory)

	_, err := service.DecideWithdrawal(ctx, 99, true)

	assert.ErrorIs(t, err, models.ErrNotFound)
}
