package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"minebet/events"
	"minebet/game"
	"minebet/models"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, userID int64, delta int64) (int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockDepositRequestRepository is a mock implementation of DepositRequestRepository
type MockDepositRequestRepository struct {
	mock.Mock
}

func (m *MockDepositRequestRepository) Create(ctx context.Context, req *models.DepositRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDepositRequestRepository) GetForUpdate(ctx context.Context, id int64) (*models.DepositRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositRequest), args.Error(1)
}

func (m *MockDepositRequestRepository) MarkDecided(ctx context.Context, id int64, status models.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDepositRequestRepository) ListPending(ctx context.Context) ([]*models.DepositRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DepositRequest), args.Error(1)
}

// MockWithdrawalRequestRepository is a mock implementation of WithdrawalRequestRepository
type MockWithdrawalRequestRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRequestRepository) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockWithdrawalRequestRepository) GetForUpdate(ctx context.Context, id int64) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRequestRepository) MarkDecided(ctx context.Context, id int64, status models.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockWithdrawalRequestRepository) ListPending(ctx context.Context) ([]*models.WithdrawalRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawalRequest), args.Error(1)
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	accountRepo    AccountRepository
	depositRepo    DepositRequestRepository
	withdrawalRepo WithdrawalRequestRepository
	ledgerRepo     LedgerEntryRepository
	eventBus       EventPublisher
}

// SetRepositories wires the repositories the mock hands out
func (m *MockUnitOfWork) SetRepositories(
	accountRepo AccountRepository,
	depositRepo DepositRequestRepository,
	withdrawalRepo WithdrawalRequestRepository,
	ledgerRepo LedgerEntryRepository,
	eventBus EventPublisher,
) {
	m.accountRepo = accountRepo
	m.depositRepo = depositRepo
	m.withdrawalRepo = withdrawalRepo
	m.ledgerRepo = ledgerRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) DepositRequestRepository() DepositRequestRepository {
	return m.depositRepo
}

func (m *MockUnitOfWork) WithdrawalRequestRepository() WithdrawalRequestRepository {
	return m.withdrawalRepo
}

func (m *MockUnitOfWork) LedgerEntryRepository() LedgerEntryRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockGameEngine is a mock implementation of GameEngine
type MockGameEngine struct {
	mock.Mock
}

func (m *MockGameEngine) NewBoard() []int {
	args := m.Called()
	return args.Get(0).([]int)
}

func (m *MockGameEngine) Multiplier(tilesOpened int) int64 {
	args := m.Called(tilesOpened)
	return args.Get(0).(int64)
}

func (m *MockGameEngine) Payout(stake int64, tilesOpened int) int64 {
	args := m.Called(stake, tilesOpened)
	return args.Get(0).(int64)
}

func (m *MockGameEngine) Reveal(session *models.GameSession, tile int) (game.Outcome, error) {
	args := m.Called(session, tile)
	return args.Get(0).(game.Outcome), args.Error(1)
}

func (m *MockGameEngine) RenderBoard(opened, mines []int, revealAll bool) string {
	args := m.Called(opened, mines, revealAll)
	return args.String(0)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) AdjustBalance(ctx context.Context, userID int64, delta int64, entryType models.EntryType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, userID, delta, entryType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) SetBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockLedgerService) ListBalances(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockLedgerService) History(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}
