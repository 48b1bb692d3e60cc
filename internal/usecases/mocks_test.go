package usecases_test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"recurpay.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock RecurringPaymentRepository
type MockRecurringPaymentRepository struct {
	mock.Mock
}

func (m *MockRecurringPaymentRepository) Create(ctx context.Context, payment *entities.RecurringPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockRecurringPaymentRepository) GetByOwner(ctx context.Context, owner common.Address) (*entities.RecurringPayment, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RecurringPayment), args.Error(1)
}

func (m *MockRecurringPaymentRepository) UpdateLastExecutedAt(ctx context.Context, owner common.Address, at uint64) error {
	args := m.Called(ctx, owner, at)
	return args.Error(0)
}

func (m *MockRecurringPaymentRepository) Delete(ctx context.Context, owner common.Address) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockRecurringPaymentRepository) ListOwners(ctx context.Context, limit, offset int) ([]common.Address, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]common.Address), args.Error(1)
}

func (m *MockRecurringPaymentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock SchedulerSettingsRepository
type MockSchedulerSettingsRepository struct {
	mock.Mock
}

func (m *MockSchedulerSettingsRepository) Get(ctx context.Context) (*entities.SchedulerSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SchedulerSettings), args.Error(1)
}

func (m *MockSchedulerSettingsRepository) Save(ctx context.Context, settings *entities.SchedulerSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// Mock SchedulerEventRepository
type MockSchedulerEventRepository struct {
	mock.Mock
}

func (m *MockSchedulerEventRepository) Create(ctx context.Context, event *entities.SchedulerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockSchedulerEventRepository) ListByOwner(ctx context.Context, owner common.Address, limit int) ([]*entities.SchedulerEvent, error) {
	args := m.Called(ctx, owner, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SchedulerEvent), args.Error(1)
}

func (m *MockSchedulerEventRepository) List(ctx context.Context, limit int) ([]*entities.SchedulerEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SchedulerEvent), args.Error(1)
}

// Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *entities.SchedulerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Mock ContractVerifier
type MockContractVerifier struct {
	mock.Mock
}

func (m *MockContractVerifier) IsContract(ctx context.Context, address common.Address) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

// Mock TokenLedger
type MockTokenLedger struct {
	mock.Mock
}

func (m *MockTokenLedger) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	args := m.Called(ctx, token, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockTokenLedger) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	args := m.Called(ctx, token, owner, spender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockTokenLedger) Approve(ctx context.Context, token, owner, spender common.Address, amount *big.Int) error {
	args := m.Called(ctx, token, owner, spender, amount)
	return args.Error(0)
}

func (m *MockTokenLedger) Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error {
	args := m.Called(ctx, token, from, to, amount)
	return args.Error(0)
}

func (m *MockTokenLedger) TransferFrom(ctx context.Context, token, spender, from, to common.Address, amount *big.Int) error {
	args := m.Called(ctx, token, spender, from, to, amount)
	return args.Error(0)
}

func (m *MockTokenLedger) Mint(ctx context.Context, token, to common.Address, amount *big.Int) error {
	args := m.Called(ctx, token, to, amount)
	return args.Error(0)
}
