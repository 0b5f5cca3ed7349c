// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/agbank/banking-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockConstructorTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAccountRepository is a mock implementation of repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a new mock wired to the test lifecycle.
func NewMockAccountRepository(t mockConstructorTestingT) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	return accountResult(args)
}

func (m *MockAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	return accountResult(args)
}

func (m *MockAccountRepository) FindAll(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	return accountResult(args)
}

func (m *MockAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	args := m.Called(ctx, accountNumber)
	return accountResult(args)
}

func (m *MockAccountRepository) FindByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error) {
	args := m.Called(ctx, accountNumber)
	return accountResult(args)
}

func (m *MockAccountRepository) FindByCardNumber(ctx context.Context, cardNumber string) (*models.Account, error) {
	args := m.Called(ctx, cardNumber)
	return accountResult(args)
}

func (m *MockAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	args := m.Called(ctx, accountNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error) {
	args := m.Called(ctx, cardNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalances(ctx context.Context, accountID uuid.UUID, balanceDelta, cardBalanceDelta int64) error {
	args := m.Called(ctx, accountID, balanceDelta, cardBalanceDelta)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func accountResult(args mock.Arguments) (*models.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
