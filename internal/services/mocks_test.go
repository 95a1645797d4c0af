package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/notification"
)

// MockOwnerRepository is a mock implementation of OwnerRepository for testing
type MockOwnerRepository struct {
	mock.Mock
}

func (m *MockOwnerRepository) FindAll(ctx context.Context) ([]models.Owner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Owner), args.Error(1)
}

func (m *MockOwnerRepository) FindByID(ctx context.Context, id int) (*models.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Owner), args.Error(1)
}

func (m *MockOwnerRepository) FindDebtors(ctx context.Context) ([]models.Owner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Owner), args.Error(1)
}

func (m *MockOwnerRepository) Save(ctx context.Context, owner models.Owner) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

func (m *MockOwnerRepository) Update(ctx context.Context, id int, owner models.Owner) (bool, error) {
	args := m.Called(ctx, id, owner)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnerRepository) Remove(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnerRepository) AddProperty(ctx context.Context, ownerID int, property models.Property) (int, error) {
	args := m.Called(ctx, ownerID, property)
	return args.Int(0), args.Error(1)
}

func (m *MockOwnerRepository) ReplaceProperties(ctx context.Context, ownerID int, properties []models.Property) (bool, error) {
	args := m.Called(ctx, ownerID, properties)
	return args.Bool(0), args.Error(1)
}

// MockTaxRateRepository is a mock implementation of TaxRateRepository for testing
type MockTaxRateRepository struct {
	mock.Mock
}

func (m *MockTaxRateRepository) GetAll(ctx context.Context) ([]models.TaxRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepository) ChangeRate(ctx context.Context, category models.PropertyCategory, rate decimal.Decimal) (bool, error) {
	args := m.Called(ctx, category, rate)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaxRateRepository) Seed(ctx context.Context, rates []models.TaxRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

// MockBus is a mock implementation of notification.Bus for testing
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Send(ctx context.Context, event notification.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockBus) Close() {
	m.Called()
}
