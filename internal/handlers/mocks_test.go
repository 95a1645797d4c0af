package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/services"
)

// MockOwnerService is a mock implementation of OwnerService for testing
type MockOwnerService struct {
	mock.Mock
}

func (m *MockOwnerService) List(ctx context.Context) ([]models.Owner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Owner), args.Error(1)
}

func (m *MockOwnerService) Get(ctx context.Context, id int) (*models.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Owner), args.Error(1)
}

func (m *MockOwnerService) Create(ctx context.Context, owner models.Owner) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

func (m *MockOwnerService) Update(ctx context.Context, id int, owner models.Owner) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

func (m *MockOwnerService) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOwnerService) ListProperties(ctx context.Context, ownerID int) ([]models.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockOwnerService) AddProperty(ctx context.Context, ownerID int, property models.Property) (int, error) {
	args := m.Called(ctx, ownerID, property)
	return args.Int(0), args.Error(1)
}

func (m *MockOwnerService) UpdateProperty(ctx context.Context, ownerID, propertyID int, update services.PropertyUpdate) error {
	args := m.Called(ctx, ownerID, propertyID, update)
	return args.Error(0)
}

func (m *MockOwnerService) RemoveProperty(ctx context.Context, ownerID, propertyID int) error {
	args := m.Called(ctx, ownerID, propertyID)
	return args.Error(0)
}

// MockTaxService is a mock implementation of TaxService for testing
type MockTaxService struct {
	mock.Mock
}

func (m *MockTaxService) ComputeObligation(ctx context.Context, ownerID int) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTaxService) ListRates(ctx context.Context) ([]models.TaxRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaxRate), args.Error(1)
}

func (m *MockTaxService) ChangeRate(ctx context.Context, category models.PropertyCategory, rate decimal.Decimal) error {
	args := m.Called(ctx, category, rate)
	return args.Error(0)
}

// MockDebtService is a mock implementation of DebtService for testing
type MockDebtService struct {
	mock.Mock
}

func (m *MockDebtService) FindDebtors(ctx context.Context) ([]models.Owner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Owner), args.Error(1)
}

func (m *MockDebtService) Recalculate(ctx context.Context) (services.RecalcSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.RecalcSummary), args.Error(1)
}

// MockNotifierService is a mock implementation of NotifierService for testing
type MockNotifierService struct {
	mock.Mock
}

func (m *MockNotifierService) NotifyAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNotifierService) NotifyOne(ctx context.Context, ownerID int) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}
