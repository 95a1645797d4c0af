package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propreg/api/internal/logger"
	"github.com/propreg/api/internal/models"
)

func defaultRateRows() []models.TaxRate {
	return models.DefaultTaxRates()
}

func ownerWithPortfolio(id int, properties []models.Property) *models.Owner {
	return &models.Owner{
		ID:           id,
		FirstName:    "Maria",
		LastName:     "Keller",
		Age:          41,
		FamilyStatus: models.FamilyStatusDivorced,
		Email:        "maria.keller@example.com",
		Properties:   properties,
	}
}

func TestComputeObligation_SingleFlat(t *testing.T) {
	// Arrange
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	owner := ownerWithPortfolio(1, []models.Property{
		{ID: 1, Category: models.CategoryFlat, Area: 70},
	})

	mockOwners.On("FindByID", ctx, 1).Return(owner, nil)
	mockRates.On("GetAll", ctx).Return(defaultRateRows(), nil)

	// Act
	obligation, err := service.ComputeObligation(ctx, 1)

	// Assert: one 70 m² flat at rate 6, no household discount
	require.NoError(t, err)
	assert.True(t, obligation.Equal(decimal.NewFromInt(420)), "got %s", obligation)
	mockOwners.AssertExpectations(t)
	mockRates.AssertExpectations(t)
}

func TestComputeObligation_MixedPortfolioWithLeeway(t *testing.T) {
	// Arrange
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	owner := ownerWithPortfolio(2, []models.Property{
		{ID: 1, Category: models.CategoryFlat, Area: 50},
		{ID: 2, Category: models.CategoryHouse, Area: 30},
	})
	owner.FamilyStatus = models.FamilyStatusMarried
	owner.HasChildren = true

	mockOwners.On("FindByID", ctx, 2).Return(owner, nil)
	mockRates.On("GetAll", ctx).Return(defaultRateRows(), nil)

	// Act
	obligation, err := service.ComputeObligation(ctx, 2)

	// Assert: (50*6 + 30*8) * 0.8 = 540 * 0.8 = 432
	require.NoError(t, err)
	assert.True(t, obligation.Equal(decimal.NewFromInt(432)), "got %s", obligation)
}

func TestComputeObligation_LeewayCombinations(t *testing.T) {
	tests := []struct {
		name         string
		familyStatus models.FamilyStatus
		hasChildren  bool
		expected     string
	}{
		{
			name:         "no children no marriage",
			familyStatus: models.FamilyStatusDivorced,
			hasChildren:  false,
			expected:     "600",
		},
		{
			name:         "single with children",
			familyStatus: models.FamilyStatusSingle,
			hasChildren:  true,
			expected:     "420",
		},
		{
			name:         "widowed with children",
			familyStatus: models.FamilyStatusWidowed,
			hasChildren:  true,
			expected:     "540",
		},
		{
			name:         "married without children",
			familyStatus: models.FamilyStatusMarried,
			hasChildren:  false,
			expected:     "540",
		},
		{
			name:         "married with children",
			familyStatus: models.FamilyStatusMarried,
			hasChildren:  true,
			expected:     "480",
		},
		{
			name:         "single without children",
			familyStatus: models.FamilyStatusSingle,
			hasChildren:  false,
			expected:     "600",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange: 100 m² flat at rate 6 gives base tax 600
			mockOwners := new(MockOwnerRepository)
			mockRates := new(MockTaxRateRepository)
			log := logger.New("test")
			service := NewTaxService(mockOwners, mockRates, log)

			ctx := context.Background()
			owner := ownerWithPortfolio(7, []models.Property{
				{ID: 1, Category: models.CategoryFlat, Area: 100},
			})
			owner.FamilyStatus = tt.familyStatus
			owner.HasChildren = tt.hasChildren

			mockOwners.On("FindByID", ctx, 7).Return(owner, nil)
			mockRates.On("GetAll", ctx).Return(defaultRateRows(), nil)

			// Act
			obligation, err := service.ComputeObligation(ctx, 7)

			// Assert
			require.NoError(t, err)
			expected := decimal.RequireFromString(tt.expected)
			assert.True(t, obligation.Equal(expected), "want %s, got %s", expected, obligation)
		})
	}
}

func TestComputeObligation_ScenarioSingleParentTwoFlats(t *testing.T) {
	// Arrange: SINGLE with children, flats of 40 and 40 m² at rate 6
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	owner := ownerWithPortfolio(3, []models.Property{
		{ID: 1, Category: models.CategoryFlat, Area: 40},
		{ID: 2, Category: models.CategoryFlat, Area: 40},
	})
	owner.FamilyStatus = models.FamilyStatusSingle
	owner.HasChildren = true

	mockOwners.On("FindByID", ctx, 3).Return(owner, nil)
	mockRates.On("GetAll", ctx).Return(defaultRateRows(), nil)

	// Act
	obligation, err := service.ComputeObligation(ctx, 3)

	// Assert: 480 * 0.7 = 336.0
	require.NoError(t, err)
	assert.True(t, obligation.Equal(decimal.RequireFromString("336.0")), "got %s", obligation)
}

func TestComputeObligation_EmptyPortfolio(t *testing.T) {
	// Arrange: empty but present portfolio means zero base tax
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	owner := ownerWithPortfolio(4, []models.Property{})

	mockOwners.On("FindByID", ctx, 4).Return(owner, nil)
	mockRates.On("GetAll", ctx).Return(defaultRateRows(), nil)

	// Act
	obligation, err := service.ComputeObligation(ctx, 4)

	// Assert
	require.NoError(t, err)
	assert.True(t, obligation.IsZero(), "got %s", obligation)
}

func TestComputeObligation_MissingPortfolio(t *testing.T) {
	// Arrange: a nil portfolio is a fault, not a zero obligation
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	owner := ownerWithPortfolio(5, nil)

	mockOwners.On("FindByID", ctx, 5).Return(owner, nil)

	// Act
	_, err := service.ComputeObligation(ctx, 5)

	// Assert
	assert.ErrorIs(t, err, ErrMissingPortfolio)
	mockRates.AssertNotCalled(t, "GetAll", ctx)
}

func TestComputeObligation_OwnerNotFound(t *testing.T) {
	// Arrange
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	mockOwners.On("FindByID", ctx, 99).Return(nil, nil)

	// Act
	_, err := service.ComputeObligation(ctx, 99)

	// Assert
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestComputeObligation_InvalidRateTableSize(t *testing.T) {
	tests := []struct {
		name string
		rows []models.TaxRate
	}{
		{
			name: "too few rows",
			rows: defaultRateRows()[:2],
		},
		{
			name: "too many rows",
			rows: append(defaultRateRows(), models.TaxRate{
				ID: 4, Category: models.CategoryFlat, Rate: decimal.NewFromInt(9),
			}),
		},
		{
			name: "empty table",
			rows: []models.TaxRate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockOwners := new(MockOwnerRepository)
			mockRates := new(MockTaxRateRepository)
			log := logger.New("test")
			service := NewTaxService(mockOwners, mockRates, log)

			ctx := context.Background()
			owner := ownerWithPortfolio(6, []models.Property{
				{ID: 1, Category: models.CategoryFlat, Area: 70},
			})

			mockOwners.On("FindByID", ctx, 6).Return(owner, nil)
			mockRates.On("GetAll", ctx).Return(tt.rows, nil)

			// Act
			_, err := service.ComputeObligation(ctx, 6)

			// Assert
			assert.ErrorIs(t, err, ErrInvalidRateTableSize)
		})
	}
}

func TestComputeObligation_RateLookupByCategoryIdentity(t *testing.T) {
	// Arrange: shuffle the rate table rows; pricing must not change
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	owner := ownerWithPortfolio(8, []models.Property{
		{ID: 1, Category: models.CategoryOffice, Area: 10},
	})

	shuffled := []models.TaxRate{
		{ID: 3, Category: models.CategoryOffice, Rate: decimal.NewFromInt(13)},
		{ID: 1, Category: models.CategoryFlat, Rate: decimal.NewFromInt(6)},
		{ID: 2, Category: models.CategoryHouse, Rate: decimal.NewFromInt(8)},
	}

	mockOwners.On("FindByID", ctx, 8).Return(owner, nil)
	mockRates.On("GetAll", ctx).Return(shuffled, nil)

	// Act
	obligation, err := service.ComputeObligation(ctx, 8)

	// Assert: 10 * 13 = 130
	require.NoError(t, err)
	assert.True(t, obligation.Equal(decimal.NewFromInt(130)), "got %s", obligation)
}

func TestComputeObligation_Idempotent(t *testing.T) {
	// Arrange: same inputs, repeated calls, identical result
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	owner := ownerWithPortfolio(9, []models.Property{
		{ID: 1, Category: models.CategoryHouse, Area: 25},
	})

	mockOwners.On("FindByID", ctx, 9).Return(owner, nil)
	mockRates.On("GetAll", ctx).Return(defaultRateRows(), nil)

	// Act
	first, err := service.ComputeObligation(ctx, 9)
	require.NoError(t, err)
	second, err := service.ComputeObligation(ctx, 9)
	require.NoError(t, err)

	// Assert
	assert.True(t, first.Equal(second), "first %s, second %s", first, second)
}

func TestComputeObligation_RepositoryError(t *testing.T) {
	// Arrange
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	storeErr := errors.New("connection reset")
	mockOwners.On("FindByID", ctx, 1).Return(nil, storeErr)

	// Act
	_, err := service.ComputeObligation(ctx, 1)

	// Assert
	assert.ErrorIs(t, err, storeErr)
}

func TestListRates(t *testing.T) {
	// Arrange
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	mockRates.On("GetAll", ctx).Return(defaultRateRows(), nil)

	// Act
	rates, err := service.ListRates(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, rates, RateTableSize)
	assert.Equal(t, models.CategoryFlat, rates[0].Category)
	assert.True(t, rates[0].Rate.Equal(decimal.NewFromInt(6)))
}

func TestChangeRate_Success(t *testing.T) {
	// Arrange
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	newRate := decimal.NewFromInt(15)
	mockRates.On("ChangeRate", ctx, models.CategoryOffice, newRate).Return(true, nil)

	// Act
	err := service.ChangeRate(ctx, models.CategoryOffice, newRate)

	// Assert
	require.NoError(t, err)
	mockRates.AssertExpectations(t)
}

func TestChangeRate_UnknownCategory(t *testing.T) {
	// Arrange
	mockOwners := new(MockOwnerRepository)
	mockRates := new(MockTaxRateRepository)
	log := logger.New("test")
	service := NewTaxService(mockOwners, mockRates, log)

	ctx := context.Background()
	newRate := decimal.NewFromInt(15)
	mockRates.On("ChangeRate", ctx, models.PropertyCategory("BARN"), newRate).Return(false, nil)

	// Act
	err := service.ChangeRate(ctx, models.PropertyCategory("BARN"), newRate)

	// Assert
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
