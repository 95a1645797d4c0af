package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/propreg/api/internal/logger"
	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/repository"
)

// RateTableSize is the number of rows the rate table must hold: exactly
// one per property category. Any other size is a data-integrity fault.
const RateTableSize = 3

// Leeway reductions applied to the base tax. The children reduction depends
// on family status; the married reduction stacks on top of it.
var (
	leewayFull            = decimal.NewFromInt(1)
	childrenSingleLeeway  = decimal.RequireFromString("0.3")
	childrenDefaultLeeway = decimal.RequireFromString("0.1")
	marriedLeeway         = decimal.RequireFromString("0.1")
)

// Service-level errors for tax operations.
var (
	ErrOwnerNotFound        = errors.New("owner not found")
	ErrMissingPortfolio     = errors.New("owner has no property portfolio")
	ErrInvalidRateTableSize = errors.New("invalid tax rate table size")
	ErrUnknownCategory      = errors.New("unknown property category")
)

// TaxService computes tax obligations and manages the rate table.
type TaxService interface {
	// ComputeObligation derives the owner's periodic tax obligation from
	// their portfolio and household attributes.
	// Returns ErrOwnerNotFound when the owner does not exist.
	// Returns ErrMissingPortfolio when the portfolio is absent (a present
	// but empty portfolio yields a zero base tax, not an error).
	// Returns ErrInvalidRateTableSize when the rate table does not hold
	// exactly one row per category.
	ComputeObligation(ctx context.Context, ownerID int) (decimal.Decimal, error)

	// ListRates returns the full rate table.
	ListRates(ctx context.Context) ([]models.TaxRate, error)

	// ChangeRate sets the rate for one category.
	// Returns ErrUnknownCategory when the table has no row for it.
	ChangeRate(ctx context.Context, category models.PropertyCategory, rate decimal.Decimal) error
}

// taxService is the concrete implementation of TaxService.
type taxService struct {
	owners repository.OwnerRepository
	rates  repository.TaxRateRepository
	log    *logger.Logger
}

// NewTaxService creates a new instance of TaxService.
func NewTaxService(owners repository.OwnerRepository, rates repository.TaxRateRepository, log *logger.Logger) TaxService {
	return &taxService{
		owners: owners,
		rates:  rates,
		log:    log,
	}
}

// ComputeObligation reads the owner and the rate table at call time and
// returns base tax times the leeway multiplier. It is a pure query: no
// caching, no writes.
func (s *taxService) ComputeObligation(ctx context.Context, ownerID int) (decimal.Decimal, error) {
	owner, err := s.owners.FindByID(ctx, ownerID)
	if err != nil {
		s.log.Error("Failed to load owner for obligation", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return decimal.Zero, fmt.Errorf("failed to load owner: %w", err)
	}
	if owner == nil {
		return decimal.Zero, fmt.Errorf("%w: id %d", ErrOwnerNotFound, ownerID)
	}

	baseTax, err := s.baseTax(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}

	obligation := baseTax.Mul(s.leeway(owner))

	s.log.Info("Tax obligation computed", map[string]interface{}{
		"owner_id":   ownerID,
		"base_tax":   baseTax.String(),
		"obligation": obligation.String(),
	})

	return obligation, nil
}

// baseTax sums area times category rate over the portfolio. The rate lookup
// is by category identity, never by row position, so reordering the rate
// table cannot mis-price a property.
func (s *taxService) baseTax(ctx context.Context, owner *models.Owner) (decimal.Decimal, error) {
	if owner.Properties == nil {
		return decimal.Zero, fmt.Errorf("%w: owner %d", ErrMissingPortfolio, owner.ID)
	}

	rates, err := s.rates.GetAll(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load rate table: %w", err)
	}
	if len(rates) != RateTableSize {
		return decimal.Zero, fmt.Errorf("%w: got %d rows, want %d", ErrInvalidRateTableSize, len(rates), RateTableSize)
	}

	rateByCategory := make(map[models.PropertyCategory]decimal.Decimal, len(rates))
	for _, rate := range rates {
		rateByCategory[rate.Category] = rate.Rate
	}

	baseTax := decimal.Zero
	for _, property := range owner.Properties {
		rate, ok := rateByCategory[property.Category]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCategory, property.Category)
		}
		area := decimal.NewFromInt(int64(property.Area))
		baseTax = baseTax.Add(area.Mul(rate))
	}

	return baseTax, nil
}

// leeway computes the household discount multiplier, starting from 1.0.
// Children reduce by 0.3 for single owners and 0.1 otherwise; a married
// owner gets a further 0.1 regardless, so married-with-children nets 0.8.
func (s *taxService) leeway(owner *models.Owner) decimal.Decimal {
	leeway := leewayFull

	if owner.HasChildren {
		if owner.FamilyStatus == models.FamilyStatusSingle {
			leeway = leeway.Sub(childrenSingleLeeway)
		} else {
			leeway = leeway.Sub(childrenDefaultLeeway)
		}
	}
	if owner.FamilyStatus == models.FamilyStatusMarried {
		leeway = leeway.Sub(marriedLeeway)
	}

	return leeway
}

// ListRates returns the rate table as stored.
func (s *taxService) ListRates(ctx context.Context) ([]models.TaxRate, error) {
	rates, err := s.rates.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table: %w", err)
	}
	return rates, nil
}

// ChangeRate sets a new rate for the given category.
func (s *taxService) ChangeRate(ctx context.Context, category models.PropertyCategory, rate decimal.Decimal) error {
	found, err := s.rates.ChangeRate(ctx, category, rate)
	if err != nil {
		s.log.Error("Failed to change tax rate", err, map[string]interface{}{
			"category": string(category),
			"rate":     rate.String(),
		})
		return fmt.Errorf("failed to change tax rate: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	s.log.Info("Tax rate changed", map[string]interface{}{
		"category": string(category),
		"rate":     rate.String(),
	})

	return nil
}
