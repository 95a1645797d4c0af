package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/propreg/api/internal/models"
	"github.com/shopspring/decimal"
)

// memoryTaxRateRepository is a map-backed TaxRateRepository keyed by
// property category.
type memoryTaxRateRepository struct {
	mu     sync.RWMutex
	rates  map[models.PropertyCategory]models.TaxRate
	nextID int
}

// NewMemoryTaxRateRepository creates an empty in-memory rate table.
func NewMemoryTaxRateRepository() TaxRateRepository {
	return &memoryTaxRateRepository{
		rates:  make(map[models.PropertyCategory]models.TaxRate),
		nextID: 1,
	}
}

func (r *memoryTaxRateRepository) GetAll(_ context.Context) ([]models.TaxRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.TaxRate, 0, len(r.rates))
	for _, rate := range r.rates {
		all = append(all, rate)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return all, nil
}

func (r *memoryTaxRateRepository) ChangeRate(_ context.Context, category models.PropertyCategory, rate decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rates[category]
	if !ok {
		return false, nil
	}

	row.Rate = rate
	r.rates[category] = row

	return true, nil
}

func (r *memoryTaxRateRepository) Seed(_ context.Context, rates []models.TaxRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rates) > 0 {
		return nil
	}

	for _, rate := range rates {
		if rate.ID == 0 {
			rate.ID = r.nextID
		}
		if rate.ID >= r.nextID {
			r.nextID = rate.ID + 1
		}
		r.rates[rate.Category] = rate
	}

	return nil
}
