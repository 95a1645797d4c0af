package repository

import (
	"context"

	"github.com/propreg/api/internal/models"
	"github.com/shopspring/decimal"
)

// TaxRateRepository defines data access for the rate table. Rows are
// seeded once at bootstrap and only ever mutated through ChangeRate;
// individual rows are never deleted.
type TaxRateRepository interface {
	// GetAll returns the full rate table ordered by id.
	GetAll(ctx context.Context) ([]models.TaxRate, error)

	// ChangeRate sets the rate for the given category. Reports whether
	// the category had a row in the table.
	ChangeRate(ctx context.Context, category models.PropertyCategory, rate decimal.Decimal) (bool, error)

	// Seed inserts the given rows unless the table is already populated.
	Seed(ctx context.Context, rates []models.TaxRate) error
}
