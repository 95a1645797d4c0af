package models

import (
	"github.com/shopspring/decimal"
)

// TaxRate is one row of the rate table: the currency amount charged per
// unit of area for a single property category. The table must hold exactly
// one row per category before any obligation can be computed.
type TaxRate struct {
	ID       int              `json:"id"`
	Category PropertyCategory `json:"category"`
	Rate     decimal.Decimal  `json:"rate"`
}

// DefaultTaxRates returns the rate table seeded at bootstrap.
func DefaultTaxRates() []TaxRate {
	return []TaxRate{
		{ID: 1, Category: CategoryFlat, Rate: decimal.NewFromInt(6)},
		{ID: 2, Category: CategoryHouse, Rate: decimal.NewFromInt(8)},
		{ID: 3, Category: CategoryOffice, Rate: decimal.NewFromInt(13)},
	}
}
