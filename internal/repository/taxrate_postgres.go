package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/propreg/api/internal/database"
	"github.com/propreg/api/internal/models"
)

// postgresTaxRateRepository stores the rate table in the tax_rates table,
// one row per property category.
type postgresTaxRateRepository struct {
	db *database.Database
}

// NewPostgresTaxRateRepository creates a TaxRateRepository backed by Postgres.
func NewPostgresTaxRateRepository(db *database.Database) TaxRateRepository {
	return &postgresTaxRateRepository{db: db}
}

func (r *postgresTaxRateRepository) GetAll(ctx context.Context) ([]models.TaxRate, error) {
	query := `SELECT id, category, rate::text FROM tax_rates ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax rates: %w", err)
	}
	defer rows.Close()

	var rates []models.TaxRate
	for rows.Next() {
		var rate models.TaxRate
		var rateText string

		if err := rows.Scan(&rate.ID, &rate.Category, &rateText); err != nil {
			return nil, fmt.Errorf("failed to scan tax rate row: %w", err)
		}

		rate.Rate, err = decimal.NewFromString(rateText)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for category %s: %w", rate.Category, err)
		}

		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax rate rows: %w", err)
	}

	return rates, nil
}

func (r *postgresTaxRateRepository) ChangeRate(ctx context.Context, category models.PropertyCategory, rate decimal.Decimal) (bool, error) {
	query := `UPDATE tax_rates SET rate = $1::numeric WHERE category = $2`

	tag, err := r.db.Pool.Exec(ctx, query, rate.String(), string(category))
	if err != nil {
		return false, fmt.Errorf("failed to change rate for category %s: %w", category, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *postgresTaxRateRepository) Seed(ctx context.Context, rates []models.TaxRate) error {
	query := `
		INSERT INTO tax_rates (id, category, rate)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (category) DO NOTHING
	`

	for _, rate := range rates {
		if _, err := r.db.Pool.Exec(ctx, query, rate.ID, string(rate.Category), rate.Rate.String()); err != nil {
			return fmt.Errorf("failed to seed rate for category %s: %w", rate.Category, err)
		}
	}

	return nil
}
