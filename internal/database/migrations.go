package database

import (
	"context"
	"fmt"
)

// migrationStatements is the full schema, written to be re-runnable on
// startup. Owners are stored as aggregate rows: the property portfolio
// lives in a JSONB column so a property can never exist outside exactly
// one owner. Property ids come from a sequence shared across owners.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS owners (
		id            SERIAL PRIMARY KEY,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		age           INT NOT NULL DEFAULT 0,
		family_status TEXT NOT NULL,
		has_children  BOOLEAN NOT NULL DEFAULT FALSE,
		email         TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		birthday      DATE NOT NULL DEFAULT '0001-01-01',
		tax_debt      NUMERIC(16, 2) NOT NULL DEFAULT 0 CHECK (tax_debt >= 0),
		properties    JSONB,
		version       INT NOT NULL DEFAULT 1
	)`,
	`CREATE SEQUENCE IF NOT EXISTS property_id_seq`,
	`CREATE TABLE IF NOT EXISTS tax_rates (
		id       SERIAL PRIMARY KEY,
		category TEXT NOT NULL UNIQUE,
		rate     NUMERIC(12, 2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_owners_debtors ON owners (id) WHERE tax_debt > 0`,
}

// Migrate applies the schema. Statements are idempotent, so calling this
// on every startup is safe.
func (db *Database) Migrate(ctx context.Context) error {
	for _, stmt := range migrationStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
