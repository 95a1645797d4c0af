package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/propreg/api/internal/database"
	"github.com/propreg/api/internal/models"
)

// postgresOwnerRepository stores owners as rows with the property portfolio
// embedded as a JSONB document, preserving the owner aggregate: properties
// never exist outside their owner's row. Property ids come from a database
// sequence shared across all owners.
type postgresOwnerRepository struct {
	db *database.Database
}

// NewPostgresOwnerRepository creates an OwnerRepository backed by Postgres.
func NewPostgresOwnerRepository(db *database.Database) OwnerRepository {
	return &postgresOwnerRepository{db: db}
}

const ownerColumns = `
	id,
	first_name,
	last_name,
	age,
	family_status,
	has_children,
	email,
	phone,
	birthday,
	tax_debt::text,
	properties,
	version
`

func (r *postgresOwnerRepository) FindAll(ctx context.Context) ([]models.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	return scanOwners(rows)
}

func (r *postgresOwnerRepository) FindByID(ctx context.Context, id int) (*models.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1`

	owner, err := scanOwner(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query owner %d: %w", id, err)
	}

	return owner, nil
}

func (r *postgresOwnerRepository) FindDebtors(ctx context.Context) ([]models.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE tax_debt > 0 ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query debtors: %w", err)
	}
	defer rows.Close()

	return scanOwners(rows)
}

func (r *postgresOwnerRepository) Save(ctx context.Context, owner models.Owner) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Embedded properties get their ids before the row is written. Ids go
	// onto a copy so the caller's slice never changes underneath them.
	owner.Properties = cloneProperties(owner.Properties)
	for i := range owner.Properties {
		var propertyID int
		if err := tx.QueryRow(ctx, `SELECT nextval('property_id_seq')`).Scan(&propertyID); err != nil {
			return 0, fmt.Errorf("failed to allocate property id: %w", err)
		}
		owner.Properties[i].ID = propertyID
	}

	propertiesJSON, err := marshalProperties(owner.Properties)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO owners (
			first_name, last_name, age, family_status, has_children,
			email, phone, birthday, tax_debt, properties, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, 1)
		RETURNING id
	`

	var id int
	err = tx.QueryRow(ctx, query,
		owner.FirstName,
		owner.LastName,
		owner.Age,
		string(owner.FamilyStatus),
		owner.HasChildren,
		owner.Email,
		owner.Phone,
		owner.Birthday,
		owner.TaxDebt.String(),
		propertiesJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit owner insert: %w", err)
	}

	return id, nil
}

func (r *postgresOwnerRepository) Update(ctx context.Context, id int, owner models.Owner) (bool, error) {
	propertiesJSON, err := marshalProperties(owner.Properties)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE owners
		SET first_name = $1,
			last_name = $2,
			age = $3,
			family_status = $4,
			has_children = $5,
			email = $6,
			phone = $7,
			birthday = $8,
			tax_debt = $9::numeric,
			properties = $10,
			version = version + 1
		WHERE id = $11 AND version = $12
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		owner.FirstName,
		owner.LastName,
		owner.Age,
		string(owner.FamilyStatus),
		owner.HasChildren,
		owner.Email,
		owner.Phone,
		owner.Birthday,
		owner.TaxDebt.String(),
		propertiesJSON,
		id,
		owner.Version,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update owner %d: %w", id, err)
	}

	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// No row hit: either the owner is gone or the version was stale.
	var exists bool
	err = r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM owners WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check owner %d: %w", id, err)
	}
	if exists {
		return true, ErrVersionConflict
	}

	return false, nil
}

func (r *postgresOwnerRepository) Remove(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM owners WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete owner %d: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *postgresOwnerRepository) AddProperty(ctx context.Context, ownerID int, property models.Property) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var propertyID int
	if err := tx.QueryRow(ctx, `SELECT nextval('property_id_seq')`).Scan(&propertyID); err != nil {
		return 0, fmt.Errorf("failed to allocate property id: %w", err)
	}
	property.ID = propertyID

	propertyJSON, err := json.Marshal(property)
	if err != nil {
		return 0, fmt.Errorf("failed to encode property: %w", err)
	}

	query := `
		UPDATE owners
		SET properties = COALESCE(properties, '[]'::jsonb) || $1::jsonb,
			version = version + 1
		WHERE id = $2
	`

	tag, err := tx.Exec(ctx, query, propertyJSON, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to add property to owner %d: %w", ownerID, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit property insert: %w", err)
	}

	return propertyID, nil
}

func (r *postgresOwnerRepository) ReplaceProperties(ctx context.Context, ownerID int, properties []models.Property) (bool, error) {
	propertiesJSON, err := marshalProperties(properties)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE owners
		SET properties = $1,
			version = version + 1
		WHERE id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, propertiesJSON, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to replace properties of owner %d: %w", ownerID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// marshalProperties encodes a portfolio for the JSONB column. A nil slice
// maps to SQL NULL so "portfolio never initialized" survives a round trip,
// distinct from an empty JSON array.
func marshalProperties(properties []models.Property) ([]byte, error) {
	if properties == nil {
		return nil, nil
	}
	payload, err := json.Marshal(properties)
	if err != nil {
		return nil, fmt.Errorf("failed to encode properties: %w", err)
	}
	return payload, nil
}

func scanOwners(rows pgx.Rows) ([]models.Owner, error) {
	var owners []models.Owner

	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan owner row: %w", err)
		}
		owners = append(owners, *owner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner rows: %w", err)
	}

	return owners, nil
}

func scanOwner(row pgx.Row) (*models.Owner, error) {
	var owner models.Owner
	var debtText string
	var propertiesJSON []byte

	err := row.Scan(
		&owner.ID,
		&owner.FirstName,
		&owner.LastName,
		&owner.Age,
		&owner.FamilyStatus,
		&owner.HasChildren,
		&owner.Email,
		&owner.Phone,
		&owner.Birthday,
		&debtText,
		&propertiesJSON,
		&owner.Version,
	)
	if err != nil {
		return nil, err
	}

	owner.TaxDebt, err = decimal.NewFromString(debtText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tax debt of owner %d: %w", owner.ID, err)
	}

	if propertiesJSON != nil {
		if err := json.Unmarshal(propertiesJSON, &owner.Properties); err != nil {
			return nil, fmt.Errorf("failed to decode properties of owner %d: %w", owner.ID, err)
		}
	}

	return &owner, nil
}
