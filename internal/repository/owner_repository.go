package repository

import (
	"context"
	"errors"

	"github.com/propreg/api/internal/models"
	"github.com/shopspring/decimal"
)

// Storage-level errors shared by every OwnerRepository implementation.
var (
	// ErrVersionConflict is returned when an update carries a stale
	// Version, meaning another writer got there first.
	ErrVersionConflict = errors.New("owner was modified concurrently")
)

// OwnerRepository defines data access for owners and their embedded
// property portfolios. Lookups return nil, nil when the owner is absent;
// that is not an error at this level, the service layer maps it to a
// domain error.
type OwnerRepository interface {
	// FindAll returns every registered owner.
	FindAll(ctx context.Context) ([]models.Owner, error)

	// FindByID returns the owner with the given id, or nil, nil when
	// no such owner exists.
	FindByID(ctx context.Context, id int) (*models.Owner, error)

	// FindDebtors returns all owners whose tax debt is strictly positive.
	FindDebtors(ctx context.Context) ([]models.Owner, error)

	// Save persists a new owner, assigning its id and ids for any
	// embedded properties. The assigned owner id is returned.
	Save(ctx context.Context, owner models.Owner) (int, error)

	// Update replaces the stored owner. The incoming Version must match
	// the stored one or ErrVersionConflict is returned; on success the
	// stored Version is bumped. The bool reports whether the owner
	// existed at all.
	Update(ctx context.Context, id int, owner models.Owner) (bool, error)

	// Remove deletes the owner. Reports whether anything was deleted.
	Remove(ctx context.Context, id int) (bool, error)

	// AddProperty appends a property to the owner's portfolio, assigning
	// its id from the store-wide counter. The assigned id is returned;
	// a zero id with a nil error means the owner does not exist.
	AddProperty(ctx context.Context, ownerID int, property models.Property) (int, error)

	// ReplaceProperties swaps the owner's whole portfolio, keeping
	// existing property ids as given.
	ReplaceProperties(ctx context.Context, ownerID int, properties []models.Property) (bool, error)
}

// debtorThreshold is the boundary for debtor classification: only owners
// strictly above it are debtors.
var debtorThreshold = decimal.Zero
