package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/propreg/api/internal/logger"
	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/repository"
)

// Service-level errors for owner and property operations.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrVersionConflict  = errors.New("owner was modified concurrently")
	ErrNegativeDebt     = errors.New("tax debt must not be negative")
	ErrInvalidArea      = errors.New("property area must be positive")
)

// PropertyUpdate is the canonical set of mutable property fields. Anything
// outside this set (cost, dates, category, area) is fixed at creation.
type PropertyUpdate struct {
	City      string
	Address   string
	Rooms     int
	Condition models.PropertyCondition
}

// OwnerService manages owners and their property portfolios.
type OwnerService interface {
	List(ctx context.Context) ([]models.Owner, error)
	Get(ctx context.Context, id int) (*models.Owner, error)
	Create(ctx context.Context, owner models.Owner) (int, error)
	Update(ctx context.Context, id int, owner models.Owner) error
	Delete(ctx context.Context, id int) error

	ListProperties(ctx context.Context, ownerID int) ([]models.Property, error)
	AddProperty(ctx context.Context, ownerID int, property models.Property) (int, error)
	UpdateProperty(ctx context.Context, ownerID, propertyID int, update PropertyUpdate) error
	RemoveProperty(ctx context.Context, ownerID, propertyID int) error
}

// ownerService is the concrete implementation of OwnerService.
type ownerService struct {
	owners repository.OwnerRepository
	log    *logger.Logger
}

// NewOwnerService creates a new instance of OwnerService.
func NewOwnerService(owners repository.OwnerRepository, log *logger.Logger) OwnerService {
	return &ownerService{
		owners: owners,
		log:    log,
	}
}

func (s *ownerService) List(ctx context.Context) ([]models.Owner, error) {
	owners, err := s.owners.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}

func (s *ownerService) Get(ctx context.Context, id int) (*models.Owner, error) {
	owner, err := s.owners.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: id %d", ErrOwnerNotFound, id)
	}
	return owner, nil
}

// Create registers a new owner. A negative starting debt is rejected so the
// taxDebt ≥ 0 invariant holds at rest from the first write.
func (s *ownerService) Create(ctx context.Context, owner models.Owner) (int, error) {
	if owner.TaxDebt.IsNegative() {
		return 0, fmt.Errorf("%w: got %s", ErrNegativeDebt, owner.TaxDebt)
	}
	if err := validateAreas(owner.Properties); err != nil {
		return 0, err
	}

	id, err := s.owners.Save(ctx, owner)
	if err != nil {
		s.log.Error("Failed to create owner", err, nil)
		return 0, fmt.Errorf("failed to create owner: %w", err)
	}

	s.log.Info("Owner created", map[string]interface{}{
		"owner_id": id,
	})

	return id, nil
}

// Update replaces the owner's mutable attributes. The portfolio is kept as
// stored; property changes go through the property operations.
func (s *ownerService) Update(ctx context.Context, id int, owner models.Owner) error {
	if owner.TaxDebt.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrNegativeDebt, owner.TaxDebt)
	}

	stored, err := s.owners.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load owner: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("%w: id %d", ErrOwnerNotFound, id)
	}

	owner.Properties = stored.Properties
	owner.Version = stored.Version

	found, err := s.owners.Update(ctx, id, owner)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return fmt.Errorf("%w: owner %d", ErrVersionConflict, id)
		}
		s.log.Error("Failed to update owner", err, map[string]interface{}{
			"owner_id": id,
		})
		return fmt.Errorf("failed to update owner: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: id %d", ErrOwnerNotFound, id)
	}

	s.log.Info("Owner updated", map[string]interface{}{
		"owner_id": id,
	})

	return nil
}

func (s *ownerService) Delete(ctx context.Context, id int) error {
	removed, err := s.owners.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete owner: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: id %d", ErrOwnerNotFound, id)
	}

	s.log.Info("Owner deleted", map[string]interface{}{
		"owner_id": id,
	})

	return nil
}

func (s *ownerService) ListProperties(ctx context.Context, ownerID int) ([]models.Property, error) {
	owner, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return owner.Properties, nil
}

func (s *ownerService) AddProperty(ctx context.Context, ownerID int, property models.Property) (int, error) {
	if property.Area <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidArea, property.Area)
	}

	id, err := s.owners.AddProperty(ctx, ownerID, property)
	if err != nil {
		s.log.Error("Failed to add property", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return 0, fmt.Errorf("failed to add property: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: id %d", ErrOwnerNotFound, ownerID)
	}

	s.log.Info("Property added", map[string]interface{}{
		"owner_id":    ownerID,
		"property_id": id,
	})

	return id, nil
}

// UpdateProperty applies the canonical mutable field set to one property
// inside the owner's portfolio.
func (s *ownerService) UpdateProperty(ctx context.Context, ownerID, propertyID int, update PropertyUpdate) error {
	owner, err := s.Get(ctx, ownerID)
	if err != nil {
		return err
	}

	updated := false
	properties := append([]models.Property(nil), owner.Properties...)
	for i := range properties {
		if properties[i].ID != propertyID {
			continue
		}
		properties[i].City = update.City
		properties[i].Address = update.Address
		properties[i].Rooms = update.Rooms
		properties[i].Condition = update.Condition
		updated = true
		break
	}
	if !updated {
		return fmt.Errorf("%w: id %d", ErrPropertyNotFound, propertyID)
	}

	found, err := s.owners.ReplaceProperties(ctx, ownerID, properties)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: id %d", ErrOwnerNotFound, ownerID)
	}

	s.log.Info("Property updated", map[string]interface{}{
		"owner_id":    ownerID,
		"property_id": propertyID,
	})

	return nil
}

func (s *ownerService) RemoveProperty(ctx context.Context, ownerID, propertyID int) error {
	owner, err := s.Get(ctx, ownerID)
	if err != nil {
		return err
	}

	filtered := make([]models.Property, 0, len(owner.Properties))
	for _, property := range owner.Properties {
		if property.ID != propertyID {
			filtered = append(filtered, property)
		}
	}
	if len(filtered) == len(owner.Properties) {
		return fmt.Errorf("%w: id %d", ErrPropertyNotFound, propertyID)
	}

	found, err := s.owners.ReplaceProperties(ctx, ownerID, filtered)
	if err != nil {
		return fmt.Errorf("failed to remove property: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: id %d", ErrOwnerNotFound, ownerID)
	}

	s.log.Info("Property removed", map[string]interface{}{
		"owner_id":    ownerID,
		"property_id": propertyID,
	})

	return nil
}

func validateAreas(properties []models.Property) error {
	for _, property := range properties {
		if property.Area <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidArea, property.Area)
		}
	}
	return nil
}
