package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/propreg/api/internal/models"
)

// memoryOwnerRepository is a map-backed OwnerRepository. Id counters are
// owned by the instance, so independent stores in tests never interfere.
// The property counter is shared across all owners of the store, keeping
// property ids unique process-wide.
type memoryOwnerRepository struct {
	mu             sync.RWMutex
	owners         map[int]models.Owner
	nextOwnerID    int
	nextPropertyID int
}

// NewMemoryOwnerRepository creates an empty in-memory owner store.
func NewMemoryOwnerRepository() OwnerRepository {
	return &memoryOwnerRepository{
		owners:         make(map[int]models.Owner),
		nextOwnerID:    1,
		nextPropertyID: 1,
	}
}

func (r *memoryOwnerRepository) FindAll(_ context.Context) ([]models.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Owner, 0, len(r.owners))
	for _, owner := range r.owners {
		all = append(all, cloneOwner(owner))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return all, nil
}

func (r *memoryOwnerRepository) FindByID(_ context.Context, id int) (*models.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[id]
	if !ok {
		return nil, nil
	}

	clone := cloneOwner(owner)
	return &clone, nil
}

func (r *memoryOwnerRepository) FindDebtors(_ context.Context) ([]models.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var debtors []models.Owner
	for _, owner := range r.owners {
		if owner.TaxDebt.GreaterThan(debtorThreshold) {
			debtors = append(debtors, cloneOwner(owner))
		}
	}
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].ID < debtors[j].ID })

	return debtors, nil
}

func (r *memoryOwnerRepository) Save(_ context.Context, owner models.Owner) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner.ID = r.nextOwnerID
	r.nextOwnerID++

	owner.Properties = cloneProperties(owner.Properties)
	for i := range owner.Properties {
		owner.Properties[i].ID = r.nextPropertyID
		r.nextPropertyID++
	}

	owner.Version = 1
	r.owners[owner.ID] = cloneOwner(owner)

	return owner.ID, nil
}

func (r *memoryOwnerRepository) Update(_ context.Context, id int, owner models.Owner) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.owners[id]
	if !ok {
		return false, nil
	}
	if owner.Version != stored.Version {
		return true, ErrVersionConflict
	}

	owner.ID = id
	owner.Version = stored.Version + 1
	r.owners[id] = cloneOwner(owner)

	return true, nil
}

func (r *memoryOwnerRepository) Remove(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owners[id]; !ok {
		return false, nil
	}
	delete(r.owners, id)

	return true, nil
}

func (r *memoryOwnerRepository) AddProperty(_ context.Context, ownerID int, property models.Property) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[ownerID]
	if !ok {
		return 0, nil
	}

	property.ID = r.nextPropertyID
	r.nextPropertyID++

	owner.Properties = append(owner.Properties, property)
	owner.Version++
	r.owners[ownerID] = owner

	return property.ID, nil
}

func (r *memoryOwnerRepository) ReplaceProperties(_ context.Context, ownerID int, properties []models.Property) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[ownerID]
	if !ok {
		return false, nil
	}

	owner.Properties = cloneProperties(properties)
	owner.Version++
	r.owners[ownerID] = owner

	return true, nil
}

// cloneOwner copies an owner including its portfolio slice, so callers can
// never mutate the store's backing data through a returned value.
func cloneOwner(owner models.Owner) models.Owner {
	clone := owner
	clone.Properties = cloneProperties(owner.Properties)
	return clone
}

// cloneProperties copies a portfolio slice. A nil portfolio stays nil and an
// empty one stays empty, so absent and present-but-empty never blur at rest.
func cloneProperties(properties []models.Property) []models.Property {
	if properties == nil {
		return nil
	}
	clone := make([]models.Property, len(properties))
	copy(clone, properties)
	return clone
}
