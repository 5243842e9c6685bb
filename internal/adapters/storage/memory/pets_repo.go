package memory

import (
	"context"
	"sync"

	"pet-medical-records/internal/domain/pets"
)

// PetRepo es la implementación en memoria del repositorio de mascotas.
type PetRepo struct {
	mu    sync.RWMutex
	items map[string]pets.Pet
}

func NewPetRepo() *PetRepo {
	return &PetRepo{items: make(map[string]pets.Pet)}
}

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = clonePet(p)
	return nil
}

func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; !ok {
		return pets.ErrNotFound
	}
	r.items[p.ID] = clonePet(p)
	return nil
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return clonePet(p), nil
}

func (r *PetRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.items {
		if p.HasOwner(ownerUserID) {
			out = append(out, clonePet(p))
		}
	}
	return out, nil
}

func (r *PetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return pets.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// clonePet copia los slices para que los callers no muten el estado interno.
func clonePet(p pets.Pet) pets.Pet {
	p.Owners = append([]string(nil), p.Owners...)
	p.PendingOwners = append([]string(nil), p.PendingOwners...)
	return p
}
