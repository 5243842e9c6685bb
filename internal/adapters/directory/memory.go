package directory

import (
	"context"
	"errors"
	"sync"

	"pet-medical-records/internal/domain/identity"
)

var ErrNotFound = errors.New("identity not found")

// Memory es un directorio en memoria, para dev y tests.
type Memory struct {
	mu    sync.RWMutex
	items map[string]identity.Identity
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]identity.Identity)}
}

func (d *Memory) Put(i identity.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items[i.ID] = i
}

func (d *Memory) GetByID(ctx context.Context, id string) (identity.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.items[id]
	if !ok {
		return identity.Identity{}, ErrNotFound
	}
	return i, nil
}
