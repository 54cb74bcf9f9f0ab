package favrepo

import (
	"context"
	"sync"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/locator"
)

// MemoryRepository keeps favorites in process memory for tests and local
// development.
type MemoryRepository struct {
	mu       sync.RWMutex
	byDevice map[string]map[string]locator.Pharmacy
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byDevice: make(map[string]map[string]locator.Pharmacy)}
}

func (r *MemoryRepository) List(_ context.Context, deviceID string) (map[string]locator.Pharmacy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]locator.Pharmacy, len(r.byDevice[deviceID]))
	for id, pharmacy := range r.byDevice[deviceID] {
		out[id] = pharmacy
	}
	return out, nil
}

func (r *MemoryRepository) Save(_ context.Context, deviceID, pharmacyID string, pharmacy locator.Pharmacy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byDevice[deviceID] == nil {
		r.byDevice[deviceID] = make(map[string]locator.Pharmacy)
	}
	r.byDevice[deviceID][pharmacyID] = pharmacy
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, deviceID, pharmacyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byDevice[deviceID], pharmacyID)
	return nil
}

var _ locator.FavoriteRepository = (*MemoryRepository)(nil)
