package catalog

import (
	"context"
	"sync"

	"proposal-engine/internal/models"
)

// MemoryStore holds a fixed catalog in memory. Used for tests and for running
// the engine without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	items []models.CatalogItem
}

func NewMemoryStore(items []models.CatalogItem) *MemoryStore {
	return &MemoryStore{items: items}
}

func (s *MemoryStore) List(_ context.Context) ([]models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CatalogItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Replace swaps the catalog snapshot.
func (s *MemoryStore) Replace(items []models.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]models.CatalogItem, len(items))
	copy(s.items, items)
}
