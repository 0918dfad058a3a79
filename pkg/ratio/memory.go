package ratio

import (
	"context"
	"sync"

	"github.com/dtnitsch/localfeed/models"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]models.RatioPreferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]models.RatioPreferences)}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (models.RatioPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	if !ok {
		return models.RatioPreferences{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) Save(_ context.Context, prefs models.RatioPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[prefs.UserID] = prefs
	return nil
}
