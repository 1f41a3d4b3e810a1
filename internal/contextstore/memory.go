// internal/contextstore/memory.go

package contextstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"livestock-advisor/internal/models"
)

// MemoryRepository is the single-process fallback used when no Redis is
// configured, and the backing store in tests. Entries carry their own
// deadline and are reaped by the Store's sweeper.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]memoryEntry)}
}

func (m *MemoryRepository) Get(_ context.Context, sessionID string) (*models.ConversationContext, error) {
	m.mu.RLock()
	e, ok := m.entries[sessionID]
	m.mu.RUnlock()
	if !ok || time.Now().UTC().After(e.expiresAt) {
		return nil, nil
	}
	var cc models.ConversationContext
	if err := json.Unmarshal(e.payload, &cc); err != nil {
		return nil, nil
	}
	return &cc, nil
}

func (m *MemoryRepository) Put(_ context.Context, cc *models.ConversationContext, ttl time.Duration) error {
	payload, err := json.Marshal(cc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[cc.SessionID] = memoryEntry{payload: payload, expiresAt: time.Now().UTC().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.entries, sessionID)
	m.mu.Unlock()
	return nil
}

// ReapExpired drops every entry whose deadline has passed.
func (m *MemoryRepository) ReapExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reaped := 0
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			reaped++
		}
	}
	return reaped, nil
}

// Len reports the live entry count; used by tests.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
