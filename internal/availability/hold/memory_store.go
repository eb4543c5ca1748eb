package hold

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and single-node demos.
type MemoryStore struct {
	mu    sync.Mutex
	held  map[string]uuid.UUID
	until map[string]time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{held: make(map[string]uuid.UUID), until: make(map[string]time.Time)}
}

// TryHold acquires the hold unless an unexpired one exists.
func (m *MemoryStore) TryHold(_ context.Context, driverID uuid.UUID, slot time.Time, studentID uuid.UUID, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(driverID, slot)
	if deadline, ok := m.until[key]; ok && time.Now().Before(deadline) {
		return false, nil
	}
	m.held[key] = studentID
	m.until[key] = time.Now().Add(ttl)
	return true, nil
}

// Release drops the hold.
func (m *MemoryStore) Release(_ context.Context, driverID uuid.UUID, slot time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(driverID, slot)
	delete(m.held, key)
	delete(m.until, key)
	return nil
}

func memKey(driverID uuid.UUID, slot time.Time) string {
	return driverID.String() + ":" + slot.UTC().Format(time.RFC3339)
}
