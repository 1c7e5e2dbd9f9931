package store

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/swim-conditions/internal/conditions"
)

// ErrNoSnapshot is returned when no conditions snapshot has been recorded yet.
var ErrNoSnapshot = errors.New("no conditions snapshot recorded")

// MemoryStore is a concurrency-safe in-memory snapshot store. It holds only
// the most recent snapshot; the engine does not keep trend history.
type MemoryStore struct {
	mu     sync.RWMutex
	latest conditions.Snapshot
	stored bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored snapshot with the given one.
func (s *MemoryStore) Save(ctx context.Context, snap conditions.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = snap
	s.stored = true
	return nil
}

// Latest returns the most recently saved snapshot.
func (s *MemoryStore) Latest(ctx context.Context) (conditions.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.stored {
		return conditions.Snapshot{}, ErrNoSnapshot
	}
	return s.latest, nil
}
