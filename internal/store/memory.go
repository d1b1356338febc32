// Package store provides object-state backends for event extraction.
package store

import (
	"context"
	"sync"

	"txstream/internal/model"
)

type objectKey struct {
	id      model.ObjectID
	version model.SequenceNumber
}

// MemoryStore keeps object states in memory, keyed by exact identity and
// version. It serves offline replay and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[objectKey]model.Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[objectKey]model.Object)}
}

// Put records one object state.
func (s *MemoryStore) Put(obj model.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey{id: obj.ID, version: obj.Version}] = obj
}

// Seed records a batch of object states.
func (s *MemoryStore) Seed(objs []model.Object) {
	for _, obj := range objs {
		s.Put(obj)
	}
}

// GetObjectByKey returns the state at the exact version, or nil when no such
// state exists.
func (s *MemoryStore) GetObjectByKey(ctx context.Context, id model.ObjectID, version model.SequenceNumber) (*model.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[objectKey{id: id, version: version}]
	if !ok {
		return nil, nil
	}
	return &obj, nil
}
