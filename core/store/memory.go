package store

import (
	"context"
	"sync"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/model"
)

// MemoryStore keeps models in memory for tests or single-process runs.
type MemoryStore struct {
	mu     sync.RWMutex
	models map[string]*demand.Model
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{models: map[string]*demand.Model{}}
}

// Save stores a copy of m, replacing any previous model for the same key.
func (s *MemoryStore) Save(_ context.Context, m *demand.Model) error {
	cp := *m
	cp.Arrivals = append([]float64(nil), m.Arrivals...)
	cp.Departures = append([]float64(nil), m.Departures...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[Key(m.StationID, m.Mode)] = &cp
	return nil
}

// Load returns the model stored for stationID and mode.
func (s *MemoryStore) Load(_ context.Context, stationID int64, mode model.RebalanceMode) (*demand.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[Key(stationID, mode)]
	if !ok {
		return nil, NotFound(stationID, mode)
	}
	return m, nil
}

func (s *MemoryStore) Close() error { return nil }
