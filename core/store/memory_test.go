package store

import (
	"context"
	"errors"
	"testing"

	"github.com/kilianp07/dockflow/core/demand"
	"github.com/kilianp07/dockflow/core/model"
)

func TestKeyDisambiguatesMode(t *testing.T) {
	if Key(12, model.Rebalanced) != "poisson_results_12_rebalanced" {
		t.Fatalf("unexpected key %s", Key(12, model.Rebalanced))
	}
	if Key(12, model.NotRebalanced) != "poisson_results_12_notrebalanced" {
		t.Fatalf("unexpected key %s", Key(12, model.NotRebalanced))
	}
}

func TestMemoryStore_SaveLoad(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := &demand.Model{StationID: 3, Mode: model.Rebalanced, Arrivals: []float64{1}, Departures: []float64{2}}
	if err := s.Save(ctx, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	m.Arrivals[0] = 5
	got, err := s.Load(ctx, 3, model.Rebalanced)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Arrivals[0] != 1 || got.Departures[0] != 2 {
		t.Fatalf("stored model mutated: %+v", got)
	}
	if _, err := s.Load(ctx, 3, model.NotRebalanced); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}
