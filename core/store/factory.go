package store

import "github.com/kilianp07/dockflow/core/factory"

var storeRegistry = factory.NewRegistry[ModelStore]()

// RegisterModelStore adds a model store factory identified by name.
func RegisterModelStore(name string, f factory.Factory[ModelStore]) error {
	return storeRegistry.Register(name, f)
}

// NewModelStore creates the store described by cfg. An empty type selects
// the in-memory store.
func NewModelStore(cfg factory.ModuleConfig) (ModelStore, error) {
	if cfg.Type == "" || cfg.Type == "memory" {
		return NewMemoryStore(), nil
	}
	return storeRegistry.Create(cfg)
}

// Types lists the registered store types.
func Types() []string { return storeRegistry.Types() }
