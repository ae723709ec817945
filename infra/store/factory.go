package store

import (
	"github.com/kilianp07/dockflow/core/factory"
	corestore "github.com/kilianp07/dockflow/core/store"
)

// init registers built-in model stores.
func init() {
	_ = corestore.RegisterModelStore("file", func(conf map[string]any) (corestore.ModelStore, error) {
		var c struct {
			Dir string `json:"dir"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewFileStore(c.Dir)
	})

	_ = corestore.RegisterModelStore("sqlite", func(conf map[string]any) (corestore.ModelStore, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "models.db"
		}
		return NewSQLiteStore(c.Path)
	})
}
