// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[store.ModelStore]()
//	reg.Register("file", func(conf map[string]any) (store.ModelStore, error) {
//	    var c struct{ Dir string `json:"dir"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewFileStore(c.Dir)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"dir": "models"}})
package factory
