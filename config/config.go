package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/dockflow/core/factory"
	"github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/infra/warehouse"
)

type Config struct {
	Warehouse warehouse.Config     `json:"warehouse"`
	Fit       FitConfig            `json:"fit"`
	Store     factory.ModuleConfig `json:"store"`
	Simulate  SimulateConfig       `json:"simulate"`
	Metrics   metrics.Config       `json:"metrics"`
	Report    ReportConfig         `json:"report"`
	Logging   LoggingConfig        `json:"logging"`
	Sentry    SentryConfig         `json:"sentry"`
}

// Load reads path (YAML or JSON by extension) and applies K_ prefixed
// environment overrides, e.g. K_FIT__INTERVAL=30m. An empty path loads
// defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Warehouse.SetDefaults()
	c.Fit.SetDefaults()
	c.Simulate.SetDefaults()
	c.Report.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
	if c.Store.Type == "" {
		c.Store.Type = "file"
	}
	if c.Store.Type == "file" && c.Store.Conf["dir"] == nil {
		if c.Store.Conf == nil {
			c.Store.Conf = map[string]any{}
		}
		c.Store.Conf["dir"] = "models"
	}
}

// Validate checks each section. The warehouse is only required by commands
// that read from it, see ValidateWarehouse.
func (c Config) Validate() error {
	var errs []error
	if err := c.Fit.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fit: %w", err))
	}
	if err := c.Simulate.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulate: %w", err))
	}
	if err := c.Report.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("report: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.Sentry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sentry: %w", err))
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			errs = append(errs, fmt.Errorf("metrics: sink %d has no type", i))
		}
	}
	return errors.Join(errs...)
}

// ValidateWarehouse checks the warehouse section.
func (c Config) ValidateWarehouse() error {
	return c.Warehouse.Validate()
}
