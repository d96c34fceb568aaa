// Package config loads the service configuration from a YAML or JSON file
// with PLATO_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/platotv/plato/core/metrics"
	"github.com/platotv/plato/infra/mqtt"
)

type Config struct {
	HTTP    HTTPConfig     `json:"http"`
	Store   StoreConfig    `json:"store"`
	Engine  EngineConfig   `json:"engine"`
	Metrics metrics.Config `json:"metrics"`
	MQTT    mqtt.Config    `json:"mqtt"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.Path == "" {
		c.Path = "plato.db"
	}
}

func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case "sqlite", "memory":
		return nil
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Driver)
	}
}

// EngineConfig tunes the generation engine.
type EngineConfig struct {
	MealTemplateName string `json:"mealTemplateName"`
}

func (c *EngineConfig) SetDefaults() {
	if c.MealTemplateName == "" {
		c.MealTemplateName = "Comida"
	}
}

// Load reads the file at path and applies PLATO_ environment overrides,
// where double underscores map to nesting (PLATO_HTTP__ADDR=:9090).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
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
	// Optional environment overrides
	if err := k.Load(env.Provider("PLATO_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "plato_")
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

// SetDefaults fills every optional section.
func (c *Config) SetDefaults() {
	c.HTTP.SetDefaults()
	c.Store.SetDefaults()
	c.Engine.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	return c.Store.Validate()
}
