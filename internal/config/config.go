package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSubstance       = "acetic_acid"
	DefaultMolarity        = 0.1
	DefaultBeakerVolume    = 50.0
	DefaultTitrantMolarity = 0.1
	DefaultMaxVolume       = 100.0
	DefaultSamples         = 100
	DefaultWaterLevel      = 10.0
	DefaultColumns         = 14
	DefaultRows            = 12
	DefaultStoreBackend    = "fs"
	DefaultStorePath       = ".phsim"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Substance       string      `yaml:"substance"`
	Molarity        float64     `yaml:"molarity"`
	BeakerVolume    float64     `yaml:"beaker_volume"`
	TitrantMolarity float64     `yaml:"titrant_molarity"`
	MaxVolume       float64     `yaml:"max_volume"`
	Samples         int         `yaml:"samples"`
	WaterLevel      float64     `yaml:"water_level"`
	Seed            int64       `yaml:"seed"`
	Catalog         string      `yaml:"catalog,omitempty"`
	Grid            GridConfig  `yaml:"grid"`
	Store           StoreConfig `yaml:"store"`
}

type GridConfig struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		Substance:       DefaultSubstance,
		Molarity:        DefaultMolarity,
		BeakerVolume:    DefaultBeakerVolume,
		TitrantMolarity: DefaultTitrantMolarity,
		MaxVolume:       DefaultMaxVolume,
		Samples:         DefaultSamples,
		WaterLevel:      DefaultWaterLevel,
		Grid: GridConfig{
			Columns: DefaultColumns,
			Rows:    DefaultRows,
		},
		Store: StoreConfig{
			Backend: DefaultStoreBackend,
			Path:    DefaultStorePath,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Substance == "":
		return fmt.Errorf("%w: substance is empty", ErrInvalidConfig)
	case c.Molarity <= 0:
		return fmt.Errorf("%w: molarity must be positive, got %g", ErrInvalidConfig, c.Molarity)
	case c.BeakerVolume <= 0:
		return fmt.Errorf("%w: beaker_volume must be positive, got %g", ErrInvalidConfig, c.BeakerVolume)
	case c.TitrantMolarity <= 0:
		return fmt.Errorf("%w: titrant_molarity must be positive, got %g", ErrInvalidConfig, c.TitrantMolarity)
	case c.MaxVolume <= 0:
		return fmt.Errorf("%w: max_volume must be positive, got %g", ErrInvalidConfig, c.MaxVolume)
	case c.Samples < 2:
		return fmt.Errorf("%w: samples must be at least 2, got %d", ErrInvalidConfig, c.Samples)
	case c.Grid.Columns < 1 || c.Grid.Rows < 1:
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Grid.Columns, c.Grid.Rows)
	case c.WaterLevel < 0:
		return fmt.Errorf("%w: water_level must be >= 0, got %g", ErrInvalidConfig, c.WaterLevel)
	}
	return nil
}

// EquivalenceVolume is the titrant volume that neutralizes the beaker.
func (c *Config) EquivalenceVolume() float64 {
	return c.Molarity * c.BeakerVolume / c.TitrantMolarity
}
