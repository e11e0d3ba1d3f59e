package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/forcefield"
	"github.com/san-kum/molopt/internal/logging"
	"github.com/san-kum/molopt/internal/optimizer"
	"github.com/san-kum/molopt/internal/topology"
)

const (
	DefaultIterations = 100
	DefaultWorkers    = 1
	DefaultDataDir    = "runs"
)

type Config struct {
	Structure  string          `yaml:"structure"`
	ForceField string          `yaml:"force_field"`
	DataDir    string          `yaml:"data_dir"`
	Optimizer  OptimizerConfig `yaml:"optimizer"`
	Log        logging.Config  `yaml:"log"`
}

type OptimizerConfig struct {
	Iterations     int     `yaml:"iterations"`
	MaxShift       float64 `yaml:"max_shift"`
	Seed           int64   `yaml:"seed"`
	ExclusionOrder int     `yaml:"exclusion_order"`
	Traversal      string  `yaml:"traversal"`
	PairCounting   string  `yaml:"pair_counting"`
	Workers        int     `yaml:"workers"`
	Rebond         bool    `yaml:"rebond"`
}

func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		Iterations:     DefaultIterations,
		MaxShift:       optimizer.DefaultMaxShift,
		ExclusionOrder: topology.DefaultExclusionOrder,
		Traversal:      topology.BreadthFirst.String(),
		PairCounting:   energy.BothWays.String(),
		Workers:        DefaultWorkers,
	}
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		Optimizer: DefaultOptimizerConfig(),
		Log:       logging.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads path over cfg, so keys absent from the file keep their
// current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	return c.Optimizer.Validate()
}

func (o OptimizerConfig) Validate() error {
	if o.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", o.Iterations)
	}
	if o.MaxShift <= 0 {
		return fmt.Errorf("max_shift must be positive, got %f", o.MaxShift)
	}
	if o.ExclusionOrder < 0 {
		return fmt.Errorf("exclusion_order must be non-negative, got %d", o.ExclusionOrder)
	}
	if o.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", o.Workers)
	}
	if _, err := topology.ParseTraversal(o.Traversal); err != nil {
		return err
	}
	if _, err := energy.ParsePairCounting(o.PairCounting); err != nil {
		return err
	}
	return nil
}

// Settings resolves the optimizer section against a parameter set.
func (o OptimizerConfig) Settings(params *forcefield.Parameters) (driver.Settings, error) {
	if err := o.Validate(); err != nil {
		return driver.Settings{}, err
	}
	traversal, _ := topology.ParseTraversal(o.Traversal)
	counting, _ := energy.ParsePairCounting(o.PairCounting)

	return driver.Settings{
		Params:     params,
		Order:      o.ExclusionOrder,
		Traversal:  traversal,
		Counting:   counting,
		Workers:    o.Workers,
		MaxShift:   o.MaxShift,
		Seed:       o.Seed,
		Iterations: o.Iterations,
		Rebond:     o.Rebond,
	}, nil
}
