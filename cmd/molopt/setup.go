package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/molopt/internal/config"
	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/forcefield"
	"github.com/san-kum/molopt/internal/logging"
	"github.com/san-kum/molopt/internal/structure"
	"github.com/san-kum/molopt/internal/xyz"
)

// env is what every structure command needs.
type env struct {
	cfg      *config.Config
	params   *forcefield.Parameters
	settings driver.Settings
	log      *zap.Logger
}

// setup resolves configuration in the order preset, config file, then
// explicitly set flags. Each layer only overrides the keys it sets.
func setup(cmd *cobra.Command) (*env, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Optimizer = *p
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	o := &cfg.Optimizer
	if flags.Changed("iterations") {
		o.Iterations = iterations
	}
	if flags.Changed("max-shift") {
		o.MaxShift = maxShift
	}
	if flags.Changed("seed") {
		o.Seed = seed
	}
	if flags.Changed("order") {
		o.ExclusionOrder = order
	}
	if flags.Changed("traversal") {
		o.Traversal = traversal
	}
	if flags.Changed("pairs") {
		o.PairCounting = pairCounting
	}
	if flags.Changed("workers") {
		o.Workers = workers
	}
	if flags.Changed("rebond") {
		o.Rebond = rebond
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir = config.DefaultConfig().DataDir
	}
	if flags.Changed("forcefield") {
		cfg.ForceField = fieldFile
	}
	if flags.Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = logFormat
	}

	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	params := forcefield.Default()
	if cfg.ForceField != "" {
		params, err = forcefield.Load(cfg.ForceField)
		if err != nil {
			return nil, err
		}
	}

	settings, err := o.Settings(params)
	if err != nil {
		return nil, err
	}

	log.Debug("configuration resolved",
		zap.String("config", configFile),
		zap.String("preset", preset),
		zap.String("forcefield", cfg.ForceField),
		zap.Int("iterations", settings.Iterations),
		zap.Float64("max_shift", settings.MaxShift),
		zap.Int64("seed", settings.Seed),
	)

	return &env{cfg: cfg, params: params, settings: settings, log: log}, nil
}

// dataDirectory resolves the run directory for commands that do not load a
// structure.
func dataDirectory() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return "", fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.DataDir != "" {
			return cfg.DataDir, nil
		}
	}
	return config.DefaultConfig().DataDir, nil
}

// loadStructure reads an xyz file and bonds it with the force field cutoffs.
func (e *env) loadStructure(path string) (*structure.Structure, error) {
	f, err := xyz.ReadFile(path, e.params.Masses)
	if err != nil {
		return nil, err
	}
	label := strings.TrimSpace(f.Label)
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	st := structure.New(label, f.Atoms, e.params.Cutoffs)
	e.log.Info("structure loaded",
		zap.String("path", path),
		zap.Int("atoms", st.Len()),
		zap.Int("bonds", st.Graph().BondCount()),
	)
	return st, nil
}
