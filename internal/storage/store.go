// Package storage keeps optimization runs on disk, one directory per run
// holding metadata.json, energies.csv and final.xyz.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/xyz"
)

const (
	metadataFile = "metadata.json"
	energiesFile = "energies.csv"
	finalFile    = "final.xyz"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	Source        string             `json:"source,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
	Atoms         int                `json:"atoms"`
	Bonds         int                `json:"bonds"`
	Seed          int64              `json:"seed"`
	Iterations    int                `json:"iterations"`
	MaxShift      float64            `json:"max_shift"`
	Order         int                `json:"exclusion_order"`
	Traversal     string             `json:"traversal"`
	PairCounting  string             `json:"pair_counting"`
	Accepted      int                `json:"accepted"`
	InitialEnergy *float64           `json:"initial_energy,omitempty"`
	FinalEnergy   *float64           `json:"final_energy,omitempty"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Run is everything Save persists.
type Run struct {
	Label    string
	Source   string
	Bonds    int
	Species  []molecule.Species
	Settings driver.Settings
	Result   *driver.Result
}

// EnergyRecord is one row of energies.csv.
type EnergyRecord struct {
	Iteration int     `json:"iteration"`
	Bond      float64 `json:"bond"`
	VDW       float64 `json:"vdw"`
	Total     float64 `json:"total"`
	Accepted  bool    `json:"accepted"`
}

// Save writes a run directory and returns its id.
func (s *Store) Save(run Run) (string, error) {
	if run.Result == nil {
		return "", fmt.Errorf("storage: nil result")
	}

	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	res := run.Result
	meta := RunMetadata{
		ID:            runID,
		Label:         run.Label,
		Source:        run.Source,
		Timestamp:     time.Now(),
		Atoms:         len(run.Species),
		Bonds:         run.Bonds,
		Seed:          run.Settings.Seed,
		Iterations:    res.StepsTaken,
		MaxShift:      run.Settings.MaxShift,
		Order:         run.Settings.Order,
		Traversal:     run.Settings.Traversal.String(),
		PairCounting:  run.Settings.Counting.String(),
		Accepted:      res.AcceptedCount(),
		InitialEnergy: finite(res.Initial.Total()),
		FinalEnergy:   finite(res.Final.Total()),
		Metrics:       finiteMetrics(res.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeEnergies(filepath.Join(runDir, energiesFile), res); err != nil {
		return "", err
	}
	if len(res.Positions) > 0 {
		if err := xyz.WriteFile(filepath.Join(runDir, finalFile), run.Label, run.Species, res.Positions); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// finite returns nil for NaN and Inf, which JSON cannot encode.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// JSON has no encoding for NaN or Inf.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeEnergies(path string, res *driver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"iteration", "bond", "vdw", "total", "accepted"}); err != nil {
		return err
	}

	for i, e := range res.Energies {
		accepted := i < len(res.Accepted) && res.Accepted[i]
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(e.Bond, 'g', -1, 64),
			strconv.FormatFloat(e.VDW, 'g', -1, 64),
			strconv.FormatFloat(e.Total(), 'g', -1, 64),
			strconv.FormatBool(accepted),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadEnergies(runID string) ([]EnergyRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, energiesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []EnergyRecord{}, nil
	}

	out := make([]EnergyRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != 5 {
			continue
		}
		it, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		var vals [3]float64
		bad := false
		for i := range vals {
			vals[i], err = strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				bad = true
				break
			}
		}
		if bad {
			continue
		}
		accepted, _ := strconv.ParseBool(rec[4])

		out = append(out, EnergyRecord{
			Iteration: it,
			Bond:      vals[0],
			VDW:       vals[1],
			Total:     vals[2],
			Accepted:  accepted,
		})
	}

	return out, nil
}

// FinalStructurePath returns the path of the run's optimized geometry.
func (s *Store) FinalStructurePath(runID string) string {
	return filepath.Join(s.baseDir, runID, finalFile)
}

// LoadFinal reads the run's optimized geometry.
func (s *Store) LoadFinal(runID string, masses molecule.MassTable) (*xyz.File, error) {
	f, err := xyz.ReadFile(s.FinalStructurePath(runID), masses)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return f, nil
}
