package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/molopt/internal/molecule"
)

type ExportData struct {
	Metadata  RunMetadata    `json:"metadata"`
	Energies  []EnergyRecord `json:"energies"`
	Species   []string       `json:"species,omitempty"`
	Positions [][3]float64   `json:"positions,omitempty"`
}

// Export gathers a stored run into one document. A missing final structure
// is not an error.
func (s *Store) Export(runID string, masses molecule.MassTable) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	energies, err := s.LoadEnergies(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{Metadata: *meta, Energies: energies}

	if f, err := s.LoadFinal(runID, masses); err == nil {
		for _, a := range f.Atoms {
			data.Species = append(data.Species, string(a.Species))
			data.Positions = append(data.Positions, [3]float64{a.Position.X, a.Position.Y, a.Position.Z})
		}
	}

	return data, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteCSV writes the energy trace with a header row.
func WriteCSV(w io.Writer, records []EnergyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"iteration", "bond", "vdw", "total", "accepted"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Iteration),
			strconv.FormatFloat(r.Bond, 'f', 6, 64),
			strconv.FormatFloat(r.VDW, 'f', 6, 64),
			strconv.FormatFloat(r.Total, 'f', 6, 64),
			strconv.FormatBool(r.Accepted),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
