package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/molopt/internal/config"
	"github.com/san-kum/molopt/internal/export"
	"github.com/san-kum/molopt/internal/forcefield"
	"github.com/san-kum/molopt/internal/storage"
	"github.com/san-kum/molopt/internal/structure"
	"github.com/san-kum/molopt/internal/viz"
)

func openStore() (*storage.Store, error) {
	dir, err := dataDirectory()
	if err != nil {
		return nil, err
	}
	return storage.New(dir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tATOMS\tITER\tSHIFT\tINITIAL\tFINAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%s\t%s\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Atoms,
			run.Iterations,
			run.MaxShift,
			formatStored(run.InitialEnergy),
			formatStored(run.FinalEnergy),
		)
	}

	return w.Flush()
}

// formatStored prints "-" for energies that were not finite when saved.
func formatStored(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

type series struct {
	caption string
	value   func(storage.EnergyRecord) float64
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	records, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("structure: %s\n", meta.Label)
	fmt.Printf("iterations: %d (accepted %d)\n\n", len(records), meta.Accepted)

	plots := []series{{"total energy", func(r storage.EnergyRecord) float64 { return r.Total }}}
	if plotParts {
		plots = append(plots,
			series{"bond energy", func(r storage.EnergyRecord) float64 { return r.Bond }},
			series{"van der Waals energy", func(r storage.EnergyRecord) float64 { return r.VDW }},
		)
	}

	for _, s := range plots {
		data := make([]float64, len(records))
		for i, r := range records {
			data[i] = s.value(r)
		}
		fmt.Println(viz.EnergyChart(data, 80, 10, s.caption))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	params := forcefield.Default()
	if fieldFile != "" {
		if params, err = forcefield.Load(fieldFile); err != nil {
			return err
		}
	}
	data, err := st.Export(args[0], params.Masses)
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	records, err := st.LoadEnergies(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, records)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tITER\tSHIFT\tTRAVERSAL\tPAIRS\tWORKERS\tOPTIONS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		var opts []string
		if p.Rebond {
			opts = append(opts, "rebond")
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%s\t%s\t%d\t%s\n",
			name, p.Iterations, p.MaxShift, p.Traversal, p.PairCounting, p.Workers, strings.Join(opts, ","))
	}
	return w.Flush()
}

func renderRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	var doc string
	if renderEnergy {
		records, err := st.LoadEnergies(args[0])
		if err != nil {
			return err
		}
		totals := make([]float64, len(records))
		for i, r := range records {
			totals[i] = r.Total
		}
		doc = export.EnergyToSVG(totals, 800, 300, "#00ff88")
		if doc == "" {
			return fmt.Errorf("not enough data to render")
		}
	} else {
		params := forcefield.Default()
		if fieldFile != "" {
			if params, err = forcefield.Load(fieldFile); err != nil {
				return err
			}
		}
		f, err := st.LoadFinal(args[0], params.Masses)
		if err != nil {
			return err
		}
		s := structure.New(f.Label, f.Atoms, params.Cutoffs)
		cam := viz.NewCamera()
		cam.Fit(s.Positions())
		doc, err = export.MoleculeToSVG(cam, s.Species(), s.Positions(), s.Graph().Bonds(), 600, 600)
		if err != nil {
			return err
		}
	}

	if outputFile == "" {
		fmt.Println(doc)
		return nil
	}
	return os.WriteFile(outputFile, []byte(doc), 0644)
}
