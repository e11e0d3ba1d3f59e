package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/molopt/internal/config"
	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/metrics"
	"github.com/san-kum/molopt/internal/optim"
	"github.com/san-kum/molopt/internal/storage"
	"github.com/san-kum/molopt/internal/viz"
	"github.com/san-kum/molopt/internal/xyz"
)

func printEnergy(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	st, err := e.loadStructure(args[0])
	if err != nil {
		return err
	}

	s := e.settings
	eval := energy.New(s.Params,
		energy.WithOrder(s.Order),
		energy.WithTraversal(s.Traversal),
		energy.WithPairCounting(s.Counting),
		energy.WithWorkers(s.Workers),
	)
	state, err := eval.Evaluate(st)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "structure\t%s\n", st.Label)
	fmt.Fprintf(w, "atoms\t%d\n", st.Len())
	fmt.Fprintf(w, "bonds\t%d\n", st.Graph().BondCount())
	fmt.Fprintf(w, "bond energy\t%.6f\n", state.Bond)
	fmt.Fprintf(w, "vdw energy\t%.6f\n", state.VDW)
	fmt.Fprintf(w, "total\t%.6f\n", state.Total())
	return w.Flush()
}

func printBonds(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	st, err := e.loadStructure(args[0])
	if err != nil {
		return err
	}

	bonds := st.Graph().Bonds()
	fmt.Printf("%d bonds\n", len(bonds))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "I\tJ\tPAIR\tDISTANCE")
	pos := st.Positions()
	for _, b := range bonds {
		fmt.Fprintf(w, "%d\t%d\t%s-%s\t%.4f\n",
			b.I, b.J, st.SpeciesAt(b.I), st.SpeciesAt(b.J), pos[b.I].DistanceTo(pos[b.J]))
	}
	return w.Flush()
}

func printCenter(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	st, err := e.loadStructure(args[0])
	if err != nil {
		return err
	}
	c, err := st.MassCenter()
	if err != nil {
		return err
	}
	fmt.Printf("%.6f %.6f %.6f\n", c.X, c.Y, c.Z)
	return nil
}

func runMetrics() []driver.Metric {
	return []driver.Metric{
		metrics.NewAcceptanceRate(),
		metrics.NewBestEnergy(),
		metrics.NewEnergyDrop(),
		metrics.NewRelativeEnergyDrop(),
	}
}

func runOptimize(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	st, err := e.loadStructure(args[0])
	if err != nil {
		return err
	}

	store := storage.New(e.cfg.DataDir)
	if err := store.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := driver.NewExperiment(e.settings, st, e.log, runMetrics()...)

	fmt.Printf("optimizing %s (%d atoms, %d iterations, seed %d)...\n",
		st.Label, st.Len(), e.settings.Iterations, e.settings.Seed)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d iterations, saving partial run\n", result.StepsTaken)
	}
	elapsed := time.Since(start)

	runID, err := store.Save(storage.Run{
		Label:    st.Label,
		Source:   args[0],
		Bonds:    exp.Structure().Graph().BondCount(),
		Species:  st.Species(),
		Settings: e.settings,
		Result:   result,
	})
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := xyz.WriteFile(outputFile, st.Label, st.Species(), result.Positions); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (accepted %d)\n", result.StepsTaken, result.AcceptedCount())
	fmt.Printf("energy: %.6f -> %.6f\n", result.Initial.Total(), result.Final.Total())
	fmt.Println("\nmetrics:")
	for _, m := range runMetrics() {
		if v, ok := result.Metrics[m.Name()]; ok {
			fmt.Printf("  %s: %.6f\n", m.Name(), v)
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	st, err := e.loadStructure(args[0])
	if err != nil {
		return err
	}

	viz.SetTheme(themeName)

	if pickPreset {
		var choices []viz.Choice
		for _, name := range config.ListPresets() {
			p := config.GetPreset(name)
			p.Seed = e.settings.Seed
			s, err := p.Settings(e.params)
			if err != nil {
				return err
			}
			choices = append(choices, viz.Choice{Name: name, Info: p.Traversal + "/" + p.PairCounting, Settings: s})
		}
		return viz.RunProgram(viz.NewPicker(choices, st, e.log))
	}

	m := viz.NewModel(st.Label, e.settings, st, e.log)
	m.SetStepsPerTick(stepsPerTick)
	return viz.RunProgram(m)
}

func runSweep(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	st, err := e.loadStructure(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d shifts x %d seeds on %s...\n", len(sweepShifts), len(sweepSeeds), st.Label)
	best, trials, err := optim.ShiftSeedSweep(ctx, e.settings, st, sweepShifts, sweepSeeds, e.log)
	if err != nil {
		return err
	}

	optim.SortTrials(trials)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MAX SHIFT\tSEED\tFINAL ENERGY\tACCEPTED")
	for _, t := range trials {
		fmt.Fprintf(w, "%g\t%d\t%.6f\t%d\n",
			t.Params[optim.ParamMaxShift], int64(t.Params[optim.ParamSeed]), t.Value, t.Result.AcceptedCount())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: max shift %g, seed %d, energy %.6f\n",
		best.Params[optim.ParamMaxShift], int64(best.Params[optim.ParamSeed]), best.Value)
	return nil
}
