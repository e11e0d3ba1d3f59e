package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/molopt/internal/viz"
)

var (
	dataDir    string
	configFile string
	fieldFile  string
	logLevel   string
	logFormat  string
	preset     string

	iterations   int
	maxShift     float64
	seed         int64
	order        int
	traversal    string
	pairCounting string
	workers      int
	rebond       bool

	outputFile   string
	stepsPerTick int
	pickPreset   bool
	sweepShifts  []float64
	sweepSeeds   []int64
	plotParts    bool
	renderEnergy bool
	themeName    string
)

// main registers the molopt commands and exits with status 1 when one
// fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "molopt",
		Short:        "molecular energy evaluation and stochastic geometry optimization",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run data directory (default from config, else ./runs)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&fieldFile, "forcefield", "", "force field parameter file (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	energyCmd := &cobra.Command{
		Use:   "energy [file.xyz]",
		Short: "print the bond and van der Waals energy of a structure",
		Args:  cobra.ExactArgs(1),
		RunE:  printEnergy,
	}
	addEvaluatorFlags(energyCmd)

	bondsCmd := &cobra.Command{
		Use:   "bonds [file.xyz]",
		Short: "list the bonds detected in a structure",
		Args:  cobra.ExactArgs(1),
		RunE:  printBonds,
	}

	centerCmd := &cobra.Command{
		Use:   "center [file.xyz]",
		Short: "print the mass center of a structure",
		Args:  cobra.ExactArgs(1),
		RunE:  printCenter,
	}

	optimizeCmd := &cobra.Command{
		Use:   "optimize [file.xyz]",
		Short: "run the stochastic optimizer and save the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	addOptimizerFlags(optimizeCmd)
	optimizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "also write the final structure to this xyz file")

	liveCmd := &cobra.Command{
		Use:   "live [file.xyz]",
		Short: "run the optimizer with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addOptimizerFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "speed", 1, "optimizer steps per frame")
	liveCmd.Flags().BoolVar(&pickPreset, "pick", false, "choose a preset from a menu first")
	liveCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	sweepCmd := &cobra.Command{
		Use:   "sweep [file.xyz]",
		Short: "grid search max shift and seed for the lowest final energy",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addOptimizerFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepShifts, "shifts", []float64{0.01, 0.02, 0.05, 0.1}, "max shifts to try")
	sweepCmd.Flags().Int64SliceVar(&sweepSeeds, "seeds", []int64{1, 2, 3}, "seeds to try")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&plotParts, "parts", false, "also plot bond and van der Waals energy")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the energy trace of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render the final structure or energy trace of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().BoolVar(&renderEnergy, "energy", false, "render the energy trace instead of the structure")
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list optimizer presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(energyCmd, bondsCmd, centerCmd, optimizeCmd, liveCmd, sweepCmd,
		listCmd, plotCmd, exportCmd, exportCSVCmd, renderCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addEvaluatorFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&order, "order", 3, "bond distance below which pairs are excluded from van der Waals")
	cmd.Flags().StringVar(&traversal, "traversal", "bfs", "exclusion tree traversal (bfs, dfs)")
	cmd.Flags().StringVar(&pairCounting, "pairs", "both", "van der Waals pair counting (both, once)")
	cmd.Flags().IntVar(&workers, "workers", 1, "parallel workers for van der Waals")
}

func addOptimizerFlags(cmd *cobra.Command) {
	addEvaluatorFlags(cmd)
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "optimizer iterations")
	cmd.Flags().Float64Var(&maxShift, "max-shift", 0.05, "largest per-axis displacement")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&rebond, "rebond", false, "rebuild bonds between iterations")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset optimizer configuration")
}
