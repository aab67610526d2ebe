package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/san-kum/hmcsim/internal/config"
	"github.com/san-kum/hmcsim/internal/experiment"
)

var log = logging.MustGetLogger("hmcsim")

var (
	dataDir  string
	logLevel string
	quiet    bool

	configFile string
	preset     string

	dim          int
	stepSize     float64
	sampler      string
	nStep        int
	stepLo       int
	stepHi       int
	coeff        float64
	maxTreeDepth int
	maxDeltaH    float64
	samples      int
	seed         int64
	mass         []float64
	initPos      []float64

	checkpointFile string
	checkpointKey  string
	resume         bool

	tuneParam   string
	tuneValues  []float64
	tuneAccept  float64
	tuneSamples int

	traceName string
	component int
	maxLag    int
	energy    bool
	outFile   string
)

func setupLogging() error {
	logging.SetFormatter(logging.MustStringFormatter(`%{time:15:04:05} %{level:.4s} %{module}: %{message}`))
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetBackend(backend)

	level, err := logging.LogLevel(strings.ToUpper(logLevel))
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	if quiet {
		level = logging.ERROR
	}
	logging.SetLevel(level, "")
	return nil
}

func addSamplerFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&dim, "dim", d.Dim, "target dimension")
	f.Float64Var(&stepSize, "step-size", d.StepSize, "leapfrog step size")
	f.StringVar(&sampler, "sampler", d.Sampler, "sampler: "+strings.Join(config.Samplers, ", "))
	f.IntVar(&nStep, "n-step", d.NumSteps, "trajectory length (static samplers)")
	f.IntVar(&stepLo, "step-lo", d.StepRange[0], "smallest trajectory length (random samplers)")
	f.IntVar(&stepHi, "step-hi", d.StepRange[1], "largest trajectory length (random samplers)")
	f.Float64Var(&coeff, "coeff", d.MomResampleCoeff, "momentum resample coefficient (correlated samplers)")
	f.IntVar(&maxTreeDepth, "max-tree-depth", d.MaxTreeDepth, "maximum tree depth (dynamic sampler)")
	f.Float64Var(&maxDeltaH, "max-delta-h", d.MaxDeltaH, "divergence threshold (dynamic sampler)")
	f.IntVar(&samples, "samples", d.Samples, "number of samples")
	f.Int64Var(&seed, "seed", 0, "random seed, 0 for a time based seed")
	f.Float64SliceVar(&mass, "mass", nil, "diagonal mass matrix")
	f.Float64SliceVar(&initPos, "init", nil, "initial position")
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "hmcsim",
		Short:        "hamiltonian monte carlo sampling lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hmcsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, notice, warning, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	runCmd := &cobra.Command{
		Use:   "run [target]",
		Short: "run a chain and store its samples",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runChain,
	}
	addSamplerFlags(runCmd)
	runCmd.Flags().StringVar(&checkpointFile, "checkpoint", "", "checkpoint database path")
	runCmd.Flags().StringVar(&checkpointKey, "checkpoint-key", "", "checkpoint key, target_sampler by default")
	runCmd.Flags().BoolVar(&resume, "resume", false, "resume from the checkpoint")

	liveCmd := &cobra.Command{
		Use:   "live [target]",
		Short: "run a chain with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSamplerFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&traceName, "trace", "pos", "trace to plot")
	plotCmd.Flags().IntVar(&component, "component", 0, "component to plot")
	plotCmd.Flags().BoolVar(&energy, "energy", false, "plot the hamiltonian instead")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "convergence diagnostics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&traceName, "trace", "pos", "trace to analyze")
	analyzeCmd.Flags().IntVar(&component, "component", 0, "component for the autocorrelation plot")
	analyzeCmd.Flags().IntVar(&maxLag, "max-lag", 50, "largest autocorrelation lag")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file, stdout if empty")

	presetsCmd := &cobra.Command{
		Use:   "presets [target]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := experiment.NewRegistry().ListTargets()
			if len(args) > 0 {
				targets = args
			}
			for _, t := range targets {
				presets := config.ListPresets(t)
				if len(presets) == 0 {
					fmt.Printf("no presets for target: %s\n", t)
					continue
				}
				fmt.Printf("presets for %s:\n", t)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [target]",
		Short: "grid search a sampler setting for a target acceptance rate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneSampler,
	}
	addSamplerFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneParam, "param", "step_size", "setting to tune")
	tuneCmd.Flags().Float64SliceVar(&tuneValues, "values", []float64{0.05, 0.1, 0.2, 0.4, 0.8}, "values to try")
	tuneCmd.Flags().Float64Var(&tuneAccept, "accept", 0.8, "target acceptance rate")
	tuneCmd.Flags().IntVar(&tuneSamples, "tune-samples", 300, "samples per trial")

	rootCmd.AddCommand(runCmd, liveCmd, tuneCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
