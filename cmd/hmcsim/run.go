package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/san-kum/hmcsim/internal/analysis"
	"github.com/san-kum/hmcsim/internal/checkpoint"
	"github.com/san-kum/hmcsim/internal/config"
	"github.com/san-kum/hmcsim/internal/experiment"
	"github.com/san-kum/hmcsim/internal/optim"
	"github.com/san-kum/hmcsim/internal/sim"
	"github.com/san-kum/hmcsim/internal/storage"
	"github.com/san-kum/hmcsim/internal/tui"
	"github.com/san-kum/hmcsim/internal/viz"
)

// buildConfig merges preset, config file and flags, in increasing priority.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	target := cfg.Target
	if len(args) > 0 {
		target = args[0]
	}

	if preset != "" {
		p := config.GetPreset(target, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(target))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) == 0 {
			target = cfg.Target
		}
	}
	cfg.Target = target

	flags := cmd.Flags()
	if flags.Changed("dim") {
		cfg.Dim = dim
	}
	if flags.Changed("step-size") {
		cfg.StepSize = stepSize
	}
	if flags.Changed("sampler") {
		cfg.Sampler = sampler
	}
	if flags.Changed("n-step") {
		cfg.NumSteps = nStep
	}
	if flags.Changed("step-lo") {
		cfg.StepRange[0] = stepLo
	}
	if flags.Changed("step-hi") {
		cfg.StepRange[1] = stepHi
	}
	if flags.Changed("coeff") {
		cfg.MomResampleCoeff = coeff
	}
	if flags.Changed("max-tree-depth") {
		cfg.MaxTreeDepth = maxTreeDepth
	}
	if flags.Changed("max-delta-h") {
		cfg.MaxDeltaH = maxDeltaH
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("init") {
		cfg.InitPos = initPos
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	chain := exp.Chain()

	init := exp.InitialState()
	n := cfg.Samples
	offset := 0

	var chk *checkpoint.IO
	if checkpointFile != "" {
		db, err := checkpoint.Open(checkpointFile)
		if err != nil {
			return fmt.Errorf("failed to open checkpoint: %w", err)
		}
		defer db.Close()

		key := checkpointKey
		if key == "" {
			key = cfg.Target + "_" + cfg.Sampler
		}
		chk = checkpoint.NewIO(db, []byte(key), 30)

		if resume {
			data, err := chk.Load()
			if err != nil {
				return err
			}
			if data != nil && data.Final {
				fmt.Printf("chain %s already finished at iteration %d\n", key, data.Iter)
				return nil
			}
			if data != nil {
				init = data.State()
				offset = data.Iter
				n = cfg.Samples - offset
			}
		}
		if n < 1 {
			return fmt.Errorf("nothing left to sample after iteration %d", offset)
		}
		chk.SetNow()
		chain.AddObserver(sim.ObserverFunc(chk.Observer(offset)))
	}

	chain.AddObserver(sim.NewProgressLogger(max(n/10, 1), n))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Infof("Sampling %s (dim %d) with the %s sampler, seed %d", cfg.Target, cfg.Dim, cfg.Sampler, cfg.Seed)
	start := time.Now()
	result, runErr := exp.RunFrom(ctx, init, n)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	if chk != nil {
		last := offset + len(result.Stats.Hamiltonian) - 1
		if err := chk.SaveState(result.Final, last, runErr == nil); err != nil {
			return err
		}
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n\n", len(result.Stats.Hamiltonian))
	printResult(result)
	return runErr
}

func printResult(result *sim.Result) {
	fmt.Println(viz.MetricsPanel("metrics", result.Metrics))
	if tr := result.Trace("pos"); tr != nil {
		fmt.Println(viz.SummaryTable("pos", analysis.SummarizeColumns(tr.Values)))
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	// log output would tear the view
	logging.SetLevel(logging.ERROR, "")

	title := fmt.Sprintf("%s / %s", cfg.Target, cfg.Sampler)
	result, err := tui.Run(context.Background(), title, exp.Chain(), exp.InitialState(), cfg.Samples)
	if result == nil {
		return err
	}
	printResult(result)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func tuneSampler(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Samples = tuneSamples

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch([]string{tuneParam}, [][]float64{tuneValues})
	best, score, trials, err := g.Search(ctx, cfg, optim.TargetAccept(tuneAccept))
	for _, tr := range trials {
		if tr.Err != nil {
			fmt.Printf("  %s=%-8g failed: %v\n", tuneParam, tr.Params[tuneParam], tr.Err)
			continue
		}
		fmt.Printf("  %s=%-8g |accept-%.2f|=%.4f\n", tuneParam, tr.Params[tuneParam], tuneAccept, tr.Score)
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nbest %s: %g (score %.4f)\n", tuneParam, best[tuneParam], score)
	return nil
}
