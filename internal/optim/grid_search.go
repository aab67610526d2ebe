// Package optim tunes sampler settings by running short chains.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/op/go-logging"

	"github.com/san-kum/hmcsim/internal/config"
	"github.com/san-kum/hmcsim/internal/experiment"
	"github.com/san-kum/hmcsim/internal/sim"
)

var log = logging.MustGetLogger("optim")

// Score rates a finished chain, lower is better.
type Score func(result *sim.Result) float64

// TargetAccept scores the distance of the mean acceptance probability from
// target.
func TargetAccept(target float64) Score {
	return func(result *sim.Result) float64 {
		rate, ok := result.Metrics["accept_rate"]
		if !ok || math.IsNaN(rate) {
			return math.Inf(1)
		}
		return math.Abs(rate - target)
	}
}

// ApplyParam sets a numeric sampler setting by its config name.
func ApplyParam(cfg *config.Config, name string, value float64) error {
	switch name {
	case "step_size":
		cfg.StepSize = value
	case "n_step":
		cfg.NumSteps = int(value)
	case "mom_resample_coeff":
		cfg.MomResampleCoeff = value
	case "max_tree_depth":
		cfg.MaxTreeDepth = int(value)
	case "max_delta_h":
		cfg.MaxDeltaH = value
	default:
		return fmt.Errorf("unknown tuning parameter: %s", name)
	}
	return nil
}

// GridSearch runs one chain per point of the cartesian product of ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search evaluates every grid point on a copy of base and returns the best
// parameters with their score. Points whose configuration is invalid are
// skipped; cancellation of ctx stops the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, score Score) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		trial := Trial{Params: params, Score: math.Inf(1)}
		trial.Score, trial.Err = evaluate(ctx, base, params, score)
		if errors.Is(trial.Err, context.Canceled) || errors.Is(trial.Err, context.DeadlineExceeded) {
			return trial.Err
		}
		if trial.Err != nil {
			log.Warningf("Skipping %v: %v", params, trial.Err)
		} else {
			log.Debugf("%v: score %.4f", params, trial.Score)
		}
		trials = append(trials, trial)

		if trial.Err == nil && trial.Score < best {
			best = trial.Score
			bestParams = params
		}
		return nil
	})
	if err != nil {
		return nil, 0, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, errors.New("no grid point produced a valid chain")
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, base *config.Config, params map[string]float64, score Score) (float64, error) {
	cfg := base.Clone()
	for k, v := range params {
		if err := ApplyParam(cfg, k, v); err != nil {
			return 0, err
		}
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	return score(result), nil
}
