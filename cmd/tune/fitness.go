package main

import (
	"sync"

	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/game"
	"github.com/pthm-cable/circles/levels"
	"github.com/pthm-cable/circles/physics"
)

// Fitness penalties.
const (
	incompletePenalty = 4.0  // added per level autoplay could not finish
	driftPenalty      = 1e3  // per unit of power lost or gained
	driftTolerance    = 1e-6 // drift below this is float noise
)

// PacingEvaluator autoplays every level with candidate parameters and scores
// how far completion times are from the target.
type PacingEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	library    *levels.Library
	target     float64 // seconds
	maxTicks   int32

	mu          sync.Mutex
	lastResults []game.RunResult
}

// NewPacingEvaluator creates a new evaluator.
func NewPacingEvaluator(params *ParamVector, baseCfg *config.Config, library *levels.Library, target float64, maxTicks int32) *PacingEvaluator {
	return &PacingEvaluator{
		params:     params,
		baseConfig: baseCfg,
		library:    library,
		target:     target,
		maxTicks:   maxTicks,
	}
}

// LastResults returns the level results of the most recent evaluation.
func (pe *PacingEvaluator) LastResults() []game.RunResult {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	return pe.lastResults
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (pe *PacingEvaluator) Evaluate(x []float64) float64 {
	cfg := pe.params.ApplyToConfig(pe.baseConfig, x)
	factory := physics.NewFactory(physics.SettingsFromConfig(cfg.Physics))

	// Run all levels in parallel
	n := pe.library.Len()
	results := make([]game.RunResult, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := game.RunLevel(cfg, pe.library, factory, i, pe.maxTicks)
			if err != nil {
				r = game.RunResult{Level: i, Ticks: pe.maxTicks}
			}
			results[i] = r
		}()
	}
	wg.Wait()

	pe.mu.Lock()
	pe.lastResults = results
	pe.mu.Unlock()

	return computeFitness(results, pe.target)
}

// computeFitness is the mean squared relative error of completion times,
// plus penalties for unfinished levels and power drift.
func computeFitness(results []game.RunResult, target float64) float64 {
	if len(results) == 0 {
		return 0
	}
	var total float64
	for _, r := range results {
		if !r.Completed {
			total += incompletePenalty
			continue
		}
		rel := (r.SimTime - target) / target
		total += rel * rel
		if r.Drift > driftTolerance {
			total += driftPenalty * r.Drift
		}
	}
	return total / float64(len(results))
}
