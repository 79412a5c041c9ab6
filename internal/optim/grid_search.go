package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/stardrop/internal/analysis"
	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/sim"
)

// Objective scores a finished run; lower is better.
type Objective func(result *sim.Result) float64

// Builder returns a fresh runner for one combination of parameter values.
type Builder func(params map[string]float64) (*sim.Runner, error)

// MeanSettle prefers parameters that bring stars to rest quickly. Runs in
// which nothing settled score +Inf.
func MeanSettle(result *sim.Result) float64 {
	if len(result.SettleFrames) == 0 {
		return math.Inf(1)
	}
	return analysis.SummarizeSettle(result.SettleFrames).Mean
}

// Metric scores a run by one of its recorded metrics.
func Metric(name string) Objective {
	return func(result *sim.Result) float64 {
		v, ok := result.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs the scene for every combination in the grid and returns the
// best parameters with their score. Ties keep the earlier combination.
func (g *GridSearch) Search(
	ctx context.Context,
	build Builder,
	scene config.SceneConfig,
	objective Objective,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, scene, objective, &best, &bestParams)
	return bestParams, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	scene config.SceneConfig,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		r, err := build(current)
		if err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}

		result, err := r.Run(ctx, scene)
		if err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}

		val := objective(result)
		if val < *best || *bestParams == nil {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, scene, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
