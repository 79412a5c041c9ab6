package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/stardrop/internal/config"
)

// Builder constructs an independent runner for one seed.
type Builder func(seed int64) (*Runner, error)

// Ensemble runs independently seeded simulators concurrently. Each run owns
// its simulator; nothing is shared between goroutines.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, scene config.SceneConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < e.numRuns; i++ {
		i := i
		g.Go(func() error {
			r, err := e.build(e.seedStart + int64(i))
			if err != nil {
				return err
			}
			results[i], err = r.Run(ctx, scene)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
