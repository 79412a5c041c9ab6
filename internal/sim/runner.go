package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/metrics"
	"github.com/san-kum/stardrop/internal/physics"
)

// Runner plays the part of the host render loop: it clamps frame deltas,
// drops stars on a schedule and skips stepping when nothing can move.
type Runner struct {
	sim       *physics.Simulator
	rng       *rand.Rand
	clock     Clock
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *slog.Logger
}

func NewRunner(s *physics.Simulator, rng *rand.Rand, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Runner{
		sim:       s,
		rng:       rng,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    logger,
	}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }
func (r *Runner) SetClock(c Clock)              { r.clock = c }
func (r *Runner) Simulator() *physics.Simulator { return r.sim }

// Spawn drops one star at a random point of the spawn disc.
func (r *Runner) Spawn(scene config.SceneConfig) (int, error) {
	angle := r.rng.Float64() * 2 * math.Pi
	rad := scene.SpawnSpread * math.Sqrt(r.rng.Float64())
	return r.sim.AddStar(rad*math.Cos(angle), scene.SpawnHeight, rad*math.Sin(angle))
}

func (r *Runner) Run(ctx context.Context, scene config.SceneConfig) (*Result, error) {
	if err := scene.Validate(r.sim.Shape()); err != nil {
		return nil, err
	}
	clock := r.clock
	if clock == nil {
		clock = FixedClock(scene.FrameDt)
	}

	result := &Result{
		Times:        make([]float64, 0, scene.Frames),
		Active:       make([]int, 0, scene.Frames),
		Settled:      make([]int, 0, scene.Frames),
		Energy:       make([]float64, 0, scene.Frames),
		SettleFrames: make([]float64, 0),
		Metrics:      make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	capacity := r.sim.Capacity()
	spawned := make([]int, capacity)
	done := make([]bool, capacity)
	for i := 0; i < r.sim.Count(); i++ {
		done[i] = r.sim.IsSettled(i)
	}

	if scene.Warmup > 0 {
		r.sim.Warmup(scene.Warmup)
		r.logger.Debug("warmup complete", "frames", scene.Warmup, "active", r.sim.Active())
	}

	dropping := scene.Drops > 0
	t := 0.0
	for f := 0; f < scene.Frames; f++ {
		select {
		case <-ctx.Done():
			return result, &dynamo.SimulationError{Frame: f, Time: t, Wrapped: fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err())}
		default:
		}

		if dropping && f%scene.DropEvery == 0 {
			idx, err := r.Spawn(scene)
			switch {
			case errors.Is(err, dynamo.ErrStoreFull):
				r.logger.Warn("jar full, dropping stopped", "frame", f, "count", r.sim.Count())
				dropping = false
			case err != nil:
				return result, err
			default:
				spawned[idx] = f
				done[idx] = false
				result.Dropped++
				dropping = result.Dropped < scene.Drops
			}
		}

		dt := clock(f)
		if dt > scene.MaxFrameDt {
			r.logger.Debug("frame clamped", "frame", f, "dt", dt, "max", scene.MaxFrameDt)
			dt = scene.MaxFrameDt
			result.Clamped++
		}

		if r.sim.HasActiveStars() {
			r.sim.Step(dt)
		} else {
			result.Skipped++
		}
		t += dt

		if err := r.record(result, f, t, spawned, done); err != nil {
			return result, err
		}
		result.Frames++
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	r.logger.Info("run complete",
		"frames", result.Frames,
		"stars", r.sim.Count(),
		"active", r.sim.Active(),
		"skipped", result.Skipped,
		"clamped", result.Clamped,
	)
	return result, nil
}

func (r *Runner) record(result *Result, f int, t float64, spawned []int, done []bool) error {
	s := r.sim
	for i := 0; i < s.Count(); i++ {
		if done[i] {
			continue
		}
		if !dynamo.VecValid(s.Position(i)) {
			return &dynamo.SimulationError{Frame: f, Time: t, Wrapped: dynamo.ErrUnstable}
		}
		if s.IsSettled(i) {
			done[i] = true
			result.SettleFrames = append(result.SettleFrames, float64(f+1-spawned[i]))
		}
	}

	result.Times = append(result.Times, t)
	result.Active = append(result.Active, s.Active())
	result.Settled = append(result.Settled, s.Count()-s.Active())
	result.Energy = append(result.Energy, metrics.KineticEnergyOf(s))

	for _, m := range r.metrics {
		m.Observe(s, t)
	}
	for _, o := range r.observers {
		o.OnFrame(s, t)
	}
	return nil
}
