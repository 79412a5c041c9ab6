package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/grid"
	"github.com/san-kum/stardrop/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

// Source supplies spawn jitter. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Simulator owns the particle store and the spatial hash. It is not safe
// for concurrent use.
type Simulator struct {
	shape  container.Shape
	params Params
	store  *particles.Store
	grid   *grid.Hash
	rng    Source

	neighbors []int
}

// New builds a simulator for at most capacity particles. A nil rng falls
// back to a source seeded with 1.
func New(capacity int, shape container.Shape, params Params, rng Source) (*Simulator, error) {
	if capacity < 0 {
		return nil, dynamo.ConfigError("capacity must be non-negative, got %d", capacity)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if shape.NeckRadius <= params.EffectiveRadius {
		return nil, dynamo.ConfigError("neck radius %f does not fit a particle of radius %f", shape.NeckRadius, params.EffectiveRadius)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Simulator{
		shape:     shape,
		params:    params,
		store:     particles.New(capacity),
		grid:      grid.New(params.CellSize),
		rng:       rng,
		neighbors: make([]int, 0, 64),
	}, nil
}

func (s *Simulator) Shape() container.Shape { return s.shape }
func (s *Simulator) Params() Params         { return s.params }

// AddStar spawns a Dynamic particle with a small random velocity, spin and
// orientation.
func (s *Simulator) AddStar(x, y, z float64) (int, error) {
	if s.store.Count() == s.store.Capacity() {
		return -1, dynamo.ErrStoreFull
	}
	j, w := s.params.SpawnJitter, s.params.SpinJitter
	vel := r3.Vec{X: s.jitter(j), Z: s.jitter(j)}
	spin := r3.Vec{X: s.jitter(w), Y: s.jitter(w), Z: s.jitter(w)}
	return s.store.Append(r3.Vec{X: x, Y: y, Z: z}, vel, s.randomRotation(), spin, dynamo.Dynamic)
}

// AddSettledStar places an already-frozen particle, used when restoring a
// saved jar without replaying the fall.
func (s *Simulator) AddSettledStar(x, y, z float64) (int, error) {
	if s.store.Count() == s.store.Capacity() {
		return -1, dynamo.ErrStoreFull
	}
	i, err := s.store.Append(r3.Vec{X: x, Y: y, Z: z}, r3.Vec{}, s.randomRotation(), r3.Vec{}, dynamo.Settled)
	if err != nil {
		return i, err
	}
	s.store.SetAliveFrames(i, s.params.ForcedSettleFrames+1)
	return i, nil
}

func (s *Simulator) jitter(scale float64) float64 {
	return (s.rng.Float64()*2 - 1) * scale
}

func (s *Simulator) randomRotation() r3.Vec {
	return r3.Vec{
		X: s.rng.Float64() * 2 * math.Pi,
		Y: s.rng.Float64() * 2 * math.Pi,
		Z: s.rng.Float64() * 2 * math.Pi,
	}
}

func (s *Simulator) Reset() { s.store.Reset() }

func (s *Simulator) Count() int               { return s.store.Count() }
func (s *Simulator) Capacity() int            { return s.store.Capacity() }
func (s *Simulator) Active() int              { return s.store.Active() }
func (s *Simulator) Position(i int) r3.Vec    { return s.store.Position(i) }
func (s *Simulator) Rotation(i int) r3.Vec    { return s.store.Rotation(i) }
func (s *Simulator) Velocity(i int) r3.Vec    { return s.store.Velocity(i) }
func (s *Simulator) IsSettled(i int) bool     { return s.store.IsSettled(i) }
func (s *Simulator) HasActiveStars() bool     { return s.store.Active() > 0 }
func (s *Simulator) Phase(i int) dynamo.Phase { return s.store.Phase(i) }

// SettleAll freezes every particle immediately.
func (s *Simulator) SettleAll() {
	for i := 0; i < s.store.Count(); i++ {
		s.store.Freeze(i)
	}
}

// Warmup runs n steps at the nominal warmup dt.
func (s *Simulator) Warmup(n int) {
	for k := 0; k < n; k++ {
		s.Step(s.params.WarmupDt)
	}
}

// Step advances the simulation by dt split into fixed substeps. Non-positive
// or NaN dt is ignored.
func (s *Simulator) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	sub := dt / float64(s.params.Substeps)
	for k := 0; k < s.params.Substeps; k++ {
		if s.store.Active() == 0 {
			return
		}
		s.substep(sub)
	}
}

func (s *Simulator) substep(dt float64) {
	s.grid.Rebuild(s.store.Positions())

	n := s.store.Count()
	for i := 0; i < n; i++ {
		if s.store.IsSettled(i) {
			continue
		}
		s.integrate(i, dt)
		s.collideFloor(i)
		s.collideWall(i)
		s.collideNeighbors(i)
	}

	for i := 0; i < n; i++ {
		if s.store.IsSettled(i) {
			continue
		}
		// neighbour pushes may have crossed the floor or wall
		s.collideFloor(i)
		s.collideWall(i)
		s.evaluateSettle(i)
	}
}

// String summarises the store for logging.
func (s *Simulator) String() string {
	return fmt.Sprintf("stars=%d active=%d capacity=%d", s.store.Count(), s.store.Active(), s.store.Capacity())
}
