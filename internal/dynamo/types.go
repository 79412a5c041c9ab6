package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Phase is the integration state of a particle.
type Phase uint8

const (
	// Dynamic particles are integrated and collide every substep.
	Dynamic Phase = iota
	// Settled particles have zero velocity and act as fixed obstacles.
	Settled
)

func (p Phase) String() string {
	switch p {
	case Dynamic:
		return "dynamic"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Reader is the renderer contract: read once per frame, never written.
type Reader interface {
	Count() int
	Position(i int) r3.Vec
	Rotation(i int) r3.Vec
	IsSettled(i int) bool
}

type Metric interface {
	Name() string
	Observe(r Reader, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(r Reader, t float64)
}

// VecValid reports whether every component of v is finite.
func VecValid(v r3.Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// VelocityReader additionally exposes per-particle velocity for metrics
// that need kinetic state.
type VelocityReader interface {
	Reader
	Velocity(i int) r3.Vec
}
