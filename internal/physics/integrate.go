package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

// integrate applies gravity and damping to velocity first, then moves the
// particle with the updated velocity.
func (s *Simulator) integrate(i int, dt float64) {
	p := s.params

	v := s.store.Velocity(i)
	v.Y -= p.Gravity * dt
	v = r3.Scale(dampFactor(p.LinearDamping, dt), v)
	w := r3.Scale(dampFactor(p.AngularDamping, dt), s.store.Spin(i))

	s.store.SetVelocity(i, v)
	s.store.SetSpin(i, w)
	s.store.SetPosition(i, r3.Add(s.store.Position(i), r3.Scale(dt, v)))
	s.store.SetRotation(i, r3.Add(s.store.Rotation(i), r3.Scale(dt, w)))
}

func dampFactor(k, dt float64) float64 {
	return math.Max(0, 1-k*dt)
}

func (s *Simulator) collideFloor(i int) {
	minY := s.shape.FloorHeight + s.params.EffectiveRadius
	pos := s.store.Position(i)
	if pos.Y >= minY {
		return
	}
	pos.Y = minY
	v := s.store.Velocity(i)
	if v.Y < 0 {
		v.Y = -v.Y * s.params.Restitution
	}
	keep := 1 - s.params.FloorFriction
	v.X *= keep
	v.Z *= keep
	s.store.SetPosition(i, pos)
	s.store.SetVelocity(i, v)
}

func (s *Simulator) collideWall(i int) {
	pos := s.store.Position(i)
	d := math.Hypot(pos.X, pos.Z)
	limit := s.shape.Radius(pos.Y) - s.params.EffectiveRadius
	if d <= limit || d < epsilon {
		return
	}

	nx, nz := pos.X/d, pos.Z/d
	pos.X = nx * limit
	pos.Z = nz * limit
	s.store.SetPosition(i, pos)

	v := s.store.Velocity(i)
	if vr := v.X*nx + v.Z*nz; vr > 0 {
		k := (1 + s.params.Restitution) * vr
		v.X -= k * nx
		v.Z -= k * nz
		s.store.SetVelocity(i, v)
	}
}
