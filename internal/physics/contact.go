package physics

import (
	"gonum.org/v1/gonum/spatial/r3"
)

type body struct {
	pos, vel r3.Vec
	settled  bool
}

// contact holds the corrections to apply to a mover a and its neighbour b.
type contact struct {
	posA, velA r3.Vec
	posB, velB r3.Vec
	touching   bool
	impulse    bool
}

// resolveContact computes the response between a Dynamic mover a and a
// neighbour b. Against a Settled b the mover takes the whole push and a
// full impulse; two Dynamic particles split both evenly. b's deltas are
// always zero when b is Settled.
func resolveContact(a, b body, radius, restitution float64) contact {
	delta := r3.Sub(a.pos, b.pos)
	dist := r3.Norm(delta)
	minDist := 2 * radius
	if dist >= minDist || dist < epsilon {
		return contact{}
	}

	n := r3.Scale(1/dist, delta)
	pen := minDist - dist
	c := contact{touching: true}
	if b.settled {
		c.posA = r3.Scale(pen, n)
	} else {
		c.posA = r3.Scale(pen/2, n)
		c.posB = r3.Scale(-pen/2, n)
	}

	vn := r3.Dot(r3.Sub(a.vel, b.vel), n)
	if vn >= 0 {
		return c
	}
	c.impulse = true
	if b.settled {
		c.velA = r3.Scale(-(1+restitution)*vn, n)
		return c
	}
	j := 0.5 * (1 + restitution) * vn
	c.velA = r3.Scale(-j, n)
	c.velB = r3.Scale(j, n)
	return c
}

func (s *Simulator) bodyOf(i int) body {
	return body{pos: s.store.Position(i), vel: s.store.Velocity(i), settled: s.store.IsSettled(i)}
}

// collideNeighbors resolves mover i against everything in its 27-cell
// block. Pairs with a lower-indexed Dynamic neighbour were already handled
// when that neighbour moved this substep.
func (s *Simulator) collideNeighbors(i int) {
	s.neighbors = s.grid.Neighbors(s.store.Position(i), s.neighbors[:0])
	r, e := s.params.EffectiveRadius, s.params.Restitution

	for _, j := range s.neighbors {
		if j == i {
			continue
		}
		jSettled := s.store.IsSettled(j)
		if j < i && !jSettled {
			continue
		}

		c := resolveContact(s.bodyOf(i), s.bodyOf(j), r, e)
		if !c.touching {
			continue
		}
		s.store.SetPosition(i, r3.Add(s.store.Position(i), c.posA))
		s.store.SetVelocity(i, r3.Add(s.store.Velocity(i), c.velA))
		if jSettled {
			continue
		}
		s.store.SetPosition(j, r3.Add(s.store.Position(j), c.posB))
		s.store.SetVelocity(j, r3.Add(s.store.Velocity(j), c.velB))
		if c.impulse {
			s.store.SetStreak(j, 0)
		}
	}
}
